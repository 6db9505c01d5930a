// Package corpus stores the indexed knowledge base: a flat
// inner-product vector index and a positionally aligned metadata
// store, persisted as two companion artifacts.
//
// The two stores grow strictly in lockstep. The vector at index
// position p describes the chunk record at metadata position p, and
// nothing else; any divergence silently corrupts every future lookup.
// Corpus therefore only exposes AppendBatch, which verifies both
// sides of a batch agree on length before either store is touched,
// and Load, which refuses artifact pairs whose counts differ.
//
// All stored and query vectors are unit-normalized, so the index's
// inner-product score is cosine similarity in [-1, 1].
//
// A corpus is built once by ingestion and is read-only while serving
// queries; concurrent searches need no locking after Load returns.
package corpus
