// Package ingest builds the corpus from raw source documents.
//
// Two document sources are supported, matching what the scraper side
// produces:
//
//   - a directory of markdown course files, converted to plain text
//     before chunking
//   - a JSON export of discourse forum posts; posts are grouped by
//     topic, ordered by post number, and concatenated into one logical
//     document per topic so conversational context survives chunk
//     boundaries
//
// The pipeline chunks every document, embeds chunk texts in fixed-size
// batches, and appends each batch's vectors and records to the corpus
// as one unit. Ingestion is all-or-nothing: an embedding failure after
// the client's own retry policy aborts the run, and the caller must
// not persist the partially built corpus.
package ingest
