// Package embedder turns text into unit-normalized embedding vectors.
//
// A Provider is a thin client for one embedding API (Gemini by
// default, any OpenAI-compatible endpoint as an alternative). The
// Client wraps a Provider with the policy the retrieval pipeline
// relies on:
//
//   - every returned vector is normalized to unit L2 length, so inner
//     product equals cosine similarity
//   - rate-limit failures are retried with linearly increasing backoff
//     before being propagated
//   - oversized inputs are split at their midpoint and embedded as the
//     re-normalized average of the two halves, to a bounded depth
//
// The averaged-halves fallback is a degradation strategy: the result
// approximates, but is not, the embedding of the whole text.
//
// Ingestion and query embeddings share the provider's representation
// space; the Gemini provider only varies the task type hint
// (retrieval_document vs retrieval_query) between the two paths.
package embedder
