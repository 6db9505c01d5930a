// Package retriever answers the online half of the system: it embeds
// a question, searches the corpus, and returns the most similar
// chunks with their scores.
//
// Search over-fetches twice the requested count before filtering by
// the similarity threshold, so marginal hits near the cutoff do not
// starve the final result set.
package retriever
