// Package chunker splits document text into overlapping fixed-size
// word windows for embedding and retrieval.
//
// Successive windows advance by (window - overlap) words, so the tail
// of each chunk is repeated at the head of the next. The overlap keeps
// sentences that straddle a window boundary retrievable from at least
// one chunk. The final window may be shorter than the configured size.
//
// # Basic Usage
//
//	c, err := chunker.New(2000, 200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pieces := c.Split(documentText)
//
// An overlap greater than or equal to the window size would prevent the
// window from ever advancing, so New rejects it as a configuration
// error instead of looping forever.
package chunker
