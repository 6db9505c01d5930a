package chunker

import (
	"fmt"
	"strings"

	"github.com/virtualta/virtualta/pkg/types"
)

const (
	// DefaultWindowWords is the default chunk size in words.
	DefaultWindowWords = 2000

	// DefaultOverlapWords is the default overlap between successive chunks.
	DefaultOverlapWords = 200
)

// Chunker cuts document text into overlapping word windows.
type Chunker struct {
	windowWords  int
	overlapWords int
}

// New creates a Chunker. The overlap must be non-negative and strictly
// smaller than the window, otherwise the window never advances.
func New(windowWords, overlapWords int) (*Chunker, error) {
	if windowWords <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", windowWords)
	}
	if overlapWords < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", overlapWords)
	}
	if overlapWords >= windowWords {
		return nil, fmt.Errorf("overlap %d must be smaller than window %d", overlapWords, windowWords)
	}
	return &Chunker{windowWords: windowWords, overlapWords: overlapWords}, nil
}

// Split divides text into word windows joined by single spaces. Any
// non-empty text yields at least one chunk; empty or whitespace-only
// text yields none. The last chunk may be shorter than the window.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.windowWords - c.overlapWords
	chunks := make([]string, 0, (len(words)+stride-1)/stride)
	for start := 0; start < len(words); start += stride {
		end := start + c.windowWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// ChunkDocument splits a document and builds one chunk record per
// window, carrying the document's provenance fields and the chunk's
// position within the document.
func (c *Chunker) ChunkDocument(doc types.Document) []types.Chunk {
	pieces := c.Split(doc.Text)
	chunks := make([]types.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, types.Chunk{
			Text:        text,
			Source:      doc.Source,
			Type:        doc.Type,
			ChunkID:     i,
			TotalChunks: len(pieces),
			TopicID:     doc.TopicID,
			TopicTitle:  doc.TopicTitle,
		})
	}
	return chunks
}
