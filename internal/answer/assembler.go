package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/virtualta/virtualta/pkg/types"
)

const (
	// NoContextAnswer is returned when retrieval produced nothing.
	NoContextAnswer = "I couldn't find any relevant information in my knowledge base."

	// snippetRunes caps the link text taken from each chunk.
	snippetRunes = 150
)

// Assembler builds a grounded prompt from retrieved chunks and pairs
// the generated answer with source links.
type Assembler struct {
	generator Generator
}

// NewAssembler creates an assembler around a generator.
func NewAssembler(gen Generator) *Assembler {
	return &Assembler{generator: gen}
}

// Assemble produces the final answer. With no chunks it returns the
// fixed fallback without calling the generator. Any generator failure
// is returned as-is; the caller decides how to surface it.
func (a *Assembler) Assemble(ctx context.Context, question string, chunks []types.RetrievedChunk) (*types.Answer, error) {
	if len(chunks) == 0 {
		return &types.Answer{Answer: NoContextAnswer, Links: []types.Link{}}, nil
	}

	prompt := buildPrompt(question, chunks)
	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	links := make([]types.Link, 0, len(chunks))
	for _, chunk := range chunks {
		links = append(links, types.Link{
			URL:  chunk.Source,
			Text: snippet(chunk.Text),
		})
	}

	return &types.Answer{Answer: text, Links: links}, nil
}

// buildPrompt numbers each chunk as a source and instructs the model
// to stay inside that context.
func buildPrompt(question string, chunks []types.RetrievedChunk) string {
	var sb strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "[Source %d]:\n%s\n\n", i+1, chunk.Text)
	}

	return fmt.Sprintf(`You are a helpful teaching assistant. Answer the student's question using ONLY the provided context below.

Context:
%s
Question: %s

Instructions:
1. Provide a clear, comprehensive answer based on the context
2. If the context doesn't contain enough information, say so
3. Reference specific sources when making claims (e.g., "According to Source 1...")
4. Be concise but thorough

Answer:`, sb.String(), question)
}

// snippet truncates chunk text to the link preview length without
// splitting a multi-byte rune.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetRunes {
		return text
	}
	return string(runes[:snippetRunes])
}
