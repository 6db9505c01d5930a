package integration

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/virtualta/virtualta/internal/embedder"
)

// MockEmbedder provides a fake embedding provider for testing. It
// generates deterministic unit vectors from the text hash, so equal
// texts always land on the same point and retrieval is repeatable.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock provider with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates a deterministic fake embedding.
func (m *MockEmbedder) Embed(_ context.Context, text string, _ embedder.Task) ([]float32, error) {
	if text == "" {
		return nil, embedder.ErrEmptyText
	}

	hash := sha256.Sum256([]byte(text))
	vector := make([]float32, m.dimension)
	for i := range vector {
		idx := (i * 4) % 32
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		vector[i] = (float32(val)/float32(1<<32))*2 - 1
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sum))
	if norm > 0 {
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}

// Dimension returns the embedding dimension.
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

// Name returns the provider name.
func (m *MockEmbedder) Name() string {
	return "mock"
}
