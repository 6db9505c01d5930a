package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/virtualta/virtualta/internal/corpus"
	"github.com/virtualta/virtualta/internal/embedder"
	"github.com/virtualta/virtualta/pkg/types"
)

const (
	// DefaultTopK is how many chunks a query returns by default.
	DefaultTopK = 5

	// DefaultThreshold keeps every non-negative similarity. Raise it
	// to trade recall for precision.
	DefaultThreshold = 0.0
)

// ErrEmptyQuestion is returned when the question contains no text.
var ErrEmptyQuestion = errors.New("question is empty")

// Config tunes retrieval.
type Config struct {
	TopK      int
	Threshold float32
}

// Retriever embeds questions and ranks corpus chunks against them.
type Retriever struct {
	embedder  *embedder.Client
	corpus    *corpus.Corpus
	topK      int
	threshold float32
}

// New creates a retriever over an already loaded corpus.
func New(emb *embedder.Client, store *corpus.Corpus, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Retriever{
		embedder:  emb,
		corpus:    store,
		topK:      cfg.TopK,
		threshold: cfg.Threshold,
	}
}

// Retrieve returns up to TopK chunks ranked by similarity to the
// question, most similar first. Chunks scoring below the threshold
// are dropped, so the result may be shorter than TopK or empty.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]types.RetrievedChunk, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	vec, err := r.embedder.Embed(ctx, question, embedder.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	// Over-fetch so threshold filtering still leaves TopK candidates
	// when some hits fall below the cutoff.
	hits, err := r.corpus.Search(vec, r.topK*2)
	if err != nil {
		return nil, fmt.Errorf("search corpus: %w", err)
	}

	results := make([]types.RetrievedChunk, 0, r.topK)
	for _, hit := range hits {
		if hit.Score < r.threshold {
			continue
		}
		chunk, err := r.corpus.Get(hit.Position)
		if err != nil {
			if errors.Is(err, corpus.ErrOutOfRange) {
				// Index and metadata disagree; skip the hit rather
				// than fail the whole query.
				log.Printf("retriever: no metadata for position %d, skipping", hit.Position)
				continue
			}
			return nil, fmt.Errorf("metadata for position %d: %w", hit.Position, err)
		}
		results = append(results, types.RetrievedChunk{Chunk: chunk, Similarity: hit.Score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}
