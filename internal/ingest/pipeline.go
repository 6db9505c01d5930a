package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/virtualta/virtualta/internal/chunker"
	"github.com/virtualta/virtualta/internal/corpus"
	"github.com/virtualta/virtualta/internal/embedder"
	"github.com/virtualta/virtualta/pkg/types"
)

// DefaultBatchSize bounds how many chunks are embedded and committed
// per batch.
const DefaultBatchSize = 100

// ErrNoDocuments is returned when every configured source turned out
// to be empty or absent.
var ErrNoDocuments = errors.New("no documents to ingest")

// Config tunes the pipeline.
type Config struct {
	BatchSize int

	// Workers bounds concurrent embedding calls within a batch. The
	// default of 1 embeds sequentially, which is the gentlest shape
	// for provider rate limits. With more workers, results are still
	// committed in original chunk order.
	Workers int
}

// Stats summarizes a completed ingestion run.
type Stats struct {
	Documents int
	Chunks    int
	Batches   int
	Duration  time.Duration
}

// Pipeline composes the chunker, embedding client, and corpus into
// the offline ingestion path.
type Pipeline struct {
	chunker   *chunker.Chunker
	embedder  *embedder.Client
	corpus    *corpus.Corpus
	batchSize int
	workers   int
}

// New creates an ingestion pipeline.
func New(ch *chunker.Chunker, emb *embedder.Client, store *corpus.Corpus, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Pipeline{
		chunker:   ch,
		embedder:  emb,
		corpus:    store,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
	}
}

// Run chunks all documents and indexes them batch by batch. Any
// embedding failure aborts the run; the corpus passed to New must
// then be discarded, not persisted.
func (p *Pipeline) Run(ctx context.Context, docs []types.Document) (*Stats, error) {
	start := time.Now()

	var chunks []types.Chunk
	for _, doc := range docs {
		chunks = append(chunks, p.chunker.ChunkDocument(doc)...)
	}
	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}
	log.Printf("ingest: %d documents, %d chunks to embed", len(docs), len(chunks))

	batches := 0
	for offset := 0; offset < len(chunks); offset += p.batchSize {
		end := offset + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		vectors, err := p.embedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch starting at chunk %d: %w", offset, err)
		}
		if err := p.corpus.AppendBatch(vectors, batch); err != nil {
			return nil, err
		}
		batches++
		log.Printf("ingest: indexed %d/%d chunks (corpus size %d)", end, len(chunks), p.corpus.Size())
	}

	return &Stats{
		Documents: len(docs),
		Chunks:    len(chunks),
		Batches:   batches,
		Duration:  time.Since(start),
	}, nil
}

// embedBatch embeds one batch of chunk texts, preserving chunk order
// in the returned vectors regardless of worker count.
func (p *Pipeline) embedBatch(ctx context.Context, batch []types.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(batch))

	if p.workers == 1 {
		for i, chunk := range batch {
			if i > 0 && i%10 == 0 {
				log.Printf("ingest: embedding %d/%d in current batch", i, len(batch))
			}
			vec, err := p.embedder.Embed(ctx, chunk.Text, embedder.TaskDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %q: %w", chunk.ChunkID, chunk.Source, err)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}

	// Each worker writes its own slot, so the commit order below is
	// the original chunk order even though calls overlap.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, chunk := range batch {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, chunk.Text, embedder.TaskDocument)
			if err != nil {
				return fmt.Errorf("embed chunk %d of %q: %w", chunk.ChunkID, chunk.Source, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
