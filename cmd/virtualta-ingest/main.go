package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virtualta/virtualta/internal/chunker"
	"github.com/virtualta/virtualta/internal/config"
	"github.com/virtualta/virtualta/internal/corpus"
	"github.com/virtualta/virtualta/internal/embedder"
	"github.com/virtualta/virtualta/internal/ingest"
	"github.com/virtualta/virtualta/pkg/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, aborting ingestion", sig)
		cancel()
	}()

	var docs []types.Document

	courseDocs, err := ingest.LoadMarkdownDir(cfg.Ingest.MarkdownDir)
	if err != nil {
		log.Fatalf("Failed to load course content from %s: %v", cfg.Ingest.MarkdownDir, err)
	}
	log.Printf("Loaded %d course content documents", len(courseDocs))
	docs = append(docs, courseDocs...)

	forumDocs, err := ingest.LoadDiscourseFile(cfg.Ingest.DiscourseFile, "")
	if err != nil {
		log.Fatalf("Failed to load discourse posts from %s: %v", cfg.Ingest.DiscourseFile, err)
	}
	log.Printf("Loaded %d discourse topic documents", len(forumDocs))
	docs = append(docs, forumDocs...)

	ch, err := chunker.New(cfg.Chunker.WindowWords, cfg.Chunker.OverlapWords)
	if err != nil {
		log.Fatalf("Invalid chunker config: %v", err)
	}

	provider, err := embedder.New(embedder.Config{
		Provider: cfg.Providers.Embedding,
		APIKey:   embedder.APIKeyFromEnv(cfg.Providers.Embedding),
		Model:    cfg.Providers.EmbeddingModel,
		BaseURL:  cfg.Providers.EmbeddingURL,
		Timeout:  cfg.Providers.Timeout(),
	})
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}
	client := embedder.NewClient(provider, embedder.ClientConfig{
		RatePerSecond: cfg.Providers.EmbedRatePerSecond,
	})

	store, err := corpus.New(provider.Dimension())
	if err != nil {
		log.Fatalf("Failed to create corpus: %v", err)
	}

	pipeline := ingest.New(ch, client, store, ingest.Config{
		BatchSize: cfg.Ingest.BatchSize,
		Workers:   cfg.Ingest.Workers,
	})

	stats, err := pipeline.Run(ctx, docs)
	if err != nil {
		log.Fatalf("Ingestion failed, nothing persisted: %v", err)
	}
	log.Printf("Ingested %d documents as %d chunks in %d batches (%s)",
		stats.Documents, stats.Chunks, stats.Batches, stats.Duration.Round(time.Millisecond))

	if err := store.Save(cfg.Corpus.IndexPath, cfg.Corpus.MetadataPath); err != nil {
		log.Fatalf("Failed to save corpus: %v", err)
	}
	log.Printf("Saved index to %s and metadata to %s", cfg.Corpus.IndexPath, cfg.Corpus.MetadataPath)
}
