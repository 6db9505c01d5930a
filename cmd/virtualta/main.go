package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/virtualta/virtualta/internal/answer"
	"github.com/virtualta/virtualta/internal/config"
	"github.com/virtualta/virtualta/internal/corpus"
	"github.com/virtualta/virtualta/internal/embedder"
	"github.com/virtualta/virtualta/internal/retriever"
	"github.com/virtualta/virtualta/internal/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("virtualta %s\n", version)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	log.Printf("virtualta %s starting", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := corpus.Load(cfg.Corpus.IndexPath, cfg.Corpus.MetadataPath)
	if err != nil {
		log.Fatalf("Failed to load corpus from %s and %s: %v",
			cfg.Corpus.IndexPath, cfg.Corpus.MetadataPath, err)
	}
	log.Printf("Loaded %d vectors and %d metadata entries", store.Size(), store.MetadataLen())

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

	gen, err := answer.NewGeminiGenerator(
		os.Getenv(embedder.EnvGeminiAPIKey),
		cfg.Providers.GenerationModel,
		cfg.Providers.GenerationURL,
		cfg.Providers.Timeout(),
	)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	ret := retriever.New(client, store, retriever.Config{
		TopK:      cfg.Retriever.TopK,
		Threshold: cfg.Retriever.SimilarityThreshold,
	})
	asm := answer.NewAssembler(gen)

	srv := server.New(server.Config{Addr: cfg.Server.Addr()}, ret, asm, store, gen.Name())
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
