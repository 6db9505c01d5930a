package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/virtualta/virtualta/internal/chunker"
	"github.com/virtualta/virtualta/internal/embedder"
	"github.com/virtualta/virtualta/internal/ingest"
	"github.com/virtualta/virtualta/internal/retriever"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	WindowWords  int `yaml:"window_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// IngestConfig configures the offline indexing run.
type IngestConfig struct {
	MarkdownDir   string `yaml:"markdown_dir"`
	DiscourseFile string `yaml:"discourse_file"`
	BatchSize     int    `yaml:"batch_size"`
	Workers       int    `yaml:"workers"`
}

// CorpusConfig locates the persisted artifact pair.
type CorpusConfig struct {
	IndexPath    string `yaml:"index_path"`
	MetadataPath string `yaml:"metadata_path"`
}

// RetrieverConfig tunes query-time search.
type RetrieverConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float32 `yaml:"similarity_threshold"`
}

// ProvidersConfig names the external model endpoints. API keys are
// never stored here; they are read from the environment.
type ProvidersConfig struct {
	Embedding       string `yaml:"embedding"`
	EmbeddingModel  string `yaml:"embedding_model"`
	EmbeddingURL    string `yaml:"embedding_url"`
	GenerationModel string `yaml:"generation_model"`
	GenerationURL   string `yaml:"generation_url"`
	TimeoutSecs     int    `yaml:"timeout_secs"`

	// EmbedRatePerSecond throttles outgoing embedding calls when
	// positive. Zero disables the limiter and leaves pacing to the
	// retry policy alone.
	EmbedRatePerSecond float64 `yaml:"embed_rate_per_second"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the root configuration.
type Config struct {
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Providers ProvidersConfig `yaml:"providers"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads the config at path. A missing file returns defaults. A
// .env file next to the working directory is loaded first so keys in
// it become visible to os.Getenv.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Chunker: ChunkerConfig{
			WindowWords:  chunker.DefaultWindowWords,
			OverlapWords: chunker.DefaultOverlapWords,
		},
		Ingest: IngestConfig{
			MarkdownDir:   "data/course_content",
			DiscourseFile: "data/discourse_posts.json",
			BatchSize:     ingest.DefaultBatchSize,
			Workers:       1,
		},
		Corpus: CorpusConfig{
			IndexPath:    "model/virtual-ta.index",
			MetadataPath: "model/metadata.json",
		},
		Retriever: RetrieverConfig{
			TopK:                retriever.DefaultTopK,
			SimilarityThreshold: retriever.DefaultThreshold,
		},
		Providers: ProvidersConfig{
			Embedding:   embedder.ProviderGemini,
			TimeoutSecs: 30,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
	}
}

// applyDefaults fills zero values left by a partial YAML file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Chunker.WindowWords == 0 {
		cfg.Chunker.WindowWords = def.Chunker.WindowWords
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = def.Ingest.BatchSize
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = def.Ingest.Workers
	}
	if cfg.Ingest.MarkdownDir == "" {
		cfg.Ingest.MarkdownDir = def.Ingest.MarkdownDir
	}
	if cfg.Ingest.DiscourseFile == "" {
		cfg.Ingest.DiscourseFile = def.Ingest.DiscourseFile
	}
	if cfg.Corpus.IndexPath == "" {
		cfg.Corpus.IndexPath = def.Corpus.IndexPath
	}
	if cfg.Corpus.MetadataPath == "" {
		cfg.Corpus.MetadataPath = def.Corpus.MetadataPath
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.Providers.Embedding == "" {
		cfg.Providers.Embedding = def.Providers.Embedding
	}
	if cfg.Providers.TimeoutSecs == 0 {
		cfg.Providers.TimeoutSecs = def.Providers.TimeoutSecs
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Chunker.WindowWords <= 0 {
		return fmt.Errorf("chunker.window_words must be positive, got %d", c.Chunker.WindowWords)
	}
	if c.Chunker.OverlapWords < 0 {
		return fmt.Errorf("chunker.overlap_words must not be negative, got %d", c.Chunker.OverlapWords)
	}
	if c.Chunker.OverlapWords >= c.Chunker.WindowWords {
		return fmt.Errorf("chunker.overlap_words %d must be smaller than window_words %d",
			c.Chunker.OverlapWords, c.Chunker.WindowWords)
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size must be at least 1, got %d", c.Ingest.BatchSize)
	}
	if c.Retriever.TopK < 1 {
		return fmt.Errorf("retriever.top_k must be at least 1, got %d", c.Retriever.TopK)
	}
	switch c.Providers.Embedding {
	case embedder.ProviderGemini, embedder.ProviderOpenAI:
	default:
		return fmt.Errorf("providers.embedding must be %q or %q, got %q",
			embedder.ProviderGemini, embedder.ProviderOpenAI, c.Providers.Embedding)
	}
	if c.Providers.EmbedRatePerSecond < 0 {
		return fmt.Errorf("providers.embed_rate_per_second must not be negative, got %g",
			c.Providers.EmbedRatePerSecond)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Timeout returns the provider call timeout as a duration.
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
