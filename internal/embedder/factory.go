package embedder

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variables for provider selection and credentials.
const (
	EnvProvider     = "VIRTUALTA_EMBEDDING_PROVIDER"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New creates a provider from explicit configuration.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// APIKeyFromEnv returns the credential for the named provider.
// Unrecognized names fall back to the Gemini key, matching New's
// default provider.
func APIKeyFromEnv(provider string) string {
	if strings.ToLower(provider) == ProviderOpenAI {
		return os.Getenv(EnvOpenAIAPIKey)
	}
	return os.Getenv(EnvGeminiAPIKey)
}

// NewFromEnv creates a provider based on environment variables.
// Priority:
//  1. VIRTUALTA_EMBEDDING_PROVIDER (gemini, openai)
//  2. Whichever of GEMINI_API_KEY / OPENAI_API_KEY is set
func NewFromEnv() (Provider, error) {
	provider := strings.ToLower(os.Getenv(EnvProvider))
	geminiKey := os.Getenv(EnvGeminiAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	switch provider {
	case ProviderGemini:
		return NewGeminiProvider(geminiKey, "", "", 0)
	case ProviderOpenAI:
		return NewOpenAIProvider(openaiKey, "", "", 0)
	case "":
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}

	if geminiKey != "" {
		return NewGeminiProvider(geminiKey, "", "", 0)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, "", "", 0)
	}
	return nil, fmt.Errorf("%w: set %s or %s", ErrNoAPIKey, EnvGeminiAPIKey, EnvOpenAIAPIKey)
}
