package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProviderEmbed(t *testing.T) {
	var gotPath, gotKey, gotTaskType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var body struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			TaskType string `json:"taskType"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotTaskType = body.TaskType
		require.Len(t, body.Content.Parts, 1)
		assert.Equal(t, "hello world", body.Content.Parts[0].Text)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": map[string]interface{}{"values": []float32{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("test-key", "", srv.URL, 0)
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "hello world", TaskDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "/v1beta/models/text-embedding-004:embedContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", gotTaskType)
}

func TestGeminiProviderQueryTaskType(t *testing.T) {
	var gotTaskType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TaskType string `json:"taskType"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTaskType = body.TaskType
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": map[string]interface{}{"values": []float32{1}},
		})
	}))
	defer srv.Close()

	p, err := NewGeminiProvider("test-key", "", srv.URL, 0)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "what is the deadline?", TaskQuery)
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_QUERY", gotTaskType)
}

func TestGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider("", "", "", 0)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGeminiProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantRateErr bool
	}{
		{name: "429 is rate limited", status: 429, body: `{"error":"too many requests"}`, wantRateErr: true},
		{name: "quota wording is rate limited", status: 503, body: `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, wantRateErr: true},
		{name: "plain 500 is a hard failure", status: 500, body: `{"error":"internal"}`, wantRateErr: false},
		{name: "bad request is a hard failure", status: 400, body: `{"error":"invalid"}`, wantRateErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := NewGeminiProvider("test-key", "", srv.URL, 0)
			require.NoError(t, err)

			_, err = p.Embed(context.Background(), "text", TaskDocument)
			require.Error(t, err)
			if tt.wantRateErr {
				assert.ErrorIs(t, err, ErrRateLimited)
			} else {
				assert.ErrorIs(t, err, ErrProviderFailed)
				assert.NotErrorIs(t, err, ErrRateLimited)
			}
		})
	}
}

func TestOpenAIProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body.Input)
		assert.Equal(t, DefaultOpenAIModel, body.Model)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{0.5, 0.5}}},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "", srv.URL, 0)
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "hello", TaskDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestOpenAIProviderEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "", srv.URL, 0)
	require.NoError(t, err)

	_, err = p.Embed(context.Background(), "hello", TaskDocument)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{name: "default is gemini", cfg: Config{APIKey: "k"}, wantName: ProviderGemini},
		{name: "explicit gemini", cfg: Config{Provider: "gemini", APIKey: "k"}, wantName: ProviderGemini},
		{name: "explicit openai", cfg: Config{Provider: "openai", APIKey: "k"}, wantName: ProviderOpenAI},
		{name: "unknown provider", cfg: Config{Provider: "cohere", APIKey: "k"}, wantErr: true},
		{name: "missing key", cfg: Config{Provider: "gemini"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv(EnvGeminiAPIKey, "gem-key")
	t.Setenv(EnvOpenAIAPIKey, "oai-key")

	assert.Equal(t, "gem-key", APIKeyFromEnv(ProviderGemini))
	assert.Equal(t, "oai-key", APIKeyFromEnv(ProviderOpenAI))
	assert.Equal(t, "oai-key", APIKeyFromEnv("OpenAI"))
	// Empty and unknown names resolve like the factory default.
	assert.Equal(t, "gem-key", APIKeyFromEnv(""))
}
