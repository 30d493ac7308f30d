package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestReadEnv_Empty(t *testing.T) {
	env, err := ReadEnv()
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	settings.IndexDir = "/idx"
	before := settings
	require.NoError(t, Apply(&settings, env))
	assert.Equal(t, before, settings)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LECTERN_INDEX_DIR", "/data/lectern")
	t.Setenv("LECTERN_DEVICE", "cpu")
	t.Setenv("LECTERN_TOP_K", "5")
	t.Setenv("LECTERN_CHUNK_SIZE", "512")
	t.Setenv("LECTERN_CHUNK_OVERLAP", "0")
	t.Setenv("LECTERN_EMBEDDING_MODEL", "nomic-embed-text")
	t.Setenv("LECTERN_EMBEDDING_RATE_LIMIT", "2.5")
	t.Setenv("LECTERN_EMBEDDING_TIMEOUT", "15s")
	t.Setenv("LECTERN_LLM_MODEL", "qwen2.5")
	t.Setenv("LECTERN_LLM_TEMPERATURE", "0")
	t.Setenv("LECTERN_LLM_MAX_TOKENS", "256")
	t.Setenv("LECTERN_GENERATION_TIMEOUT", "3m")

	settings := domain.DefaultAppSettings()
	require.NoError(t, Load(&settings, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "/data/lectern", settings.IndexDir)
	assert.Equal(t, domain.DeviceCPU, settings.Device)
	assert.Equal(t, 5, settings.TopK)
	assert.Equal(t, domain.ChunkSettings{Size: 512, Overlap: 0}, settings.Chunk)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.InDelta(t, 2.5, settings.Embedding.RateLimit, 1e-9)
	assert.Equal(t, 15*time.Second, settings.Timeouts.Embedding)
	assert.Equal(t, "qwen2.5", settings.LLM.Model)
	assert.Zero(t, settings.LLM.Temperature)
	assert.Equal(t, 256, settings.LLM.MaxTokens)
	assert.Equal(t, 3*time.Minute, settings.Timeouts.Generation)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LECTERN_LLM_PROVIDER=anthropic\nLECTERN_ANTHROPIC_API_KEY=sk-ant-file\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("LECTERN_LLM_PROVIDER")
		os.Unsetenv("LECTERN_ANTHROPIC_API_KEY")
	})

	settings := domain.DefaultAppSettings()
	require.NoError(t, Load(&settings, path))

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "sk-ant-file", settings.LLM.APIKey)
}

func TestApply_ProviderKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-plain")
	t.Setenv("LECTERN_EMBEDDING_PROVIDER", "openai")
	t.Setenv("LECTERN_LLM_PROVIDER", "openai")

	env, err := ReadEnv()
	require.NoError(t, err)
	assert.Equal(t, "sk-plain", env.OpenAIAPIKey)

	settings := domain.DefaultAppSettings()
	require.NoError(t, Apply(&settings, env))
	assert.Equal(t, "sk-plain", settings.Embedding.APIKey)
	assert.Equal(t, "sk-plain", settings.LLM.APIKey)
}

func TestApply_StoredKeyWins(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.APIKey = "stored"

	require.NoError(t, Apply(&settings, Env{OpenAIAPIKey: "env"}))
	assert.Equal(t, "stored", settings.LLM.APIKey)
}

func TestApply_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  Env
	}{
		{"device", Env{Device: "tpu"}},
		{"embedding provider", Env{EmbeddingProvider: "cohere"}},
		{"llm provider", Env{LLMProvider: "mistral"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultAppSettings()
			assert.ErrorIs(t, Apply(&settings, tt.env), domain.ErrConfiguration)
		})
	}
}

func TestReadEnv_ParseError(t *testing.T) {
	t.Setenv("LECTERN_CHUNK_SIZE", "big")

	_, err := ReadEnv()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
