package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ollamaembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/lectern/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lectern/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	assert.NotPanics(t, result.Close)
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantErr  error
	}{
		{name: "nil settings", settings: nil},
		{name: "unconfigured", settings: &domain.EmbeddingSettings{}},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "bge-m3"},
			wantType: &ollamaembed.EmbeddingService{},
		},
		{
			name:     "openai",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"},
			wantType: &openaiembed.EmbeddingService{},
		},
		{
			name:     "rate limited",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, RateLimit: 2},
			wantType: &ratelimit.EmbeddingService{},
		},
		{
			name:     "anthropic",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:  domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, domain.DeviceAuto)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			if tt.wantType == nil {
				assert.Nil(t, svc)
				return
			}
			assert.IsType(t, tt.wantType, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateEmbeddingService_Dimensions(t *testing.T) {
	known, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, Model: "nomic-embed-text",
	}, domain.DeviceAuto)
	require.NoError(t, err)
	assert.Equal(t, 768, known.Dimensions())

	override, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-large", Dimensions: 256,
	}, domain.DeviceAuto)
	require.NoError(t, err)
	assert.Equal(t, 256, override.Dimensions())

	unknown, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, Model: "custom",
	}, domain.DeviceAuto)
	require.NoError(t, err)
	assert.Zero(t, unknown.Dimensions())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
	}{
		{name: "nil settings", settings: nil},
		{name: "unconfigured", settings: &domain.LLMSettings{}},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}},
		{
			name:     "ollama",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama},
			wantType: &ollamallm.LLMService{},
		},
		{
			name:     "openai",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"},
			wantType: &openaillm.LLMService{},
		},
		{
			name:     "anthropic",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantType: &anthropicllm.LLMService{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, domain.DeviceCPU)
			require.NoError(t, err)
			if tt.wantType == nil {
				assert.Nil(t, svc)
				return
			}
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestInitialise(t *testing.T) {
	settings := domain.DefaultAppSettings()
	result := Initialise(&settings)
	defer result.Close()

	assert.NotNil(t, result.EmbeddingService)
	assert.NotNil(t, result.LLMService)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "bge-m3", result.EmbeddingService.ModelName())
}

func TestInitialise_WarnsOnUnusableProviders(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI}

	result := Initialise(&settings)

	assert.Nil(t, result.EmbeddingService)
	assert.Nil(t, result.LLMService)
	assert.Len(t, result.Warnings, 2)
}

func TestCreateAndValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	embed, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: server.URL,
	}, domain.DeviceAuto)
	require.NoError(t, err)
	assert.NotNil(t, embed)

	llm, err := CreateAndValidateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: server.URL,
	}, domain.DeviceAuto)
	require.NoError(t, err)
	assert.NotNil(t, llm)

	_, err = CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	}, domain.DeviceAuto)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = CreateAndValidateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	}, domain.DeviceAuto)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	none, err := CreateAndValidateLLMService(nil, domain.DeviceAuto)
	assert.NoError(t, err)
	assert.Nil(t, none)
}
