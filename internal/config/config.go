// Package config layers environment overrides on top of stored settings.
//
// Every setting can be overridden with a LECTERN_ variable, for example
// LECTERN_CHUNK_SIZE or LECTERN_LLM_MODEL. Variables are read from the
// process environment after any .env file has been loaded; values already in
// the environment win over the file. Provider API keys additionally fall back
// to the conventional OPENAI_API_KEY and ANTHROPIC_API_KEY.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Prefix is the environment variable prefix.
const Prefix = "LECTERN"

// Env holds the overrides found in the environment. Nil and empty fields are unset.
type Env struct {
	IndexDir string `split_words:"true"`
	Device   string
	TopK     *int `split_words:"true"`

	ChunkSize    *int `split_words:"true"`
	ChunkOverlap *int `split_words:"true"`

	EmbeddingProvider  string         `split_words:"true"`
	EmbeddingModel     string         `split_words:"true"`
	EmbeddingBaseURL   string         `split_words:"true"`
	EmbeddingAPIKey    string         `split_words:"true"`
	EmbeddingRateLimit *float64       `split_words:"true"`
	EmbeddingTimeout   *time.Duration `split_words:"true"`

	LLMProvider       string         `split_words:"true"`
	LLMModel          string         `split_words:"true"`
	LLMBaseURL        string         `split_words:"true"`
	LLMAPIKey         string         `envconfig:"LLM_API_KEY"`
	LLMMaxTokens      *int           `split_words:"true"`
	LLMTemperature    *float64       `split_words:"true"`
	GenerationTimeout *time.Duration `split_words:"true"`

	// Read as LECTERN_OPENAI_API_KEY, then OPENAI_API_KEY.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	// Read as LECTERN_ANTHROPIC_API_KEY, then ANTHROPIC_API_KEY.
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
}

// Load reads the given .env files (default ".env") when they exist, then
// applies LECTERN_ overrides to settings.
func Load(settings *domain.AppSettings, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: load .env: %w", domain.ErrConfiguration, err)
	}

	env, err := ReadEnv()
	if err != nil {
		return err
	}
	return Apply(settings, env)
}

// ReadEnv parses LECTERN_ variables from the process environment.
func ReadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(Prefix, &env); err != nil {
		return Env{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return env, nil
}

// Apply overwrites settings with every override set in env, then validates
// the values that could not be checked while parsing.
func Apply(settings *domain.AppSettings, env Env) error {
	setString(&settings.IndexDir, env.IndexDir)
	if env.Device != "" {
		settings.Device = domain.Device(env.Device)
	}
	setInt(&settings.TopK, env.TopK)
	setInt(&settings.Chunk.Size, env.ChunkSize)
	setInt(&settings.Chunk.Overlap, env.ChunkOverlap)

	if env.EmbeddingProvider != "" {
		settings.Embedding.Provider = domain.AIProvider(env.EmbeddingProvider)
	}
	setString(&settings.Embedding.Model, env.EmbeddingModel)
	setString(&settings.Embedding.BaseURL, env.EmbeddingBaseURL)
	setString(&settings.Embedding.APIKey, env.EmbeddingAPIKey)
	if env.EmbeddingRateLimit != nil {
		settings.Embedding.RateLimit = *env.EmbeddingRateLimit
	}
	if env.EmbeddingTimeout != nil {
		settings.Timeouts.Embedding = *env.EmbeddingTimeout
	}

	if env.LLMProvider != "" {
		settings.LLM.Provider = domain.AIProvider(env.LLMProvider)
	}
	setString(&settings.LLM.Model, env.LLMModel)
	setString(&settings.LLM.BaseURL, env.LLMBaseURL)
	setString(&settings.LLM.APIKey, env.LLMAPIKey)
	setInt(&settings.LLM.MaxTokens, env.LLMMaxTokens)
	if env.LLMTemperature != nil {
		settings.LLM.Temperature = *env.LLMTemperature
	}
	if env.GenerationTimeout != nil {
		settings.Timeouts.Generation = *env.GenerationTimeout
	}

	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = env.OpenAIAPIKey
	}
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = env.OpenAIAPIKey
		case domain.AIProviderAnthropic:
			settings.LLM.APIKey = env.AnthropicAPIKey
		}
	}

	if !settings.Device.IsValid() {
		return fmt.Errorf("%w: unknown device %q", domain.ErrConfiguration, settings.Device)
	}
	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfiguration, settings.LLM.Provider)
	}

	logger.Debug("config: device=%s embedding=%s/%s llm=%s/%s",
		settings.Device, settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
