package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerOptions configures generation for the answer service.
type AnswerOptions struct {
	// DefaultTopK is used when a caller passes topK == 0.
	DefaultTopK int

	// MaxTokens bounds the answer length.
	MaxTokens int

	// Temperature is passed through to the model.
	Temperature float64

	// Timeout bounds a single generation call. Zero means no extra bound.
	Timeout time.Duration
}

// AnswerOptionsFromSettings derives answer options from application settings.
func AnswerOptionsFromSettings(settings *domain.AppSettings) AnswerOptions {
	return AnswerOptions{
		DefaultTopK: settings.TopK,
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
		Timeout:     settings.Timeouts.Generation,
	}
}

// AnswerService retrieves passages and asks the language model to answer
// from them.
type AnswerService struct {
	index   *IndexStore
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    AnswerOptions
}

// NewAnswerService creates a new answer service.
// The prompts parameter is optional; without it the built-in template is used.
func NewAnswerService(
	index *IndexStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts AnswerOptions,
) *AnswerService {
	if opts.DefaultTopK < 1 {
		opts.DefaultTopK = domain.DefaultTopK
	}
	return &AnswerService{
		index:   index,
		llm:     llm,
		prompts: prompts,
		opts:    opts,
	}
}

// Retrieve returns the passages most similar to question.
func (s *AnswerService) Retrieve(ctx context.Context, question string, topK int) ([]domain.ScoredChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK == 0 {
		topK = s.opts.DefaultTopK
	}

	done := logger.Timed("retrieve")
	hits, err := s.index.Query(ctx, question, topK)
	done()
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d passages", len(hits))
	return hits, nil
}

// Answer retrieves up to topK passages and generates an answer grounded in them.
func (s *AnswerService) Answer(ctx context.Context, question string, topK int) (*domain.AnswerResult, error) {
	logger.Section("Answer")
	logger.Debug("Question: %q, top_k: %d", question, topK)

	hits, err := s.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(strings.TrimSpace(question), hits)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sources := make([]domain.AnswerSource, len(hits))
	for i, hit := range hits {
		sources[i] = domain.AnswerSource{
			Text:     hit.Chunk.Text,
			Score:    hit.Score,
			Metadata: hit.Chunk.Metadata,
		}
	}

	return &domain.AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}

func (s *AnswerService) generate(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	done := logger.Timed("generate")
	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	done()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGeneration, s.llm.ModelName(), err)
	}
	return answer, nil
}

// buildPrompt fills the answer template with numbered passages.
func (s *AnswerService) buildPrompt(question string, hits []domain.ScoredChunk) string {
	template := domain.DefaultQAPrompt
	if s.prompts != nil {
		if loaded, err := s.prompts.Load(driven.PromptQAAnswer); err == nil && loaded != "" {
			template = loaded
		} else if err != nil {
			logger.Warn("Falling back to built-in answer prompt: %v", err)
		}
	}

	return strings.NewReplacer(
		"{context}", BuildContext(hits),
		"{question}", question,
	).Replace(template)
}

// BuildContext renders passages as "[n] text" blocks joined by the
// context separator, in retrieval order.
func BuildContext(hits []domain.ScoredChunk) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = "[" + strconv.Itoa(i+1) + "] " + hit.Chunk.Text
	}
	return strings.Join(parts, domain.ContextSeparator)
}
