// Package ratelimit throttles calls to an embedding provider.
package ratelimit

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lectern/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps another EmbeddingService with a token bucket.
// Each embedded text costs one token, so a batch of n texts waits for n tokens.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap limits inner to textsPerSecond. A non-positive rate returns inner unchanged.
func Wrap(inner driven.EmbeddingService, textsPerSecond float64) driven.EmbeddingService {
	if inner == nil || textsPerSecond <= 0 {
		return inner
	}
	burst := int(math.Ceil(textsPerSecond))
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(textsPerSecond), burst),
	}
}

// Embed waits for one token, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, text)
}

// EmbedBatch waits for one token per text, then embeds the batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for range texts {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
