// Package embedding provides sentence embeddings behind a small interface
// so that scoring components never talk to the API client directly.
package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/metrics"
	"github.com/policy-agent/backend/pkg/circuitbreaker"
	"github.com/policy-agent/backend/pkg/logger"
	"github.com/policy-agent/backend/pkg/retry"
	"github.com/policy-agent/backend/pkg/utils"
)

// Embedder produces a vector representation of the given text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache stores embeddings keyed by a text hash. Implementations must treat
// misses as (nil, false, nil); errors degrade to a direct API call.
type Cache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

type Client struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	cache       Cache
	cacheTTL    time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, timeoutSec int, cache Cache, cacheTTL time.Duration) *Client {
	cb := circuitbreaker.NewCircuitBreaker("embedding", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Embedding client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cache:       cache,
		cacheTTL:    cacheTTL,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	textHash := utils.HashString(text)

	if c.cache != nil {
		cached, ok, err := c.cache.GetEmbedding(ctx, textHash)
		if err != nil {
			logger.Warn("Embedding cache read failed", zap.Error(err))
		} else if ok {
			metrics.EmbeddingCacheHits.Inc()
			return cached, nil
		} else {
			metrics.EmbeddingCacheMisses.Inc()
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var embedding []float32

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.model),
				},
			)

			if err != nil {
				return fmt.Errorf("failed to generate embedding: %w", err)
			}

			embedding = make([]float32, len(resp.Data[0].Embedding))
			copy(embedding, resp.Data[0].Embedding)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetEmbedding(ctx, textHash, embedding, c.cacheTTL); err != nil {
			logger.Warn("Embedding cache write failed", zap.Error(err))
		}
	}

	return embedding, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either has
// no magnitude or the dimensions disagree.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Similarity embeds both texts and returns their cosine similarity.
func Similarity(ctx context.Context, e Embedder, text1, text2 string) (float64, error) {
	v1, err := e.Embed(ctx, text1)
	if err != nil {
		return 0, err
	}
	v2, err := e.Embed(ctx, text2)
	if err != nil {
		return 0, err
	}
	return Cosine(v1, v2), nil
}
