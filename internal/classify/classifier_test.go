package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/taxonomy"
)

// constantEmbedder returns the same vector for every text, so every
// semantic score is 1 and keyword coverage decides the winner.
type constantEmbedder struct{}

func (constantEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// failingEmbedder forces the semantic signal to zero.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding unavailable")
}

func TestDetectByExactCategoryName(t *testing.T) {
	c := New(nlp.NewService(), constantEmbedder{}, DefaultConfig())

	for _, cat := range taxonomy.Categories {
		question := fmt.Sprintf("What is your %s policy?", cat)

		got, confidence, ok := c.Detect(context.Background(), question)

		require.True(t, ok, question)
		assert.Equal(t, cat, got, question)
		assert.Greater(t, confidence, 0.2)
	}
}

func TestDetectRejectsUnrelatedQuestion(t *testing.T) {
	c := New(nlp.NewService(), failingEmbedder{}, DefaultConfig())

	_, confidence, ok := c.Detect(context.Background(), "What is the weather like today?")

	assert.False(t, ok)
	assert.Zero(t, confidence)
}

func TestDetectThresholdIsStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptThreshold = 0.3
	c := New(nlp.NewService(), constantEmbedder{}, cfg)

	// No keyword hits, so every category scores exactly the semantic
	// weight of 0.3. A score equal to the threshold must not be accepted.
	_, _, ok := c.Detect(context.Background(), "hello out loud")

	assert.False(t, ok)
}

func TestDetectTiesResolveToCanonicalOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptThreshold = 0.29
	c := New(nlp.NewService(), constantEmbedder{}, cfg)

	// All four categories tie at 0.3; the earliest canonical entry wins.
	got, _, ok := c.Detect(context.Background(), "hello out loud")

	require.True(t, ok)
	assert.Equal(t, taxonomy.Refunds, got)
}

func TestDetectSurvivesEmbeddingOutage(t *testing.T) {
	c := New(nlp.NewService(), failingEmbedder{}, DefaultConfig())

	// Keyword coverage alone must still classify a strongly worded
	// question.
	got, _, ok := c.Detect(context.Background(),
		"I want a refund, money back, or some other reimbursement credit for my returns")

	require.True(t, ok)
	assert.Equal(t, taxonomy.Refunds, got)
}
