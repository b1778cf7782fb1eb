package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policy-agent/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestReplaceConditionsIsIdempotent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	conds := []string{
		"Refunds are available within 30 days of purchase.",
		"Items must be returned in their original packaging.",
	}

	require.NoError(t, c.ReplaceConditions(ctx, "refunds", conds, "refunds_v1.txt"))
	require.NoError(t, c.ReplaceConditions(ctx, "refunds", conds, "refunds_v1.txt"))

	got, err := c.Conditions(ctx, "refunds")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, conds[0], got[0].Condition)
	assert.Equal(t, conds[1], got[1].Condition)
	assert.Equal(t, "refunds_v1.txt", got[0].SourceFile)
}

func TestReplaceConditionsIsolatesCategories(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.ReplaceConditions(ctx, "refunds", []string{"refund condition"}, "a.txt"))
	require.NoError(t, c.ReplaceConditions(ctx, "payments", []string{"payment condition"}, "b.txt"))
	require.NoError(t, c.ReplaceConditions(ctx, "refunds", []string{"new refund condition"}, "c.txt"))

	counts, err := c.ConditionCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["refunds"])
	assert.Equal(t, 1, counts["payments"])

	got, err := c.Conditions(ctx, "refunds")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new refund condition", got[0].Condition)
}

func TestConditionsEmptyCategory(t *testing.T) {
	c := newTestClient(t)

	got, err := c.Conditions(context.Background(), "exchanges")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueryHistoryRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"q1", "q2", "q3"} {
		require.NoError(t, c.InsertQueryRecord(ctx, models.QueryRecord{
			ID:         id,
			Question:   "question " + id,
			Category:   "refunds",
			Confidence: 0.4,
			Source:     "database",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := c.QueryHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q3", got[0].ID)
	assert.Equal(t, "q2", got[1].ID)
	assert.Equal(t, "question q3", got[0].Question)
	assert.Equal(t, "database", got[0].Source)
}
