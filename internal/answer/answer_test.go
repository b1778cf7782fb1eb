package answer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policy-agent/backend/internal/conditions"
	"github.com/policy-agent/backend/internal/rank"
	"github.com/policy-agent/backend/internal/scraper"
	"github.com/policy-agent/backend/internal/taxonomy"
)

func TestRenderFileBucketOrderAndCap(t *testing.T) {
	buckets := map[conditions.Bucket][]string{
		conditions.Fees:         {"A $10 fee applies to late returns"},
		conditions.Requirements: {"r1", "r2", "r3", "r4", "r5", "r6", "r7"},
	}

	got := RenderFile(taxonomy.Refunds, buckets, nil)

	assert.Contains(t, got, "uploaded file about refunds")
	assert.Contains(t, got, "**Requirements:**")
	assert.Contains(t, got, "**Fees & Costs:**")
	assert.Less(t, strings.Index(got, "**Requirements:**"), strings.Index(got, "**Fees & Costs:**"))

	// capped at five entries per bucket
	assert.Contains(t, got, "5. r5")
	assert.NotContains(t, got, "r6")
}

func TestRenderFileFallsBackToKeyInformation(t *testing.T) {
	var ranked []rank.Item
	for i := 0; i < 12; i++ {
		ranked = append(ranked, rank.Item{Sentence: fmt.Sprintf("ranked sentence %d", i)})
	}

	got := RenderFile(taxonomy.Payments, nil, ranked)

	assert.Contains(t, got, "**Key Information:**")
	assert.Contains(t, got, "10. ranked sentence 9")
	assert.NotContains(t, got, "ranked sentence 10")
}

func TestRenderFileNoFallbackWhenBucketsExist(t *testing.T) {
	buckets := map[conditions.Bucket][]string{
		conditions.Procedures: {"Submit the request form online"},
	}
	ranked := []rank.Item{{Sentence: "a ranked sentence"}}

	got := RenderFile(taxonomy.Refunds, buckets, ranked)

	assert.NotContains(t, got, "Key Information")
}

func TestRenderFileGeneralBucketSuppressesFallback(t *testing.T) {
	buckets := map[conditions.Bucket][]string{
		conditions.General: {"Contact support for questions about your order"},
	}
	ranked := []rank.Item{{Sentence: "a ranked sentence"}}

	got := RenderFile(taxonomy.Refunds, buckets, ranked)

	assert.NotContains(t, got, "Key Information")
	assert.NotContains(t, got, "General Info")
}

func TestRenderWebSkipsFailedSources(t *testing.T) {
	sources := []scraper.SourceResult{
		{
			URL:    "https://example.com/policy",
			Title:  "Example Policy",
			Status: "success",
			Conditions: map[conditions.Bucket][]string{
				conditions.Fees:    {"A $5 fee applies to all orders"},
				conditions.General: {"Our policy covers standard cases"},
			},
		},
		{
			URL:    "https://broken.example.com",
			Status: "error",
			Error:  "fetch returned status 500",
		},
	}

	got := RenderWeb(taxonomy.Transfers, sources)

	assert.Contains(t, got, "websites about transfers")
	assert.Contains(t, got, "**From: Example Policy**")
	assert.Contains(t, got, "**URL:** https://example.com/policy")
	assert.Contains(t, got, "**General Info:**")
	assert.Contains(t, got, strings.Repeat("─", 50))
	assert.NotContains(t, got, "broken.example.com")
}

func TestRenderKnowledgeBaseGroups(t *testing.T) {
	items := []rank.Item{
		{Sentence: "Defective items are eligible for assessment first"},
		{Sentence: "Items are refundable within thirty days"},
		{Sentence: "Orders are processed the same business morning"},
		{Sentence: "Our support team helps with anything else"},
	}

	got := RenderKnowledgeBase("how do refunds work", taxonomy.Refunds, items)

	assert.Contains(t, got, "Here's what I found about refunds (organized):")
	assert.Contains(t, got, "**Refundability:**")
	assert.Contains(t, got, "**Processing:**")
	assert.Contains(t, got, "**Requirements:**")
	assert.Contains(t, got, "**Other:**")

	// refund-related terms are checked before process/time terms
	assert.Less(t, strings.Index(got, "**Refundability:**"), strings.Index(got, "**Processing:**"))
}

func TestRenderKnowledgeBaseDedupesAndDropsBoilerplate(t *testing.T) {
	items := []rank.Item{
		{Sentence: "Items are refundable within thirty days"},
		{Sentence: "Items are refundable within thirty days"},
		{Sentence: "Requirements"},
		{Sentence: "too few words"},
	}

	got := RenderKnowledgeBase("question", taxonomy.Refunds, items)

	assert.Equal(t, 1, strings.Count(got, "Items are refundable within thirty days"))
	assert.NotContains(t, got, "**Requirements:**")
	assert.NotContains(t, got, "too few words")
}

func TestRenderKnowledgeBaseNotFound(t *testing.T) {
	got := RenderKnowledgeBase("How Do I Transfer?", taxonomy.Transfers, nil)

	assert.Equal(t, "No specific information found about how do i transfer? for transfers.", got)
}

func TestRenderKnowledgeBaseAllFilteredOut(t *testing.T) {
	items := []rank.Item{{Sentence: "Summary"}}

	got := RenderKnowledgeBase("question", taxonomy.Refunds, items)

	require.Contains(t, got, "No specific information found")
}
