package conditions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeFirstMatchWins(t *testing.T) {
	// "must" (requirements) beats "fee" (fees) because requirements is
	// checked first.
	got := Categorize([]string{"You must pay a processing fee upfront"})

	assert.Len(t, got[Requirements], 1)
	assert.Empty(t, got[Fees])
}

func TestCategorizeIsAPartition(t *testing.T) {
	sentences := []string{
		"You must provide a valid receipt",
		"A $10 restocking fee applies to all returns",
		"Refunds arrive within 7 business days",
		"Gift cards cannot be exchanged for anything",
		"Submit the request form online to begin",
		"Our policy covers most standard situations",
	}

	got := Categorize(sentences)

	total := 0
	seen := make(map[string]int)
	for _, bucket := range Buckets {
		for _, s := range got[bucket] {
			seen[s]++
			total++
		}
	}
	assert.Equal(t, len(sentences), total)
	for s, n := range seen {
		assert.Equal(t, 1, n, s)
	}
}

func TestCategorizeDropsShortSentences(t *testing.T) {
	got := Categorize([]string{"Fee is $5"})

	for _, bucket := range Buckets {
		assert.Empty(t, got[bucket])
	}
}

func TestCategorizeUnmatchedLongGoesToGeneral(t *testing.T) {
	sentence := "Elephants wander across grassy African savannahs"
	got := Categorize([]string{sentence})

	assert.Equal(t, []string{sentence}, got[General])
}

func TestCategorizeUnmatchedMidLengthDropped(t *testing.T) {
	// 15-20 characters, no keyword match: skipped silently.
	got := Categorize([]string{"Zebras gallop away"})

	for _, bucket := range Buckets {
		assert.Empty(t, got[bucket], bucket.String())
	}
}

func TestCategorizeCapsBucketsAtEight(t *testing.T) {
	var sentences []string
	for i := 0; i < 12; i++ {
		sentences = append(sentences, fmt.Sprintf("A large fee number %d gets charged", i))
	}

	got := Categorize(sentences)

	require.Len(t, got[Fees], 8)
	assert.Equal(t, sentences[0], got[Fees][0])
	assert.Equal(t, sentences[7], got[Fees][7])
}

func TestExtractSplitsText(t *testing.T) {
	got := Extract("You must provide a valid receipt. A $10 restocking fee applies to all purchases.")

	assert.Len(t, got[Requirements], 1)
	assert.Len(t, got[Fees], 1)
}

func TestBucketLabels(t *testing.T) {
	assert.Equal(t, "Requirements", Requirements.Label())
	assert.Equal(t, "Fees & Costs", Fees.Label())
	assert.Equal(t, "General Info", General.Label())
	assert.Equal(t, "general_info", General.String())
}
