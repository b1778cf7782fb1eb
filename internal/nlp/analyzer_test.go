package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	svc := NewService()

	assert.Equal(t, "What is this?", svc.CleanText("What   is \t this?"))
	assert.Equal(t, "refund please", svc.CleanText("  refund ** please  "))
	assert.Equal(t, "", svc.CleanText("   "))
}

func TestIntent(t *testing.T) {
	svc := NewService()

	assert.Equal(t, "how", svc.Intent("How do I get a refund?"))
	assert.Equal(t, "when", svc.Intent("when will my payment arrive"))
	assert.Equal(t, "general", svc.Intent("Tell me about transfers."))
	assert.Equal(t, "general", svc.Intent(""))
}

func TestKeyPhrasesFindsAmountsAndDurations(t *testing.T) {
	svc := NewService()

	phrases := svc.KeyPhrases("A $25 fee applies and refunds take 5 business days.")

	assert.Contains(t, phrases, "$25")
	assert.Contains(t, phrases, "5 business days")
}

func TestKeyPhrasesDeduplicates(t *testing.T) {
	svc := NewService()

	phrases := svc.KeyPhrases("The refund policy explains the refund policy.")

	seen := make(map[string]int)
	for _, p := range phrases {
		seen[p]++
		assert.Equal(t, 1, seen[p], p)
	}
}

func TestLemma(t *testing.T) {
	assert.Equal(t, "refund", lemma("refunds"))
	assert.Equal(t, "request", lemma("requested"))
	assert.Equal(t, "process", lemma("processing"))
	assert.Equal(t, "policy", lemma("policies"))
	assert.Equal(t, "item", lemma("items"))
}
