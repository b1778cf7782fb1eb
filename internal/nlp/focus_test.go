package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFocusExtractsContentTermsAndInterrogatives(t *testing.T) {
	svc := NewService()

	focus := svc.Focus("How long do I have to request a refund for a defective item?")

	assert.Contains(t, focus, "refund")
	assert.Contains(t, focus, "how")
	assert.NotContains(t, focus, "the")
	assert.NotContains(t, focus, "for")
}

func TestFocusDeduplicates(t *testing.T) {
	svc := NewService()

	focus := svc.Focus("Can I refund a refund of my refunds?")

	count := 0
	for _, term := range focus {
		if term == "refund" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFocusDegenerateInput(t *testing.T) {
	svc := NewService()

	assert.Empty(t, svc.Focus(""))
	assert.Empty(t, svc.Focus("  ?! "))
}

func TestFocusInterrogativeAnywhere(t *testing.T) {
	svc := NewService()

	focus := svc.Focus("Tell me when transfers arrive.")

	assert.Contains(t, focus, "when")
	assert.Contains(t, focus, "transfer")
}
