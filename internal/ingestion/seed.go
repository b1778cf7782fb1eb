package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/taxonomy"
	"github.com/policy-agent/backend/pkg/logger"
)

// sampleConditions holds the seed policy sentences written per category.
// Each sentence pairs a condition with its explanation so the builder has
// realistic material to segment.
var sampleConditions = map[taxonomy.Category][]string{
	taxonomy.Refunds: {
		"Refunds are issued within 14 days for defective products. Only products verified as defective by our team qualify for refunds within this period.",
		"No refunds are provided for items purchased more than 30 days ago. This policy ensures timely processing and verification of refund requests.",
		"Damaged items must be returned in original packaging for a refund. Original packaging helps verify the condition of the returned item.",
		"Credit card refunds are processed to the original card within 5 business days. Refunds are credited directly to the card used for purchase.",
		"All refunds require a valid receipt or order number. This ensures eligibility for all refund processing.",
		"Refunds are not available for change of mind on non-defective items. This applies to items that are fully functional and undamaged.",
	},
	taxonomy.Payments: {
		"Payments are accepted via credit card, debit card, and bank transfer. Cash payments are only accepted in physical stores.",
		"Card payments require a verified billing address. Verification protects against fraudulent transactions.",
		"Online payments are processed within 24 hours. A confirmation email is sent once the payment settles.",
		"Failed payments are retried once before the order is cancelled. Customers are notified after each failed attempt.",
		"A 1.5% surcharge applies to international card payments. The surcharge covers currency conversion costs.",
	},
	taxonomy.Transfers: {
		"Bank transfers are completed within 3 business days. Processing time depends on the receiving institution.",
		"Wire transfers over $10,000 require additional identity verification. Verification is mandated by anti-fraud regulations.",
		"Transfers cannot be cancelled once they have been dispatched. Contact support immediately if a transfer was sent in error.",
		"Electronic transfers to registered accounts are free of charge. Unregistered accounts incur a $5 transfer fee.",
		"Same day transfers must be requested before 2 PM local time. Requests after the cutoff are processed the next business day.",
	},
	taxonomy.Exchanges: {
		"Exchanges are permitted within 30 days of purchase. Items must be unused and in saleable condition.",
		"Exchanged items must be of equal or greater value. Price differences are charged at the time of exchange.",
		"Promotional items cannot be exchanged or swapped. Promotional pricing makes these items final sale.",
		"Exchanges for defective products are processed free of charge. A replacement ships once the original item is received.",
		"Currency conversion for exchanges uses the daily posted rate. Rates are updated every business morning.",
	},
}

// WriteSampleDocs writes one training document per category into the
// folder, conditions grouped under the category's section titles. Existing
// files with the same names are overwritten.
func WriteSampleDocs(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create training folder: %w", err)
	}

	for _, cat := range taxonomy.Categories {
		path := filepath.Join(folder, fmt.Sprintf("%s_v1.txt", cat))
		if err := os.WriteFile(path, []byte(sampleDoc(cat)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("Wrote sample training document",
			zap.String("category", cat.String()),
			zap.String("path", path))
	}
	return nil
}

// sampleDoc distributes the category's conditions round-robin across its
// section titles.
func sampleDoc(cat taxonomy.Category) string {
	titles := cat.SectionTitles()
	conds := sampleConditions[cat]

	sections := make([][]string, len(titles))
	for i, cond := range conds {
		idx := i % len(titles)
		sections[idx] = append(sections[idx], cond)
	}

	var b strings.Builder
	for i, title := range titles {
		b.WriteString(title + "\n\n")
		for _, cond := range sections[i] {
			b.WriteString(cond + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
