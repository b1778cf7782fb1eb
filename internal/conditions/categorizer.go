// Package conditions assigns policy sentences to semantic buckets
// (requirements, fees, timeframes, restrictions, procedures, general) by
// a first-match keyword rule over a fixed priority order.
package conditions

import (
	"strings"

	"github.com/policy-agent/backend/internal/nlp"
)

type Bucket int

const (
	Requirements Bucket = iota
	Fees
	Timeframes
	Restrictions
	Procedures
	General
)

// Buckets lists every bucket in match-priority order. Earlier buckets win:
// a sentence mentioning both a fee and a deadline lands in Fees.
var Buckets = []Bucket{Requirements, Fees, Timeframes, Restrictions, Procedures, General}

func (b Bucket) String() string {
	switch b {
	case Requirements:
		return "requirements"
	case Fees:
		return "fees"
	case Timeframes:
		return "timeframes"
	case Restrictions:
		return "restrictions"
	case Procedures:
		return "procedures"
	case General:
		return "general_info"
	default:
		return "unknown"
	}
}

// Label returns the heading used when the bucket is rendered.
func (b Bucket) Label() string {
	switch b {
	case Fees:
		return "Fees & Costs"
	case General:
		return "General Info"
	default:
		s := b.String()
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

var bucketKeywords = map[Bucket][]string{
	Requirements: {"require", "need", "must", "should", "have to", "eligible", "condition", "qualify", "prerequisite"},
	Fees:         {"fee", "cost", "charge", "price", "$", "percent", "%", "€", "euro", "dollar", "pound", "yen", "amount", "rate"},
	Timeframes:   {"day", "week", "month", "hour", "time", "deadline", "period", "duration", "limit", "expiry", "valid", "year"},
	Restrictions: {"cannot", "not allowed", "prohibited", "restricted", "limit", "not eligible", "exclusive", "forbidden", "banned", "excluded"},
	Procedures:   {"step", "process", "procedure", "how to", "follow", "complete", "submit", "fill", "form", "application", "request", "file", "check"},
	General:      {"policy", "terms", "conditions", "rules", "guidelines", "information", "details", "note", "important", "attention"},
}

const (
	minSentenceLen = 15
	generalMinLen  = 20
	bucketCap      = 8
)

// Categorize partitions sentences into buckets. Each sentence lands in at
// most one bucket; sentences under 15 characters are skipped, unmatched
// sentences over 20 characters fall into General, and the rest are dropped.
// Encounter order is preserved and each bucket holds at most 8 sentences.
func Categorize(sentences []string) map[Bucket][]string {
	result := make(map[Bucket][]string, len(Buckets))

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLen {
			continue
		}
		lower := strings.ToLower(sentence)

		matched := false
		for _, bucket := range Buckets {
			if containsAny(lower, bucketKeywords[bucket]) {
				result[bucket] = append(result[bucket], sentence)
				matched = true
				break
			}
		}

		if !matched && len(sentence) > generalMinLen {
			result[General] = append(result[General], sentence)
		}
	}

	for bucket, list := range result {
		if len(list) > bucketCap {
			result[bucket] = list[:bucketCap]
		}
	}

	return result
}

// Extract splits raw text on terminal punctuation and categorizes the
// resulting sentences. Used for uploaded documents and scraped pages where
// full linguistic segmentation is unnecessary.
func Extract(text string) map[Bucket][]string {
	return Categorize(nlp.SplitRough(text))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
