package nlp

import (
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// boilerplateRe matches section headings and table headers that carry no
// policy content of their own.
var boilerplateRe = regexp.MustCompile(`(?i)^(Summary|Condition Type|Details|Explanation|Requirements?|Procedures?|Restrictions?|Timeframes?|Fees|Section|Contact)\b`)

// IsBoilerplateHeader reports whether the sentence is a known heading
// rather than an evidence sentence.
func IsBoilerplateHeader(s string) bool {
	return boilerplateRe.MatchString(strings.TrimSpace(s))
}

// Sentences splits raw text into candidate evidence sentences, preserving
// source order. Empty units, boilerplate headings and fragments under four
// words are discarded.
func (s *Service) Sentences(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	var sentences []string
	for _, sent := range doc.Sentences() {
		t := strings.TrimSpace(sent.Text)
		if t == "" {
			continue
		}
		if boilerplateRe.MatchString(t) {
			continue
		}
		if len(strings.Fields(t)) < 4 {
			continue
		}
		sentences = append(sentences, t)
	}
	return sentences
}

var roughSplitRe = regexp.MustCompile(`[.!?]+`)

// SplitRough splits on terminal punctuation without linguistic analysis.
// Used where speed matters more than boundary quality (scraped pages,
// condition extraction over large texts).
func SplitRough(text string) []string {
	parts := roughSplitRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
