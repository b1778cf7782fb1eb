package nlp

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Focus derives the set of salient terms from a question: content-word
// lemmas (nouns, verbs, adjectives over two characters), interrogatives
// present anywhere in the question, and key phrases. The result is
// deduplicated; order carries no meaning. A degenerate question yields an
// empty set, never an error.
func (s *Service) Focus(question string) []string {
	seen := make(map[string]struct{})
	var focus []string

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		focus = append(focus, term)
	}

	lower := strings.ToLower(question)

	doc, err := prose.NewDocument(lower, prose.WithSegmentation(false), prose.WithExtraction(false))
	if err == nil {
		for _, tok := range doc.Tokens() {
			if !contentTag(tok.Tag) {
				continue
			}
			if isPunct(tok.Text) || isStopword(tok.Text) {
				continue
			}
			if len(tok.Text) <= 2 {
				continue
			}
			add(lemma(tok.Text))
		}
	}

	for _, w := range interrogatives {
		if strings.Contains(lower, w) {
			add(w)
		}
	}

	for _, phrase := range s.KeyPhrases(question) {
		add(phrase)
	}

	return focus
}

func contentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") ||
		strings.HasPrefix(tag, "VB") ||
		strings.HasPrefix(tag, "JJ")
}
