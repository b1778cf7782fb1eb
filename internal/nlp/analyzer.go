// Package nlp wraps the linguistic analysis used across the question
// pipeline: sentence segmentation, part-of-speech driven focus extraction
// and key-phrase detection. A single Service is created at startup and
// shared by reference; it holds no per-request state.
package nlp

import (
	"regexp"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\w\s\.\,\!\?\;\:]`)

	moneyRe = regexp.MustCompile(`(?i)[\$£€¥]\s*\d+(?:\.\d{2})?|\d+(?:\.\d{2})?\s*[\$£€¥]|\d+\s*(?:dollars?|euros?|pounds?|yen)|\d+\s*percent|\d+%`)
	timeRe  = regexp.MustCompile(`(?i)\d+\s*(?:business\s+days?|working\s+days?)|\d+\s*(?:days?|weeks?|months?|years?)|\d+\s*(?:hours?|minutes?)|same\s+day|next\s+day|overnight`)
)

// CleanText collapses whitespace and strips characters outside words and
// basic punctuation.
func (s *Service) CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// KeyPhrases extracts lower-cased noun phrases and salient entities
// (locations, money amounts, dates and durations) from the text.
func (s *Service) KeyPhrases(text string) []string {
	seen := make(map[string]struct{})
	var phrases []string

	add := func(p string) {
		p = strings.ToLower(strings.TrimSpace(p))
		if len(p) <= 2 {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err == nil {
		for _, chunk := range nounChunks(doc.Tokens()) {
			add(chunk)
		}
		for _, ent := range doc.Entities() {
			if ent.Label == "GPE" {
				add(ent.Text)
			}
		}
	}

	for _, m := range moneyRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range timeRe.FindAllString(text, -1) {
		add(m)
	}

	return phrases
}

// nounChunks approximates noun-phrase chunking: maximal runs of adjectives
// and nouns that end in a noun.
func nounChunks(tokens []prose.Token) []string {
	var chunks []string
	var run []prose.Token

	flush := func() {
		// trim trailing non-nouns so the chunk ends in a noun
		end := len(run)
		for end > 0 && !strings.HasPrefix(run[end-1].Tag, "NN") {
			end--
		}
		if end > 0 {
			words := make([]string, end)
			for i := 0; i < end; i++ {
				words[i] = run[i].Text
			}
			chunks = append(chunks, strings.Join(words, " "))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "NN") || strings.HasPrefix(tok.Tag, "JJ") {
			run = append(run, tok)
			continue
		}
		if len(run) > 0 {
			flush()
		}
	}
	if len(run) > 0 {
		flush()
	}

	return chunks
}

// Intent reports the interrogative a question opens with, or "general".
func (s *Service) Intent(question string) string {
	lower := strings.ToLower(strings.TrimSpace(question))
	for _, w := range interrogatives {
		if strings.HasPrefix(lower, w) {
			return w
		}
	}
	return "general"
}

var interrogatives = []string{"what", "how", "when", "where", "why", "which", "who"}

func isPunct(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// lemma applies a light suffix-stripping normalization so that surface
// variants ("refunds", "refunded") collapse to a shared stem.
func lemma(word string) string {
	w := strings.ToLower(word)
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return w[:len(w)-3]
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "do", "does", "did",
		"have", "has", "had", "i", "you", "he", "she", "we", "they", "my",
		"your", "not", "no", "should", "would", "could", "there", "here",
		"all", "any", "some", "more", "most", "other", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

func isStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}
