// Package tfidf implements a pairwise TF-IDF cosine similarity, used as an
// optional lexical signal on top of the embedding score.
package tfidf

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Similarity fits a two-document TF-IDF space over a and b (unigrams and
// bigrams, stopwords removed, smoothed IDF, L2-normalized vectors) and
// returns their cosine similarity.
func Similarity(a, b string) float64 {
	tokensA := terms(a)
	tokensB := terms(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	df := make(map[string]int)
	for term := range tokensA {
		df[term]++
	}
	for term := range tokensB {
		df[term]++
	}

	// Smoothed IDF over the two-document corpus.
	idf := make(map[string]float64, len(df))
	for term, n := range df {
		idf[term] = math.Log(3.0/(1.0+float64(n))) + 1.0
	}

	vecA := vector(tokensA, idf)
	vecB := vector(tokensB, idf)

	var dot float64
	for term, w := range vecA {
		dot += w * vecB[term]
	}
	return dot
}

// terms returns term frequencies for unigrams and bigrams of the text.
func terms(text string) map[string]int {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	var tokens []string
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}

	tf := make(map[string]int)
	for i, t := range tokens {
		tf[t]++
		if i+1 < len(tokens) {
			tf[t+" "+tokens[i+1]]++
		}
	}
	return tf
}

func vector(tf map[string]int, idf map[string]float64) map[string]float64 {
	total := 0
	for _, n := range tf {
		total += n
	}
	if total == 0 {
		return nil
	}

	vec := make(map[string]float64, len(tf))
	var norm float64
	for term, n := range tf {
		w := (float64(n) / float64(total)) * idf[term]
		vec[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for term := range vec {
			vec[term] /= norm
		}
	}
	return vec
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "than", "so",
		"such", "into", "about", "between", "through", "during", "before",
		"after", "can", "will", "just", "do", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
