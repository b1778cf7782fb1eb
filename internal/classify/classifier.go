// Package classify scores a question against the transaction taxonomy
// using three signals: keyword coverage, embedding similarity to the
// category label, and key-phrase overlap.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/embedding"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/taxonomy"
	"github.com/policy-agent/backend/pkg/logger"
)

type Config struct {
	KeywordWeight   float64
	SemanticWeight  float64
	PhraseWeight    float64
	AcceptThreshold float64
}

func DefaultConfig() Config {
	return Config{
		KeywordWeight:   0.5,
		SemanticWeight:  0.3,
		PhraseWeight:    0.2,
		AcceptThreshold: 0.2,
	}
}

type Classifier struct {
	nlp      *nlp.Service
	embedder embedding.Embedder
	cfg      Config
}

func New(nlpService *nlp.Service, embedder embedding.Embedder, cfg Config) *Classifier {
	return &Classifier{
		nlp:      nlpService,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Detect classifies the question. The blended score per category is
// keyword*Kw + semantic*Sw + phrase*Pw; the best category is accepted only
// when its score clears the threshold. Ties resolve to the earlier entry
// in the canonical category order.
func (c *Classifier) Detect(ctx context.Context, question string) (taxonomy.Category, float64, bool) {
	lower := strings.ToLower(question)
	keyPhrases := c.nlp.KeyPhrases(question)

	var best taxonomy.Category
	bestScore := 0.0

	for _, cat := range taxonomy.Categories {
		keywords := cat.Keywords()

		score := c.cfg.KeywordWeight*keywordScore(lower, keywords) +
			c.cfg.SemanticWeight*c.semanticScore(ctx, lower, cat) +
			c.cfg.PhraseWeight*phraseScore(keyPhrases, keywords)

		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	if bestScore > c.cfg.AcceptThreshold {
		logger.Debug("Transaction category detected",
			zap.String("category", best.String()),
			zap.Float64("confidence", bestScore),
		)
		return best, bestScore, true
	}

	return 0, 0.0, false
}

// keywordScore is the fraction of the category's keywords present in the
// lower-cased question as substrings.
func keywordScore(lowerQuestion string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lowerQuestion, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func (c *Classifier) semanticScore(ctx context.Context, lowerQuestion string, cat taxonomy.Category) float64 {
	sim, err := embedding.Similarity(ctx, c.embedder, lowerQuestion, cat.String())
	if err != nil {
		logger.Warn("Semantic score unavailable, using keyword signals only",
			zap.String("category", cat.String()),
			zap.Error(err),
		)
		return 0
	}
	return sim
}

// phraseScore is the fraction of extracted key phrases containing any of
// the category's keywords.
func phraseScore(keyPhrases, keywords []string) float64 {
	if len(keyPhrases) == 0 {
		return 0
	}
	matched := 0
	for _, phrase := range keyPhrases {
		for _, kw := range keywords {
			if strings.Contains(phrase, kw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(keyPhrases))
}
