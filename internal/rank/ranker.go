// Package rank scores candidate evidence sentences against a question's
// focus terms and keeps the best of them.
package rank

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/embedding"
	"github.com/policy-agent/backend/internal/rank/tfidf"
	"github.com/policy-agent/backend/pkg/logger"
)

// Source identifies where an evidence sentence came from.
type Source string

const (
	SourceFileUpload  Source = "file_upload"
	SourceWebScraping Source = "web_scraping"
	SourceDatabase    Source = "database"
)

// Item is one scored evidence sentence. Items are never mutated after
// creation; re-scoring produces new items. Scores are relative to a single
// question and are not comparable across questions.
type Item struct {
	Sentence string
	Source   Source
	Score    float64
}

type Config struct {
	Threshold     float64
	LexicalWeight float64
}

func DefaultConfig() Config {
	return Config{Threshold: 0.25}
}

type Ranker struct {
	embedder embedding.Embedder
	cfg      Config
}

func New(embedder embedding.Embedder, cfg Config) *Ranker {
	return &Ranker{embedder: embedder, cfg: cfg}
}

// Rank scores every sentence against the joined focus terms, keeps those
// above the threshold, and returns them in descending score order capped
// at limit. The sort is stable, so equal scores keep source order. The
// embedding cosine is the score; when LexicalWeight is nonzero a TF-IDF
// signal is blended in at that weight.
func (r *Ranker) Rank(ctx context.Context, sentences []string, focus []string, source Source, limit int) ([]Item, error) {
	if len(sentences) == 0 || len(focus) == 0 {
		return nil, nil
	}

	query := strings.Join(focus, " ")
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(sentences))
	for _, sentence := range sentences {
		score, err := r.score(ctx, queryVec, query, sentence)
		if err != nil {
			logger.Warn("Failed to score sentence, skipping",
				zap.String("sentence", sentence),
				zap.Error(err),
			)
			continue
		}
		if score > r.cfg.Threshold {
			items = append(items, Item{Sentence: sentence, Source: source, Score: score})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// Filter keeps the sentences relevant to the focus terms, preserving their
// order. Used to trim condition buckets before rendering.
func (r *Ranker) Filter(ctx context.Context, sentences []string, focus []string) []string {
	if len(sentences) == 0 || len(focus) == 0 {
		return sentences
	}

	query := strings.Join(focus, " ")
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Relevance filter unavailable, keeping all sentences", zap.Error(err))
		return sentences
	}

	var kept []string
	for _, sentence := range sentences {
		score, err := r.score(ctx, queryVec, query, sentence)
		if err != nil {
			continue
		}
		if score > r.cfg.Threshold {
			kept = append(kept, sentence)
		}
	}
	return kept
}

func (r *Ranker) score(ctx context.Context, queryVec []float32, query, sentence string) (float64, error) {
	sentVec, err := r.embedder.Embed(ctx, sentence)
	if err != nil {
		return 0, err
	}

	semantic := embedding.Cosine(queryVec, sentVec)
	if r.cfg.LexicalWeight <= 0 {
		return semantic, nil
	}

	lexical := tfidf.Similarity(query, sentence)
	return semantic*(1-r.cfg.LexicalWeight) + lexical*r.cfg.LexicalWeight, nil
}
