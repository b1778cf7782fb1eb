// Package query runs a question through classification, focus extraction,
// evidence ranking, and answer rendering. The evidence source is chosen in
// a fixed order: an uploaded document wins, then scraped web sources, then
// the stored knowledge base.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/answer"
	"github.com/policy-agent/backend/internal/classify"
	"github.com/policy-agent/backend/internal/conditions"
	"github.com/policy-agent/backend/internal/extract"
	"github.com/policy-agent/backend/internal/metrics"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/rank"
	"github.com/policy-agent/backend/internal/scraper"
	"github.com/policy-agent/backend/internal/storage/models"
	"github.com/policy-agent/backend/internal/taxonomy"
	"github.com/policy-agent/backend/pkg/logger"
)

var (
	// ErrNoInput means the request carried neither a question nor a file.
	ErrNoInput = errors.New("please provide a question or upload a file")
	// ErrNoCategory means no transaction category could be detected.
	ErrNoCategory = errors.New("could not identify a transaction type")
	// ErrExtractFailed means the uploaded document yielded no usable text.
	ErrExtractFailed = errors.New("failed to extract document content")
)

// Store is the slice of the storage layer the engine needs.
type Store interface {
	Conditions(ctx context.Context, category string) ([]models.PolicyCondition, error)
	InsertQueryRecord(ctx context.Context, rec models.QueryRecord) error
}

type Config struct {
	DBLimit     int
	UploadLimit int
}

// Request is one chat turn. File is optional; when present its text
// becomes the evidence source regardless of any URLs in the question.
type Request struct {
	Question string
	Category string
	File     io.Reader
	Filename string
}

// Response carries the rendered answer plus the metadata the API exposes.
type Response struct {
	QueryID       string   `json:"query_id"`
	Answer        string   `json:"answer"`
	Category      string   `json:"transaction_type"`
	Confidence    float64  `json:"confidence"`
	Intent        string   `json:"intent"`
	Source        string   `json:"source"`
	SentenceCount int      `json:"sentences_count"`
	URLsProcessed int      `json:"urls_processed,omitempty"`
	Focus         []string `json:"question_focus,omitempty"`
}

type Engine struct {
	nlp        *nlp.Service
	classifier *classify.Classifier
	ranker     *rank.Ranker
	scraper    *scraper.Client
	extractor  extract.Extractor
	store      Store
	cfg        Config
}

func NewEngine(
	nlpSvc *nlp.Service,
	classifier *classify.Classifier,
	ranker *rank.Ranker,
	scraperClient *scraper.Client,
	extractor extract.Extractor,
	store Store,
	cfg Config,
) *Engine {
	if cfg.DBLimit == 0 {
		cfg.DBLimit = 5
	}
	if cfg.UploadLimit == 0 {
		cfg.UploadLimit = 8
	}
	return &Engine{
		nlp:        nlpSvc,
		classifier: classifier,
		ranker:     ranker,
		scraper:    scraperClient,
		extractor:  extractor,
		store:      store,
		cfg:        cfg,
	}
}

// Answer processes one chat request end to end.
func (e *Engine) Answer(ctx context.Context, req Request) (*Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" && req.File == nil {
		metrics.QuestionTotal.WithLabelValues("rejected").Inc()
		return nil, ErrNoInput
	}

	question = e.nlp.CleanText(question)

	category, confidence, focus := e.analyze(ctx, question)

	if override, ok := taxonomy.Parse(req.Category); ok {
		category, confidence = override, 1.0
	} else if confidence == 0 {
		if req.File != nil {
			// Uploaded documents default to refunds when the question
			// gives no signal.
			category, confidence = taxonomy.Refunds, 1.0
		} else {
			metrics.QuestionTotal.WithLabelValues("rejected").Inc()
			return nil, ErrNoCategory
		}
	}
	metrics.ClassificationConfidence.Observe(confidence)

	resp := &Response{
		QueryID:    uuid.New().String(),
		Category:   category.String(),
		Confidence: confidence,
		Intent:     e.nlp.Intent(question),
		Focus:      capFocus(focus, 5),
	}

	start := time.Now()
	var err error
	switch {
	case req.File != nil:
		err = e.answerFromFile(ctx, req, question, category, focus, resp)
	default:
		var sources []scraper.SourceResult
		if question != "" {
			sources = e.scraper.Process(ctx, question)
		}
		if anySucceeded(sources) {
			e.answerFromWeb(category, sources, resp)
		} else {
			resp.URLsProcessed = len(sources)
			err = e.answerFromStore(ctx, question, category, focus, resp)
		}
	}
	if err != nil {
		metrics.QuestionTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.QuestionTotal.WithLabelValues("success").Inc()
	metrics.AnswerSourceTotal.WithLabelValues(resp.Source).Inc()
	metrics.QuestionDuration.WithLabelValues(resp.Source).Observe(time.Since(start).Seconds())
	metrics.EvidenceCount.Observe(float64(resp.SentenceCount))

	e.recordHistory(ctx, question, resp)
	return resp, nil
}

// analyze runs category detection and focus extraction concurrently. A
// blank question yields no category and an empty focus set.
func (e *Engine) analyze(ctx context.Context, question string) (taxonomy.Category, float64, []string) {
	if question == "" {
		return 0, 0, nil
	}

	var (
		wg         sync.WaitGroup
		category   taxonomy.Category
		confidence float64
		detected   bool
		focus      []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		category, confidence, detected = e.classifier.Detect(ctx, question)
	}()
	go func() {
		defer wg.Done()
		focus = e.nlp.Focus(question)
	}()
	wg.Wait()

	if !detected {
		return 0, 0, focus
	}
	return category, confidence, focus
}

func (e *Engine) answerFromFile(ctx context.Context, req Request, question string, category taxonomy.Category, focus []string, resp *Response) error {
	text, err := e.extractor.Extract(req.File, req.Filename)
	if err != nil {
		return fmt.Errorf("%w from %s: %s", ErrExtractFailed, req.Filename, err)
	}

	var ranked []rank.Item
	if question != "" {
		sentences := e.nlp.Sentences(text)
		ranked, err = e.ranker.Rank(ctx, sentences, focus, rank.SourceFileUpload, e.cfg.UploadLimit)
		if err != nil {
			return fmt.Errorf("failed to rank document sentences: %w", err)
		}
	}

	buckets := conditions.Extract(text)
	if len(focus) > 0 {
		for bucket, items := range buckets {
			buckets[bucket] = e.ranker.Filter(ctx, items, focus)
		}
	}

	resp.Answer = answer.RenderFile(category, buckets, ranked)
	resp.Source = string(rank.SourceFileUpload)
	resp.SentenceCount = len(ranked)
	return nil
}

func (e *Engine) answerFromWeb(category taxonomy.Category, sources []scraper.SourceResult, resp *Response) {
	count := 0
	seen := make(map[string]struct{})
	for _, src := range sources {
		if !src.Succeeded() {
			continue
		}
		for _, s := range nlp.SplitRough(src.Content) {
			if len(s) <= 20 {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if count < 10 {
				count++
			}
		}
	}

	resp.Answer = answer.RenderWeb(category, sources)
	resp.Source = string(rank.SourceWebScraping)
	resp.SentenceCount = count
	resp.URLsProcessed = len(sources)
}

func (e *Engine) answerFromStore(ctx context.Context, question string, category taxonomy.Category, focus []string, resp *Response) error {
	stored, err := e.store.Conditions(ctx, category.String())
	if err != nil {
		// A knowledge base read failure degrades to an empty result so the
		// caller still gets the not-found answer.
		logger.Error("Failed to load knowledge base", zap.String("category", category.String()), zap.Error(err))
		stored = nil
	}

	sentences := make([]string, 0, len(stored))
	for _, pc := range stored {
		sentences = append(sentences, pc.Condition)
	}

	ranked, err := e.ranker.Rank(ctx, sentences, focus, rank.SourceDatabase, e.cfg.DBLimit)
	if err != nil {
		return fmt.Errorf("failed to rank knowledge base sentences: %w", err)
	}

	resp.Answer = answer.RenderKnowledgeBase(question, category, ranked)
	resp.Source = string(rank.SourceDatabase)
	resp.SentenceCount = len(ranked)
	return nil
}

func (e *Engine) recordHistory(ctx context.Context, question string, resp *Response) {
	if e.store == nil || question == "" {
		return
	}
	rec := models.QueryRecord{
		ID:         resp.QueryID,
		Question:   question,
		Category:   resp.Category,
		Confidence: resp.Confidence,
		Source:     resp.Source,
	}
	if err := e.store.InsertQueryRecord(ctx, rec); err != nil {
		logger.Warn("Failed to record query history", zap.Error(err))
	}
}

func anySucceeded(sources []scraper.SourceResult) bool {
	for _, src := range sources {
		if src.Succeeded() {
			return true
		}
	}
	return false
}

func capFocus(focus []string, n int) []string {
	if len(focus) > n {
		return focus[:n]
	}
	return focus
}
