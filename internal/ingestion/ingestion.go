// Package ingestion builds the policy knowledge base from training
// documents. Each run replaces the stored sentences for every category it
// finds a document for, so re-running over the same folder is a no-op.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/extract"
	"github.com/policy-agent/backend/internal/metrics"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/taxonomy"
	"github.com/policy-agent/backend/pkg/logger"
)

// FileSource yields the training documents for one run.
type FileSource interface {
	Files(ctx context.Context) ([]File, error)
}

// File is one training document. Open may be called once per run.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ConditionStore is the slice of the storage layer the builder needs.
type ConditionStore interface {
	ReplaceConditions(ctx context.Context, category string, conds []string, sourceFile string) error
}

// LocalSource reads *.txt, *.md and *.html files from a folder on disk.
type LocalSource struct {
	Folder string
}

func (s LocalSource) Files(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(s.Folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read training folder: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !supportedFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.Folder, entry.Name())
		files = append(files, File{
			Name: entry.Name(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}

// Report summarizes one build run.
type Report struct {
	FilesProcessed int            `json:"files_processed"`
	FilesSkipped   int            `json:"files_skipped"`
	Sentences      map[string]int `json:"sentences"`
}

// Builder turns training documents into per-category condition sets.
type Builder struct {
	source    FileSource
	extractor extract.Extractor
	nlp       *nlp.Service
	store     ConditionStore
}

func NewBuilder(source FileSource, extractor extract.Extractor, nlpSvc *nlp.Service, store ConditionStore) *Builder {
	return &Builder{source: source, extractor: extractor, nlp: nlpSvc, store: store}
}

// Run processes every training document. The category comes from the file
// name; documents whose name matches no category are skipped with a
// warning. Sentences are deduplicated per category before storage.
func (b *Builder) Run(ctx context.Context) (Report, error) {
	files, err := b.source.Files(ctx)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return Report{}, err
	}

	report := Report{Sentences: make(map[string]int)}
	perCategory := make(map[taxonomy.Category][]string)
	sources := make(map[taxonomy.Category]string)

	for _, f := range files {
		cat, ok := CategoryFromFilename(f.Name)
		if !ok {
			logger.Warn("Skipping training file with unknown category", zap.String("file", f.Name))
			report.FilesSkipped++
			continue
		}

		sentences, err := b.fileSentences(f)
		if err != nil {
			logger.Warn("Skipping unreadable training file", zap.String("file", f.Name), zap.Error(err))
			report.FilesSkipped++
			continue
		}

		perCategory[cat] = append(perCategory[cat], sentences...)
		sources[cat] = f.Name
		report.FilesProcessed++
	}

	for cat, sentences := range perCategory {
		deduped := dedupe(sentences)
		if err := b.store.ReplaceConditions(ctx, cat.String(), deduped, sources[cat]); err != nil {
			metrics.TrainingRuns.WithLabelValues("error").Inc()
			return report, fmt.Errorf("failed to store conditions for %s: %w", cat, err)
		}
		report.Sentences[cat.String()] = len(deduped)
		metrics.KnowledgeBaseSentences.WithLabelValues(cat.String()).Set(float64(len(deduped)))
	}

	metrics.TrainingRuns.WithLabelValues("success").Inc()
	logger.Info("Knowledge base build complete",
		zap.Int("files", report.FilesProcessed),
		zap.Int("skipped", report.FilesSkipped))
	return report, nil
}

func (b *Builder) fileSentences(f File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	text, err := b.extractor.Extract(rc, f.Name)
	if err != nil {
		return nil, err
	}
	return b.nlp.Sentences(text), nil
}

// CategoryFromFilename resolves a training document to its category. A
// category name appearing anywhere in the name wins; otherwise the prefix
// before "_v" is tried, so "refunds_v2.txt" and "policy_refunds.txt" both
// map to refunds.
func CategoryFromFilename(name string) (taxonomy.Category, bool) {
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))

	for _, cat := range taxonomy.Categories {
		if strings.Contains(base, cat.String()) {
			return cat, true
		}
	}

	if idx := strings.Index(base, "_v"); idx > 0 {
		if cat, ok := taxonomy.Parse(base[:idx]); ok {
			return cat, true
		}
	}
	return 0, false
}

func dedupe(sentences []string) []string {
	seen := make(map[string]struct{}, len(sentences))
	var out []string
	for _, s := range sentences {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Scheduler re-runs the builder on a fixed interval until the context is
// canceled. An interval of zero disables it.
type Scheduler struct {
	builder  *Builder
	interval time.Duration
}

func NewScheduler(builder *Builder, interval time.Duration) *Scheduler {
	return &Scheduler{builder: builder, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.builder.Run(ctx); err != nil {
					logger.Error("Scheduled knowledge base build failed", zap.Error(err))
				}
			}
		}
	}()
}
