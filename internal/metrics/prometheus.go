package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policyqa_question_duration_seconds",
			Help:    "Question processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	QuestionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyqa_question_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	AnswerSourceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyqa_answer_source_total",
			Help: "Answers rendered per evidence source",
		},
		[]string{"source"},
	)

	ClassificationConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policyqa_classification_confidence",
			Help:    "Category classification confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	EvidenceCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policyqa_evidence_count",
			Help:    "Number of evidence sentences per answer",
			Buckets: []float64{0, 1, 2, 5, 8, 10, 20},
		},
	)

	ScrapeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyqa_scrape_total",
			Help: "Web sources scraped per outcome",
		},
		[]string{"status"},
	)

	EmbeddingCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "policyqa_embedding_cache_hits_total",
			Help: "Total embedding cache hits",
		},
	)

	EmbeddingCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "policyqa_embedding_cache_misses_total",
			Help: "Total embedding cache misses",
		},
	)

	TrainingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyqa_training_runs_total",
			Help: "Knowledge-base builder runs per outcome",
		},
		[]string{"status"},
	)

	KnowledgeBaseSentences = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "policyqa_knowledge_base_sentences",
			Help: "Stored sentences per transaction category",
		},
		[]string{"category"},
	)
)

func Init() {
	prometheus.MustRegister(QuestionDuration)
	prometheus.MustRegister(QuestionTotal)
	prometheus.MustRegister(AnswerSourceTotal)
	prometheus.MustRegister(ClassificationConfidence)
	prometheus.MustRegister(EvidenceCount)
	prometheus.MustRegister(ScrapeTotal)
	prometheus.MustRegister(EmbeddingCacheHits)
	prometheus.MustRegister(EmbeddingCacheMisses)
	prometheus.MustRegister(TrainingRuns)
	prometheus.MustRegister(KnowledgeBaseSentences)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
