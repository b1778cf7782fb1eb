package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policy-agent/backend/internal/classify"
	"github.com/policy-agent/backend/internal/extract"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/query"
	"github.com/policy-agent/backend/internal/rank"
	"github.com/policy-agent/backend/internal/scraper"
	"github.com/policy-agent/backend/internal/storage/models"
)

type vocabEmbedder struct {
	vocab []string
}

func (e vocabEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.vocab))
	for i, term := range e.vocab {
		if strings.Contains(lower, term) {
			vec[i] = 1
		}
	}
	return vec, nil
}

type memStore struct {
	conditions map[string][]string
	records    []models.QueryRecord
}

func (s *memStore) Conditions(ctx context.Context, category string) ([]models.PolicyCondition, error) {
	var out []models.PolicyCondition
	for i, c := range s.conditions[category] {
		out = append(out, models.PolicyCondition{ID: int64(i + 1), Category: category, Condition: c})
	}
	return out, nil
}

func (s *memStore) InsertQueryRecord(ctx context.Context, rec models.QueryRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) QueryHistory(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

func newTestApp(store *memStore) *fiber.App {
	embedder := vocabEmbedder{vocab: []string{"refund", "payment", "transfer", "exchange"}}
	nlpService := nlp.NewService()

	engine := query.NewEngine(
		nlpService,
		classify.New(nlpService, embedder, classify.DefaultConfig()),
		rank.New(embedder, rank.DefaultConfig()),
		scraper.NewClient(scraper.Config{}),
		extract.NewService(),
		store,
		query.Config{},
	)

	h := NewChatHandler(engine, store)
	app := fiber.New()
	app.Post("/api/v1/chat", h.HandleChat)
	app.Get("/api/v1/history", h.GetHistory)
	return app
}

func multipartForm(t *testing.T, fields map[string]string, filename, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postChat(t *testing.T, app *fiber.App, fields map[string]string, filename, fileContent string) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, contentType := multipartForm(t, fields, filename, fileContent)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp, parsed
}

func TestHandleChatRequiresInput(t *testing.T) {
	app := newTestApp(&memStore{})

	resp, body := postChat(t, app, map[string]string{"question": ""}, "", "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please provide a question or upload a file.", body["answer"])
}

func TestHandleChatUnknownCategory(t *testing.T) {
	app := newTestApp(&memStore{})

	resp, body := postChat(t, app, map[string]string{"question": "What is the weather like today?"}, "", "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t,
		`Could not identify a transaction type. Please include terms like "refunds", "payments", "transfers", or "exchanges".`,
		body["answer"])
}

func TestHandleChatAnswersFromKnowledgeBase(t *testing.T) {
	store := &memStore{conditions: map[string][]string{
		"refunds": {"Refunds are available within 30 days of purchase."},
	}}
	app := newTestApp(store)

	resp, body := postChat(t, app, map[string]string{"question": "How do I get a refund?"}, "", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "refunds", body["transaction_type"])
	assert.Equal(t, "database", body["source"])
	assert.Contains(t, body["answer"], "Refunds are available within 30 days")
}

func TestHandleChatFileUpload(t *testing.T) {
	app := newTestApp(&memStore{})

	resp, body := postChat(t, app, nil, "policy.txt",
		"You must return items within 30 days of purchase.")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "refunds", body["transaction_type"])
	assert.Equal(t, float64(1), body["confidence"])
	assert.Equal(t, "file_upload", body["source"])
}

func TestHandleChatExtractFailure(t *testing.T) {
	app := newTestApp(&memStore{})

	resp, body := postChat(t, app, map[string]string{"question": "refund please"}, "policy.pdf", "junk")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Failed to extract content from policy.pdf.", body["answer"])
}

func TestGetHistory(t *testing.T) {
	store := &memStore{records: []models.QueryRecord{
		{ID: "q1", Question: "How do I get a refund?", Category: "refunds", Source: "database"},
	}}
	app := newTestApp(store)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=10", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		History []models.QueryRecord `json:"history"`
		Count   int                  `json:"count"`
	}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, 1, body.Count)
	require.Len(t, body.History, 1)
	assert.Equal(t, "q1", body.History[0].ID)
}
