package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/query"
	"github.com/policy-agent/backend/internal/storage/models"
	"github.com/policy-agent/backend/pkg/logger"
)

// HistoryStore serves the history endpoint.
type HistoryStore interface {
	QueryHistory(ctx context.Context, limit int) ([]models.QueryRecord, error)
}

type ChatHandler struct {
	engine  *query.Engine
	history HistoryStore
}

func NewChatHandler(engine *query.Engine, history HistoryStore) *ChatHandler {
	return &ChatHandler{
		engine:  engine,
		history: history,
	}
}

// HandleChat accepts a multipart form with a "question" field and an
// optional "file" upload and "category" override.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	req := query.Request{
		Question: c.FormValue("question"),
		Category: c.FormValue("category"),
	}

	fh, err := c.FormFile("file")
	if err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			logger.Error("Failed to open uploaded file", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"answer": fmt.Sprintf("Failed to extract content from %s.", fh.Filename),
			})
		}
		defer f.Close()
		req.File = f
		req.Filename = fh.Filename
	}

	resp, err := h.engine.Answer(c.Context(), req)
	if err != nil {
		return h.chatError(c, req, err)
	}

	return c.JSON(resp)
}

func (h *ChatHandler) chatError(c *fiber.Ctx, req query.Request, err error) error {
	switch {
	case errors.Is(err, query.ErrNoInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"answer": "Please provide a question or upload a file.",
		})
	case errors.Is(err, query.ErrNoCategory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"answer": `Could not identify a transaction type. Please include terms like "refunds", "payments", "transfers", or "exchanges".`,
		})
	case errors.Is(err, query.ErrExtractFailed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"answer": fmt.Sprintf("Failed to extract content from %s.", req.Filename),
		})
	default:
		logger.Error("Failed to answer question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process question",
		})
	}
}

// GetHistory returns the most recent answered questions.
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := h.history.QueryHistory(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to load query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	if records == nil {
		records = []models.QueryRecord{}
	}
	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}
