package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/ingestion"
	"github.com/policy-agent/backend/pkg/logger"
)

// CountStore reports the stored knowledge-base size per category.
type CountStore interface {
	ConditionCounts(ctx context.Context) (map[string]int, error)
}

type TrainHandler struct {
	builder *ingestion.Builder
	counts  CountStore
}

func NewTrainHandler(builder *ingestion.Builder, counts CountStore) *TrainHandler {
	return &TrainHandler{
		builder: builder,
		counts:  counts,
	}
}

// HandleTrain rebuilds the knowledge base from the training folder.
func (h *TrainHandler) HandleTrain(c *fiber.Ctx) error {
	report, err := h.builder.Run(c.Context())
	if err != nil {
		logger.Error("Knowledge base build failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Training failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Training completed and conditions saved.",
		"report":  report,
	})
}

// GetKnowledgeBase returns how many sentences each category holds.
func (h *TrainHandler) GetKnowledgeBase(c *fiber.Ctx) error {
	counts, err := h.counts.ConditionCounts(c.Context())
	if err != nil {
		logger.Error("Failed to count stored conditions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load knowledge base status",
		})
	}

	return c.JSON(fiber.Map{
		"categories": counts,
	})
}
