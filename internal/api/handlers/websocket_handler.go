package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/query"
	"github.com/policy-agent/backend/pkg/logger"
)

type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

// HandleConnection serves one chat connection. Each incoming message is a
// question; the rendered answer streams back word by word, followed by a
// completion frame with the answer metadata.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")
	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string `json:"type"`
			Question string `json:"question"`
			Category string `json:"category"`
		}
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}
		if msg.Type != "question" {
			continue
		}

		if err := h.streamAnswer(c, msg.Question, msg.Category); err != nil {
			h.sendError(c, err)
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question, category string) error {
	h.send(c, "status", "Looking that up...")

	resp, err := h.engine.Answer(context.Background(), query.Request{
		Question: question,
		Category: category,
	})
	if err != nil {
		return err
	}

	for li, line := range strings.Split(resp.Answer, "\n") {
		if li > 0 {
			if err := h.send(c, "chunk", "\n"); err != nil {
				return err
			}
		}
		words := strings.Fields(line)
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			if err := h.send(c, "chunk", chunk); err != nil {
				return err
			}
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":             "complete",
		"query_id":         resp.QueryID,
		"transaction_type": resp.Category,
		"confidence":       resp.Confidence,
		"source":           resp.Source,
		"sentences_count":  resp.SentenceCount,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, err error) {
	msg := "Failed to process question"
	switch {
	case errors.Is(err, query.ErrNoInput):
		msg = "Please provide a question or upload a file."
	case errors.Is(err, query.ErrNoCategory):
		msg = `Could not identify a transaction type. Please include terms like "refunds", "payments", "transfers", or "exchanges".`
	default:
		logger.Error("Failed to answer WebSocket question", zap.Error(err))
	}

	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": msg,
	})
}
