// Package validation screens chat requests before they reach the engine.
package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/pkg/logger"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=)`)

type Config struct {
	MaxQuestionLength int
	AllowedExtensions []string
}

// ChatRequest validates the multipart chat form: question length, markup
// injection, and uploaded file extension. Presence checks stay with the
// handler, which owns the user-facing error wording.
func ChatRequest(cfg Config) fiber.Handler {
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 5000
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".txt", ".md", ".html", ".htm"}
	}

	return func(c *fiber.Ctx) error {
		question := c.FormValue("question")

		if len(question) > cfg.MaxQuestionLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question exceeds maximum length",
			})
		}

		if scriptPattern.MatchString(question) {
			logger.Warn("Rejected question with markup injection",
				zap.String("ip", c.IP()))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid question content",
			})
		}

		if fh, err := c.FormFile("file"); err == nil && fh != nil {
			ext := strings.ToLower(filepath.Ext(fh.Filename))
			allowed := false
			for _, e := range cfg.AllowedExtensions {
				if ext == e {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Unsupported file type",
				})
			}
		}

		return c.Next()
	}
}
