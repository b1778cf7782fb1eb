// Package ratelimit provides a per-client fixed-window request limiter.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/pkg/logger"
)

type window struct {
	count int
	start time.Time
}

type Limiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxRequests int
	duration    time.Duration
	stop        chan struct{}
}

type Config struct {
	MaxRequestsPerWindow int
	WindowDuration       time.Duration
}

func New(cfg Config) *Limiter {
	if cfg.MaxRequestsPerWindow == 0 {
		cfg.MaxRequestsPerWindow = 60
	}
	if cfg.WindowDuration == 0 {
		cfg.WindowDuration = time.Minute
	}

	l := &Limiter{
		windows:     make(map[string]*window),
		maxRequests: cfg.MaxRequestsPerWindow,
		duration:    cfg.WindowDuration,
		stop:        make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.allow(c.IP()) {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}
		return c.Next()
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.duration {
		l.windows[key] = &window{count: 1, start: now}
		return true
	}

	if w.count >= l.maxRequests {
		return false
	}
	w.count++
	return true
}

func (l *Limiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.Sub(w.start) > 2*l.duration {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *Limiter) Stop() {
	close(l.stop)
}
