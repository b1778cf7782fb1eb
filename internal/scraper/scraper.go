// Package scraper fetches web pages referenced in a question and reduces
// them to policy-relevant plain text. Each URL is processed independently;
// a failed fetch is recorded against its source and never aborts the rest.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/conditions"
	"github.com/policy-agent/backend/internal/metrics"
	"github.com/policy-agent/backend/pkg/logger"
)

type Config struct {
	TimeoutSec  int
	MaxSources  int
	UserAgent   string
	MaxBodySize int
}

type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxSources  int
	maxBodySize int64
}

// SourceResult is the outcome for one URL. Status is "success" or "error";
// failed sources keep their URL and error message so the caller can count
// them without rendering them.
type SourceResult struct {
	URL        string
	Title      string
	Content    string
	Conditions map[conditions.Bucket][]string
	Status     string
	Error      string
}

func (r SourceResult) Succeeded() bool {
	return r.Status == "success"
}

func NewClient(cfg Config) *Client {
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = 15
	}
	if cfg.MaxSources == 0 {
		cfg.MaxSources = 5
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 5 << 20
	}

	return &Client{
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		userAgent:   cfg.UserAgent,
		maxSources:  cfg.MaxSources,
		maxBodySize: int64(cfg.MaxBodySize),
	}
}

var (
	urlRe           = regexp.MustCompile(`https?://(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?::\d+)?(?:/[a-zA-Z0-9-_./?=&%#]*)?`)
	urlNoProtocolRe = regexp.MustCompile(`(?:www\.)[a-zA-Z0-9-]+\.[a-zA-Z]{2,}(?::\d+)?(?:/[a-zA-Z0-9-_./?=&%#]*)?`)
	hostRe          = regexp.MustCompile(`^[a-zA-Z0-9-.]+\.[a-zA-Z]{2,}$`)
)

// ExtractURLs finds URLs in free text, adds https:// to bare www hosts, and
// deduplicates by normalized host and path.
func ExtractURLs(text string) []string {
	found := urlRe.FindAllString(text, -1)
	for _, u := range urlNoProtocolRe.FindAllString(text, -1) {
		withScheme := "https://" + u
		duplicate := false
		for _, existing := range found {
			if existing == withScheme {
				duplicate = true
				break
			}
		}
		if !duplicate {
			found = append(found, withScheme)
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range found {
		parsed, err := url.Parse(raw)
		if err != nil || !validHost(parsed) {
			continue
		}
		key := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.") + parsed.Path
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, raw)
	}
	return out
}

func validHost(u *url.URL) bool {
	return u.Host != "" && len(u.Host) > 3 && hostRe.MatchString(u.Hostname())
}

// Process scrapes every URL found in the question concurrently and
// extracts condition buckets from each successful page. Results keep the
// URL order of the question.
func (c *Client) Process(ctx context.Context, question string) []SourceResult {
	urls := ExtractURLs(question)
	if len(urls) == 0 {
		return nil
	}
	if len(urls) > c.maxSources {
		urls = urls[:c.maxSources]
	}

	results := make([]SourceResult, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = c.scrape(ctx, u)
		}(i, u)
	}
	wg.Wait()

	for _, r := range results {
		metrics.ScrapeTotal.WithLabelValues(r.Status).Inc()
	}

	return results
}

func (c *Client) scrape(ctx context.Context, pageURL string) SourceResult {
	logger.Info("Scraping URL", zap.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return errorResult(pageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errorResult(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(pageURL, fmt.Errorf("fetch returned status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return errorResult(pageURL, fmt.Errorf("failed to parse HTML: %w", err))
	}

	content := extractContent(doc)
	if strings.TrimSpace(content) == "" {
		return errorResult(pageURL, fmt.Errorf("no usable content extracted"))
	}

	return SourceResult{
		URL:        pageURL,
		Title:      extractTitle(doc),
		Content:    content,
		Conditions: conditions.Extract(content),
		Status:     "success",
	}
}

func errorResult(pageURL string, err error) SourceResult {
	logger.Warn("Failed to scrape source", zap.String("url", pageURL), zap.Error(err))
	return SourceResult{URL: pageURL, Status: "error", Error: err.Error()}
}

func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "No title found"
	}
	return title
}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	digitRe = regexp.MustCompile(`\d`)
)

// policyIndicators marks a sentence as worth keeping from an otherwise
// noisy page.
var policyIndicators = []string{
	"policy", "terms", "conditions", "requirements", "rules", "guidelines",
	"procedures", "process", "steps", "instructions", "information", "details",
	"important", "note", "attention", "warning", "caution", "restrictions",
	"fee", "cost", "charge", "price", "deadline", "time", "limit",
	"eligible", "not eligible", "require", "need", "must", "should",
	"refund", "reimbursement", "return", "exchange", "payment", "transfer",
	"will", "can", "cannot", "may", "if", "when", "after", "before",
}

func extractContent(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, menu, form").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = spaceRe.ReplaceAllString(text, " ")

	var kept []string
	for _, sentence := range splitSentences(text) {
		if len(sentence) <= 15 {
			continue
		}
		lower := strings.ToLower(sentence)
		switch {
		case containsAny(lower, policyIndicators):
			kept = append(kept, sentence)
		case digitRe.MatchString(sentence):
			kept = append(kept, sentence)
		case len(sentence) > 30:
			kept = append(kept, sentence)
		}
		if len(kept) >= 50 {
			break
		}
	}

	return strings.Join(kept, ". ")
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
