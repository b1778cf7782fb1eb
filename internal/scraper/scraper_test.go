package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractURLs(t *testing.T) {
	text := "Check https://example.com/refund-policy and www.shop.example.org/terms for details"

	urls := ExtractURLs(text)

	assert.Equal(t, []string{
		"https://example.com/refund-policy",
		"https://www.shop.example.org/terms",
	}, urls)
}

func TestExtractURLsDeduplicates(t *testing.T) {
	text := "See https://www.example.com/policy and https://example.com/policy"

	urls := ExtractURLs(text)

	assert.Len(t, urls, 1)
}

func TestExtractURLsIgnoresPlainText(t *testing.T) {
	assert.Empty(t, ExtractURLs("how do refunds work with no links at all"))
}

func TestScrapeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Refund Policy</title>
			<script>var tracking = true;</script></head>
			<body><nav>Home | About</nav>
			<p>Refunds must be requested within 30 days of delivery.</p>
			<p>A $10 restocking fee applies to opened items.</p>
			<footer>Copyright</footer></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(Config{})
	result := c.scrape(context.Background(), srv.URL)

	require.True(t, result.Succeeded())
	assert.Equal(t, "Refund Policy", result.Title)
	assert.Contains(t, result.Content, "Refunds must be requested within 30 days")
	assert.NotContains(t, result.Content, "tracking")
	assert.NotContains(t, result.Content, "Home | About")
	assert.NotEmpty(t, result.Conditions)
}

func TestScrapeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{})
	result := c.scrape(context.Background(), srv.URL)

	assert.False(t, result.Succeeded())
	assert.Equal(t, "error", result.Status)
	assert.Contains(t, result.Error, "500")
}

func TestScrapeUnreachable(t *testing.T) {
	c := NewClient(Config{TimeoutSec: 1})
	result := c.scrape(context.Background(), "http://127.0.0.1:1/none")

	assert.False(t, result.Succeeded())
	assert.NotEmpty(t, result.Error)
}

func TestExtractTitleFallbacks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<html><body><h1>Heading Title</h1></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "Heading Title", extractTitle(doc))

	doc, err = goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "No title found", extractTitle(doc))
}
