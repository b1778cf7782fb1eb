// Package extract turns uploaded documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoText is returned when a document yields no usable text.
var ErrNoText = errors.New("no text could be extracted from the document")

// Extractor reads a single document and returns its plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// Service dispatches on file extension. Plain text and markdown are read
// directly; HTML is stripped of markup first.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Extract(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".html", ".htm":
		text, err = extractHTML(r)
	case ".txt", ".md", ".text", "":
		text, err = extractPlain(r)
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractPlain(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func extractHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, nav, footer, header").Each(func(i int, sel *goquery.Selection) {
		sel.Remove()
	})
	return doc.Find("body").Text(), nil
}
