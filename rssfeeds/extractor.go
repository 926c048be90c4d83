package rssfeeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsradar/config"

	readability "github.com/go-shiori/go-readability"
)

const extractorTimeout = 30 * time.Second

// ErrNoFullText is returned when a page yields no readable text
var ErrNoFullText = errors.New("no readable text extracted")

// ReadabilityExtractor downloads an article page and extracts its main text
type ReadabilityExtractor struct {
	client    *http.Client
	userAgent string
}

// NewReadabilityExtractor creates an extractor. A nil client gets a default with a 30s timeout.
func NewReadabilityExtractor(client *http.Client) *ReadabilityExtractor {
	if client == nil {
		client = &http.Client{Timeout: extractorTimeout}
	}
	return &ReadabilityExtractor{client: client, userAgent: config.DefaultUserAgent}
}

// FullText fetches link and returns the readable plain text of the page
func (e *ReadabilityExtractor) FullText(ctx context.Context, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", fmt.Errorf("article URL is empty")
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", pageURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	extracted, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}

	text := collapseWhitespace(extracted.TextContent)
	if text == "" {
		return "", ErrNoFullText
	}
	return text, nil
}
