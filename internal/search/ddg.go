package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const defaultEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo queries the DuckDuckGo HTML endpoint and scrapes result anchors.
// It shares the caller-supplied HTTP client so connections are reused with
// the fetch layer.
type DuckDuckGo struct {
	client    *http.Client
	endpoint  string
	userAgent string
	logger    *zap.Logger
}

// NewDuckDuckGo constructs a DuckDuckGo search provider.
func NewDuckDuckGo(client *http.Client, userAgent string, logger *zap.Logger) *DuckDuckGo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuckDuckGo{
		client:    client,
		endpoint:  defaultEndpoint,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Search runs one query and returns up to maxResults records.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s?q=%s", d.endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	results := make([]Result, 0, maxResults)
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		anchor := sel.Find("a.result__a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return true
		}
		target := resolveRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, Result{
			URL:     target,
			Title:   strings.TrimSpace(anchor.Text()),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < maxResults
	})

	d.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect links. Direct
// links pass through unchanged.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
