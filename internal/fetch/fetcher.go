// Package fetch retrieves single pages and reduces them to plain text.
//
// Failures never propagate: a page that cannot be fetched or parsed is simply
// reported as a miss, which downstream code treats as "no hit".
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Page is the text rendering of one successfully fetched URL.
type Page struct {
	URL      string
	FinalURL string
	Title    string
	Text     string
}

// Config controls the shared fetch client.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	Concurrency    int
	// Transport overrides the tuned default transport; used by tests.
	Transport http.RoundTripper
}

// Fetcher issues one GET per URL through a cloned colly collector backed by a
// single shared transport, so connections are reused across all calls.
type Fetcher struct {
	base   *colly.Collector
	client *http.Client
	logger *zap.Logger
}

// NewFetcher constructs a configured colly-based Fetcher.
func NewFetcher(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          128,
			MaxIdleConnsPerHost:   32,
			MaxConnsPerHost:       maxInt(2, cfg.Concurrency*2),
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			ForceAttemptHTTP2:     true,
		}
	}

	base := colly.NewCollector(
		colly.Async(false),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(transport)
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &Fetcher{
		base:   base,
		client: &http.Client{Transport: transport},
		logger: logger,
	}, nil
}

// Client exposes the shared HTTP client so the search backend can reuse the
// same connection pool.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves a page and extracts its text. The boolean is false for any
// network error, non-2xx status, or unparseable body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, bool) {
	collector := f.base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		title, text, err := ExtractText(r.Body)
		if err != nil {
			send(fetchResult{err: err})
			return
		}
		send(fetchResult{page: Page{
			URL:      rawURL,
			FinalURL: r.Request.URL.String(),
			Title:    title,
			Text:     text,
		}})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		f.logger.Debug("fetch rejected", zap.String("url", rawURL), zap.Error(err))
		return Page{}, false
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if ctx.Err() != nil {
			return Page{}, false
		}
		if res.err != nil {
			f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(res.err))
			return Page{}, false
		}
		return res.page, true
	default:
		return Page{}, false
	}
}

type fetchResult struct {
	page Page
	err  error
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
