package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kitscout/kitscout/internal/fetch"
	"github.com/kitscout/kitscout/internal/metrics"
	"github.com/kitscout/kitscout/internal/search"
)

// broadResultCap limits the result count requested per broad seed query; the
// configured seed size applies in full only to discovery queries.
const broadResultCap = 25

// Fetcher retrieves a single page. The second return value is false when the
// page could not be fetched or yielded no usable content.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, bool)
}

// Options configures a matching run.
type Options struct {
	Analytes        []string
	Species         string
	SampleTerms     []string
	Aliases         map[string][]string
	Domains         []string
	DiscoverDomains bool
	SeedResults     int
	SiteResults     int
	MaxFetch        int
	Workers         int
	Gates           Gates
	EarlyStop       bool
}

// Controller drives a full run: domain resolution, candidate collection, the
// bounded fetch/classify pool, and vendor aggregation. One Controller serves
// one run.
type Controller struct {
	opts       Options
	searcher   search.Provider
	fetcher    Fetcher
	classifier *Classifier
	budget     *Budget
	logger     *zap.Logger

	// OnResult, when set, is invoked from the controller goroutine after each
	// task completes, with the number of finished tasks and the task total.
	OnResult func(done, total int)
}

// NewController validates the options and compiles the classifier.
func NewController(
	opts Options,
	searcher search.Provider,
	fetcher Fetcher,
	budget *Budget,
	logger *zap.Logger,
) (*Controller, error) {
	classifier, err := NewClassifier(opts.Analytes, opts.Aliases, opts.Species, opts.SampleTerms, opts.Gates)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return &Controller{
		opts:       opts,
		searcher:   searcher,
		fetcher:    fetcher,
		classifier: classifier,
		budget:     budget,
		logger:     logger,
	}, nil
}

// Run executes the pipeline and returns the vendors covering every requested
// analyte. An empty matrix means no vendor qualified; that is a normal
// outcome, not an error. The error return is reserved for context
// cancellation.
func (c *Controller) Run(ctx context.Context) (VendorMatrix, error) {
	start := time.Now()
	allow := c.resolveDomains(ctx)

	candidates := c.collectCandidates(ctx, allow)
	c.logger.Info("candidate collection finished",
		zap.Int("candidates", len(candidates)),
		zap.Duration("remaining_budget", c.budget.Remaining()),
	)
	metrics.CandidatesCollected(len(candidates))
	if len(candidates) == 0 {
		return VendorMatrix{}, nil
	}

	hits, err := c.runPool(ctx, candidates)
	if err != nil {
		return nil, err
	}

	matrix := Ingest(hits, c.opts.Analytes).Complete(c.opts.Analytes)
	metrics.VendorsMatched(len(matrix))
	metrics.RunFinished(time.Since(start))
	c.logger.Info("run finished",
		zap.Int("hits", len(hits)),
		zap.Int("matched_vendors", len(matrix)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return matrix, nil
}

func (c *Controller) resolveDomains(ctx context.Context) *DomainSet {
	if c.opts.DiscoverDomains {
		return DiscoverDomains(ctx, c.searcher, c.opts.Analytes, c.opts.Species,
			c.opts.SeedResults, c.budget, c.logger)
	}
	return NewDomainSet(c.opts.Domains)
}

// collectCandidates runs the search rounds: one broad query per analyte, then
// one site-scoped query per (domain, analyte) pair when an allow-set exists.
// Every round is skipped once the budget expires or the candidate cap fills.
func (c *Controller) collectCandidates(ctx context.Context, allow *DomainSet) []string {
	collector := NewCollector(c.opts.MaxFetch)

	seed := c.opts.SeedResults
	if seed > broadResultCap {
		seed = broadResultCap
	}
	for _, analyte := range c.opts.Analytes {
		query := fmt.Sprintf("%s %s ELISA kit", c.opts.Species, analyte)
		if !c.searchRound(ctx, collector, allow, query, seed) {
			return collector.URLs()
		}
	}

	if allow != nil {
		for _, domain := range allow.Domains() {
			for _, analyte := range c.opts.Analytes {
				query := fmt.Sprintf("site:%s %s ELISA kit %s", domain, analyte, c.opts.Species)
				if !c.searchRound(ctx, collector, allow, query, c.opts.SiteResults) {
					return collector.URLs()
				}
			}
		}
	}
	return collector.URLs()
}

// searchRound issues one query and feeds its usable results to the collector.
// It returns false when collection should stop: budget gone, cap reached, or
// context cancelled. Individual search failures are absorbed.
func (c *Controller) searchRound(
	ctx context.Context,
	collector *Collector,
	allow *DomainSet,
	query string,
	maxResults int,
) bool {
	if ctx.Err() != nil || c.budget.Expired() || collector.Full() {
		return false
	}
	metrics.SearchQueryIssued()
	results, err := c.searcher.Search(ctx, query, maxResults)
	if err != nil {
		c.logger.Warn("search query failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return true
	}
	c.logger.Debug("search query finished",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return collector.Add(FilterURLs(results, allow))
}

// runPool fans the candidates out over a bounded worker pool and drains
// results until all tasks report, the budget expires, or early-stop fires.
// The results channel is buffered to the task count so worker sends never
// block; tasks still in flight after Run returns finish on their own and are
// discarded.
func (c *Controller) runPool(ctx context.Context, candidates []string) ([]PageHit, error) {
	total := len(candidates)
	jobs := make(chan string, total)
	results := make(chan taskResult, total)

	workers := c.opts.Workers
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				results <- c.runTask(ctx, u)
			}
		}()
	}
	for _, u := range candidates {
		jobs <- u
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	deadline := time.NewTimer(c.budget.Remaining())
	defer deadline.Stop()

	var hits []PageHit
	done := 0
	for done < total {
		select {
		case res := <-results:
			done++
			if res.ok {
				hits = append(hits, res.hit)
				metrics.HitRecorded(res.hit.Analyte)
				if c.opts.EarlyStop {
					if complete := Ingest(hits, c.opts.Analytes).Complete(c.opts.Analytes); len(complete) > 0 {
						c.logger.Info("early stop: complete vendor found",
							zap.Int("tasks_done", done),
							zap.Int("tasks_total", total),
						)
						c.notify(done, total)
						return hits, nil
					}
				}
			}
			c.notify(done, total)
		case <-deadline.C:
			c.logger.Warn("budget expired, abandoning outstanding fetches",
				zap.Int("tasks_done", done),
				zap.Int("tasks_total", total),
			)
			return hits, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return hits, nil
}

type taskResult struct {
	hit PageHit
	ok  bool
}

// runTask fetches and classifies one candidate. Panics from page handling are
// absorbed as misses so one pathological page cannot sink the pool.
func (c *Controller) runTask(ctx context.Context, rawURL string) (res taskResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("task panicked",
				zap.String("url", rawURL),
				zap.Any("panic", r),
			)
			res = taskResult{}
		}
	}()

	if c.budget.Expired() || ctx.Err() != nil {
		metrics.PageFetched("skipped")
		return taskResult{}
	}
	page, ok := c.fetcher.Fetch(ctx, rawURL)
	if !ok {
		metrics.PageFetched("failed")
		return taskResult{}
	}
	hit, ok := c.classifier.Classify(page)
	if !ok {
		metrics.PageFetched("unmatched")
		return taskResult{}
	}
	metrics.PageFetched("matched")
	return taskResult{hit: hit, ok: true}
}

func (c *Controller) notify(done, total int) {
	if c.OnResult != nil {
		c.OnResult(done, total)
	}
}
