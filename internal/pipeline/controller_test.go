package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kitscout/kitscout/internal/fetch"
	"github.com/kitscout/kitscout/internal/search"
)

// fakeSearcher serves canned results keyed by query. Unknown queries return
// nothing.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]search.Result
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results[query], nil
}

func (s *fakeSearcher) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

// fakeFetcher serves canned pages keyed by URL. URLs without a page block on
// the release channel (when set) and then report a miss.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]fetch.Page
	release chan struct{}
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (fetch.Page, bool) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	page, ok := f.pages[rawURL]
	f.mu.Unlock()
	if ok {
		return page, true
	}
	if f.release != nil {
		<-f.release
	}
	return fetch.Page{}, false
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) fetched(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.calls {
		if u == rawURL {
			return true
		}
	}
	return false
}

func testOptions() Options {
	return Options{
		Analytes:    []string{"NOX4", "CXCL10"},
		Species:     "mouse",
		SampleTerms: []string{"serum", "plasma"},
		Aliases:     testAliases,
		SeedResults: 30,
		SiteResults: 20,
		MaxFetch:    60,
		Workers:     4,
	}
}

func TestControllerRunEndToEnd(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]search.Result{
		"mouse NOX4 ELISA kit": {
			{URL: "https://vendorkits.com/nox4", Title: "Mouse NOX4 ELISA Kit"},
			{URL: "https://othersite.com/nox4", Title: "Offsite NOX4 page"},
		},
		"site:vendorkits.com CXCL10 ELISA kit mouse": {
			{URL: "https://vendorkits.com/ip10", Title: "Mouse IP-10 ELISA Kit"},
		},
	}}
	fetcher := &fakeFetcher{pages: map[string]fetch.Page{
		"https://vendorkits.com/nox4": {
			FinalURL: "https://vendorkits.com/nox4",
			Title:    "Mouse NOX4 ELISA Kit",
			Text:     "Sandwich ELISA quantifying NOX4 in mouse serum.",
		},
		"https://vendorkits.com/ip10": {
			FinalURL: "https://vendorkits.com/ip10",
			Title:    "Mouse IP-10 ELISA Kit",
			Text:     "Sandwich ELISA detecting IP-10 in plasma from mice.",
		},
	}}

	opts := testOptions()
	opts.Domains = []string{"vendorkits.com"}
	opts.Gates = Gates{RequireSpecies: true, RequireSamples: true, RequireElisa: true}

	budget := NewBudget(&fakeClock{now: time.Now()}, 40*time.Second)
	ctrl, err := NewController(opts, searcher, fetcher, budget, zap.NewNop())
	require.NoError(t, err)

	matrix, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, matrix, 1)
	slots, ok := matrix["vendorkits.com"]
	require.True(t, ok)
	require.Len(t, slots["NOX4"], 1)
	require.Equal(t, "https://vendorkits.com/nox4", slots["NOX4"][0].FinalURL)
	require.Len(t, slots["CXCL10"], 1)
	require.Equal(t, "https://vendorkits.com/ip10", slots["CXCL10"][0].FinalURL)

	// The off-domain result never reaches the fetch pool.
	require.False(t, fetcher.fetched("https://othersite.com/nox4"))
}

func TestControllerEarlyStop(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	searcher := &fakeSearcher{results: map[string][]search.Result{
		"mouse NOX4 ELISA kit": {
			{URL: "https://v.com/nox4"},
			{URL: "https://v.com/ip10"},
			{URL: "https://v.com/extra1"},
			{URL: "https://v.com/extra2"},
		},
	}}
	fetcher := &fakeFetcher{
		release: release,
		pages: map[string]fetch.Page{
			"https://v.com/nox4": {
				FinalURL: "https://v.com/nox4",
				Title:    "NOX4 ELISA Kit",
				Text:     "Mouse NOX4 ELISA for serum.",
			},
			"https://v.com/ip10": {
				FinalURL: "https://v.com/ip10",
				Title:    "IP-10 ELISA Kit",
				Text:     "Mouse CXCL10 ELISA for plasma.",
			},
		},
	}

	opts := testOptions()
	opts.Workers = 1
	opts.EarlyStop = true

	budget := NewBudget(&fakeClock{now: time.Now()}, 40*time.Second)
	ctrl, err := NewController(opts, searcher, fetcher, budget, zap.NewNop())
	require.NoError(t, err)

	matrix, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	// Coverage completed on the second hit; the remaining candidates were
	// never waited for.
	require.Len(t, matrix, 1)
	require.Contains(t, matrix, "v.com")
	require.LessOrEqual(t, fetcher.callCount(), 3)
}

func TestControllerExpiredBudgetSkipsAllWork(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Now()}
	budget := NewBudget(clk, 40*time.Second)
	clk.Advance(41 * time.Second)

	searcher := &fakeSearcher{}
	fetcher := &fakeFetcher{}

	ctrl, err := NewController(testOptions(), searcher, fetcher, budget, zap.NewNop())
	require.NoError(t, err)

	matrix, err := ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, matrix)
	require.Zero(t, searcher.queryCount())
	require.Zero(t, fetcher.callCount())
}

func TestControllerRespectsFetchCap(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]search.Result{
		"mouse NOX4 ELISA kit": {
			{URL: "https://v.com/a"},
			{URL: "https://v.com/b"},
			{URL: "https://v.com/c"},
			{URL: "https://v.com/d"},
		},
	}}
	fetcher := &fakeFetcher{}

	opts := testOptions()
	opts.MaxFetch = 2

	budget := NewBudget(&fakeClock{now: time.Now()}, 40*time.Second)
	ctrl, err := NewController(opts, searcher, fetcher, budget, zap.NewNop())
	require.NoError(t, err)

	_, err = ctrl.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.callCount())
}

func TestControllerReportsProgress(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]search.Result{
		"mouse NOX4 ELISA kit": {
			{URL: "https://v.com/a"},
			{URL: "https://v.com/b"},
		},
	}}
	fetcher := &fakeFetcher{}

	budget := NewBudget(&fakeClock{now: time.Now()}, 40*time.Second)
	ctrl, err := NewController(testOptions(), searcher, fetcher, budget, zap.NewNop())
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []int
	ctrl.OnResult = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, 2, total)
		seen = append(seen, done)
	}

	_, err = ctrl.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2}, seen)
}
