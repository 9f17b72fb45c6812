package pipeline

import "github.com/kitscout/kitscout/internal/search"

// Collector accumulates candidate URLs, deduplicating by fingerprint and
// capping the total. It is mutated only by the controller goroutine.
type Collector struct {
	max  int
	seen map[string]struct{}
	urls []string
}

// NewCollector creates a Collector that accepts at most max candidates.
func NewCollector(max int) *Collector {
	return &Collector{
		max:  max,
		seen: make(map[string]struct{}),
	}
}

// Add records each URL not seen before, stopping mid-batch once the cap is
// reached. It returns true while the collector can accept more input.
func (c *Collector) Add(urls []string) bool {
	for _, u := range urls {
		if c.Full() {
			return false
		}
		key := Fingerprint(u)
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.urls = append(c.urls, u)
	}
	return !c.Full()
}

// Full reports whether the cap has been reached.
func (c *Collector) Full() bool {
	return len(c.urls) >= c.max
}

// Len returns the number of accepted candidates.
func (c *Collector) Len() int {
	return len(c.urls)
}

// URLs returns the accepted candidates in discovery order.
func (c *Collector) URLs() []string {
	return append([]string(nil), c.urls...)
}

// FilterURLs reduces search results to URLs that carry an http(s) scheme and
// whose vendor passes the allow-set.
func FilterURLs(results []search.Result, allow *DomainSet) []string {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if !AcceptableURL(r.URL) {
			continue
		}
		if !allow.Allows(VendorOf(r.URL)) {
			continue
		}
		urls = append(urls, r.URL)
	}
	return urls
}
