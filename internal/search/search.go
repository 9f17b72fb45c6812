// Package search defines the discovery-query backend used to find candidate
// vendor pages.
package search

import "context"

// Result is one record returned by a search backend. Only URL is required by
// the pipeline; the other fields are informational.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Provider executes a text query and returns up to maxResults records.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
