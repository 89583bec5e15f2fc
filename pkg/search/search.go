// Package search defines the provider-neutral interface used to gather
// public evidence about a company before analysis.
package search

import "context"

// Searcher is implemented by every search provider.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request is a provider-neutral search query.
type Request struct {
	Query             string
	Topic             string // "news" or "general"
	MaxResults        int
	IncludeRawContent bool
	StartDate         string // YYYY-MM-DD
	EndDate           string // YYYY-MM-DD
}

// Response carries the provider's results.
type Response struct {
	Results []Result
}

// Result is one search hit.
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	Score         float64
	PublishedDate string
}
