package catalog

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"context"
	"fmt"
)

const report_aggregator_search = "aggregator.search"

// DefaultMaxPages is how many result pages are fetched at most for one query,
// regardless of how many the catalog reports.
const DefaultMaxPages = 5

// SearchFetcher fetches a single page of search results.
//
// note: fault injection point
type SearchFetcher interface {
	SearchPage(ctx context.Context, query string, page int) ([]byte, error)
}

// Aggregator combines the first few pages of a search into one SearchResults.
type Aggregator struct {
	fetcher   SearchFetcher
	extractor Extractor
	maxPages  int
	tel       telemetry.API
}

func NewAggregator(fetcher SearchFetcher, extractor Extractor, maxPages int, tel telemetry.API) Aggregator {
	assert.NotNil(fetcher)
	assert.NotNil(tel)
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	return Aggregator{
		fetcher:   fetcher,
		extractor: extractor,
		maxPages:  maxPages,
		tel:       telemetry.NewScopedAPI("catalog_aggregator", tel),
	}
}

type searchPage struct {
	results    SearchResults
	pagesCount int
}

func (a Aggregator) fetchPage(ctx context.Context, query string, page int) (searchPage, error) {
	body, err := a.fetcher.SearchPage(ctx, query, page)
	if err != nil {
		return searchPage{}, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		a.tel.ReportBroken(report_aggregator_search, fmt.Errorf("parse: %w", err), query, page)
		return searchPage{}, fmt.Errorf("catalog: parse search page %d: %w", page, err)
	}

	pagesCount, ok := a.extractor.ExtractPageCount(doc)
	if !ok {
		pagesCount = 1
	}
	return searchPage{
		results: SearchResults{
			Sequences: a.extractor.ExtractSequenceList(doc),
			Books:     a.extractor.ExtractBookList(doc),
		},
		pagesCount: pagesCount,
	}, nil
}

// Search fetches pages sequentially, a single failure discards everything
// fetched so far.
func (a Aggregator) Search(ctx context.Context, query string) (SearchResults, error) {
	first, err := a.fetchPage(ctx, query, 0)
	if err != nil {
		return SearchResults{}, err
	}
	if first.pagesCount <= 1 {
		return first.results, nil
	}

	pagesToLoad := min(first.pagesCount, a.maxPages)
	a.tel.ReportDebug(report_aggregator_search, "loading pages", query, first.pagesCount, pagesToLoad)

	pages := []SearchResults{first.results}
	for page := 1; page < pagesToLoad; page++ {
		next, err := a.fetchPage(ctx, query, page)
		if err != nil {
			return SearchResults{}, err
		}
		pages = append(pages, next.results)
	}

	merged := SearchResults{
		Sequences: []BookSequence{},
		Books:     []BookSummary{},
	}
	for _, p := range pages {
		merged.Sequences = append(merged.Sequences, p.Sequences...)
	}
	for _, p := range pages {
		merged.Books = append(merged.Books, p.Books...)
	}

	a.tel.ReportDebug(report_aggregator_search, "merged pages", query, len(merged.Sequences), len(merged.Books))
	return merged, nil
}
