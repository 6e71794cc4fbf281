package catalog

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"context"
	"fmt"
)

const (
	report_scraper_sequence_members = "scraper.sequence-members"
	report_scraper_detail           = "scraper.detail"
	report_scraper_download         = "scraper.download"
)

var _ API = Scraper{}

// Scraper implements API on top of the catalog's HTML pages.
type Scraper struct {
	client     *Client
	aggregator Aggregator
	extractor  Extractor
	tel        telemetry.API
}

type ScraperOptions struct {
	Client ClientOptions
	// how many search pages to combine, defaults to DefaultMaxPages
	MaxPages int
}

func NewScraper(opts ScraperOptions, tel telemetry.API) (Scraper, error) {
	assert.NotNil(tel)

	client, err := NewClient(opts.Client, tel)
	if err != nil {
		return Scraper{}, err
	}

	tel = telemetry.NewScopedAPI("catalog_scraper", tel)
	extractor := NewExtractor(tel)

	return Scraper{
		client:     client,
		aggregator: NewAggregator(client, extractor, opts.MaxPages, tel),
		extractor:  extractor,
		tel:        tel,
	}, nil
}

func (s Scraper) Search(ctx context.Context, query string) (SearchResults, error) {
	return s.aggregator.Search(ctx, query)
}

func (s Scraper) SequenceMembers(ctx context.Context, sequenceId int) ([]BookSummary, error) {
	body, err := s.client.SequencePage(ctx, sequenceId)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		s.tel.ReportBroken(report_scraper_sequence_members, fmt.Errorf("parse: %w", err), sequenceId)
		return nil, fmt.Errorf("catalog: parse sequence %d: %w", sequenceId, err)
	}

	books := s.extractor.ExtractSequenceMembers(doc)
	if len(books) == 0 {
		s.tel.ReportWarning(report_scraper_sequence_members, "no books in sequence", sequenceId)
	}
	return books, nil
}

func (s Scraper) Detail(ctx context.Context, bookId int) (FullBookInfo, error) {
	body, err := s.client.BookPage(ctx, bookId)
	if err != nil {
		return FullBookInfo{}, err
	}
	doc, err := ParseDocument(body)
	if err != nil {
		s.tel.ReportBroken(report_scraper_detail, fmt.Errorf("parse: %w", err), bookId)
		return FullBookInfo{}, fmt.Errorf("catalog: parse book %d: %w", bookId, err)
	}
	return s.extractor.ExtractBookDetail(doc, bookId), nil
}

func (s Scraper) Download(ctx context.Context, bookId int) ([]byte, error) {
	contents, err := s.client.BookFile(ctx, bookId)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		s.tel.ReportWarning(report_scraper_download, "empty book file", bookId)
	}
	return contents, nil
}
