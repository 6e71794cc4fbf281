// Package retrieval is the entrypoint frontends use to search the catalog,
// page through results and fetch single books.
package retrieval

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"bookbridge/internal/scrapers/catalog"
	"bookbridge/internal/searchcache"
	"bookbridge/internal/sessions"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	report_service_search   = "service.search"
	report_service_page     = "service.page"
	report_service_download = "service.download"
)

const DefaultPageSize = 5

const sequenceQueryPrefix = "seq:"

var (
	ErrOutOfRange      = errors.New("retrieval: page or index out of range")
	ErrSessionNotFound = errors.New("retrieval: session not found or expired")
)

// SequenceQuery is the query that lists the members of a sequence, it can be
// passed anywhere a text query is accepted.
func SequenceQuery(sequenceId int) string {
	return sequenceQueryPrefix + strconv.Itoa(sequenceId)
}

func parseSequenceQuery(query string) (int, bool) {
	rest, found := strings.CutPrefix(query, sequenceQueryPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type Options struct {
	Catalog  catalog.API
	Cache    *searchcache.Cache
	Sessions *sessions.Registry
	// defaults to DefaultPageSize
	PageSize int
	// parent directory of per-download temp directories, defaults to os.TempDir
	DownloadDir string
}

type Service struct {
	catalog     catalog.API
	cache       *searchcache.Cache
	sessions    *sessions.Registry
	pageSize    int
	downloadDir string
	tel         telemetry.API
}

func NewService(opts Options, tel telemetry.API) Service {
	assert.NotNil(opts.Catalog)
	assert.NotNil(opts.Cache)
	assert.NotNil(opts.Sessions)
	assert.NotNil(tel)

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return Service{
		catalog:     opts.Catalog,
		cache:       opts.Cache,
		sessions:    opts.Sessions,
		pageSize:    pageSize,
		downloadDir: opts.DownloadDir,
		tel:         telemetry.NewScopedAPI("retrieval", tel),
	}
}

func (s Service) PageSize() int {
	return s.pageSize
}

// Search returns the results of `query`, serving them from the cache when a
// fresh entry exists. Failed retrievals are never cached.
func (s Service) Search(ctx context.Context, query string) (catalog.SearchResults, error) {
	cached, ok := s.cache.Get(query)
	if ok {
		return cached, nil
	}

	var results catalog.SearchResults
	var err error
	if sequenceId, isSequence := parseSequenceQuery(query); isSequence {
		var books []catalog.BookSummary
		books, err = s.catalog.SequenceMembers(ctx, sequenceId)
		results = catalog.SearchResults{
			Sequences: []catalog.BookSequence{},
			Books:     books,
		}
	} else {
		results, err = s.catalog.Search(ctx, query)
	}
	if err != nil {
		s.tel.ReportBroken(report_service_search, err, query)
		return catalog.SearchResults{}, err
	}

	s.cache.Put(query, results)
	return results, nil
}

func (s Service) SequenceMembers(ctx context.Context, sequenceId int) ([]catalog.BookSummary, error) {
	return s.catalog.SequenceMembers(ctx, sequenceId)
}

func (s Service) Detail(ctx context.Context, bookId int) (catalog.FullBookInfo, error) {
	return s.catalog.Detail(ctx, bookId)
}

// Download writes the epub of a book into a fresh temporary directory and
// returns the path of the file. The file is named after the book's title and
// author.
func (s Service) Download(ctx context.Context, bookId int) (string, error) {
	contents, err := s.catalog.Download(ctx, bookId)
	if err != nil {
		return "", err
	}
	info, err := s.catalog.Detail(ctx, bookId)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp(s.downloadDir, "bookbridge-")
	if err != nil {
		s.tel.ReportBroken(report_service_download, fmt.Errorf("create temp dir: %w", err), bookId)
		return "", fmt.Errorf("retrieval: create download dir: %w", err)
	}

	name := catalog.SanitizeFileName(fmt.Sprintf("%s - %s", info.Summary.Title, info.Summary.Author)) + ".epub"
	path := filepath.Join(dir, name)
	err = os.WriteFile(path, contents, 0644)
	if err != nil {
		s.tel.ReportBroken(report_service_download, fmt.Errorf("write file: %w", err), bookId, path)
		os.RemoveAll(dir)
		return "", fmt.Errorf("retrieval: write %s: %w", path, err)
	}

	s.tel.ReportDebug(report_service_download, bookId, path, len(contents))
	return path, nil
}

func (s Service) NewSession(query string) (string, error) {
	return s.sessions.Create(query)
}

// Page re-runs the query a session stands for and returns one page of it.
func (s Service) Page(ctx context.Context, sessionId string, page int) (Page, error) {
	query, ok := s.sessions.Resolve(sessionId)
	if !ok {
		s.tel.ReportDebug(report_service_page, "unknown session", sessionId)
		return Page{}, ErrSessionNotFound
	}

	results, err := s.Search(ctx, query)
	if err != nil {
		return Page{}, err
	}

	out, err := Paginate(results, page, s.pageSize)
	out.SessionId = sessionId
	out.Query = query
	return out, err
}

// Item returns the entry at `index` of one page of a session.
func (s Service) Item(ctx context.Context, sessionId string, page, index int) (Item, error) {
	p, err := s.Page(ctx, sessionId, page)
	if err != nil {
		return Item{}, err
	}
	if index < 0 || index >= len(p.Items) {
		return Item{}, ErrOutOfRange
	}
	return p.Items[index], nil
}

// Start searches, opens a session for the query and returns the first page.
// A query without results yields an empty page and no session.
func (s Service) Start(ctx context.Context, query string) (Page, error) {
	results, err := s.Search(ctx, query)
	if err != nil {
		return Page{}, err
	}
	if results.Len() == 0 {
		return Page{Query: query}, nil
	}

	sessionId, err := s.NewSession(query)
	if err != nil {
		return Page{}, err
	}

	out, err := Paginate(results, 0, s.pageSize)
	if err != nil {
		return Page{}, err
	}
	out.SessionId = sessionId
	out.Query = query
	return out, nil
}
