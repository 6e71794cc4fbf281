package catalog

import (
	"context"
	"slices"
)

// BookSummary is one catalog entry in a result list.
type BookSummary struct {
	Id     int
	Title  string
	Author string
}

// BookSequence is a named series grouping multiple books, BooksCount is
// what the catalog reports and not necessarily what can be retrieved.
type BookSequence struct {
	SequenceId int
	Title      string
	BooksCount int
}

// FullBookInfo is the detail view of a single book. PagesCount is 0 when unknown.
type FullBookInfo struct {
	Summary    BookSummary
	Annotation string
	PagesCount int
}

// SearchResults holds the sequences and books found for a query in the
// catalog's own ranking order.
type SearchResults struct {
	Sequences []BookSequence
	Books     []BookSummary
}

// Len is the combined amount of sequences and books.
func (r SearchResults) Len() int {
	return len(r.Sequences) + len(r.Books)
}

// Clone returns a copy that shares no backing arrays with r.
func (r SearchResults) Clone() SearchResults {
	return SearchResults{
		Sequences: slices.Clone(r.Sequences),
		Books:     slices.Clone(r.Books),
	}
}

// API is the set of operations offered by the catalog.
//
// note: fault injection point
type API interface {
	// Search returns the merged results of a text query.
	Search(ctx context.Context, query string) (SearchResults, error)
	// SequenceMembers returns the books listed under a sequence.
	SequenceMembers(ctx context.Context, sequenceId int) ([]BookSummary, error)
	// Detail returns the detail view of a book.
	Detail(ctx context.Context, bookId int) (FullBookInfo, error)
	// Download returns the raw epub contents of a book.
	Download(ctx context.Context, bookId int) ([]byte, error)
}
