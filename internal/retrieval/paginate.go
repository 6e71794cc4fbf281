package retrieval

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/scrapers/catalog"
)

type ItemKind int

const (
	ItemBook ItemKind = iota
	ItemSequence
)

func (k ItemKind) String() string {
	switch k {
	case ItemBook:
		return "book"
	case ItemSequence:
		return "sequence"
	}
	return "unknown"
}

// Item is one entry of the combined result list, exactly one of Book and
// Sequence is meaningful depending on Kind.
type Item struct {
	Kind     ItemKind
	Book     catalog.BookSummary
	Sequence catalog.BookSequence
}

func (i Item) Title() string {
	if i.Kind == ItemSequence {
		return i.Sequence.Title
	}
	return i.Book.Title
}

type Page struct {
	SessionId string
	Query     string
	// zero based
	Number     int
	TotalPages int
	TotalItems int
	Items      []Item
}

func (p Page) HasPrev() bool {
	return p.Number > 0
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages-1
}

func itemAt(results catalog.SearchResults, index int) Item {
	if index < len(results.Sequences) {
		return Item{Kind: ItemSequence, Sequence: results.Sequences[index]}
	}
	return Item{Kind: ItemBook, Book: results.Books[index-len(results.Sequences)]}
}

// Paginate slices the combined list of sequences followed by books into
// windows of `pageSize`. Sequences are not pinned to the first page, they
// occupy the first slots of the combined list and spill over like any other
// item. A page outside [0, totalPages) is rejected with ErrOutOfRange.
func Paginate(results catalog.SearchResults, page, pageSize int) (Page, error) {
	assert.Positive(pageSize)

	total := results.Len()
	totalPages := (total + pageSize - 1) / pageSize
	out := Page{
		Number:     page,
		TotalPages: totalPages,
		TotalItems: total,
	}
	if page < 0 || page >= totalPages {
		return out, ErrOutOfRange
	}

	from := page * pageSize
	to := min(from+pageSize, total)
	out.Items = make([]Item, 0, to-from)
	for i := from; i < to; i++ {
		out.Items = append(out.Items, itemAt(results, i))
	}
	return out, nil
}
