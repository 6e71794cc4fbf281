package retrieval

import (
	"bookbridge/internal/scrapers/catalog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaginateTotals(t *testing.T) {
	for total := 0; total <= 23; total++ {
		for pageSize := 1; pageSize <= 6; pageSize++ {
			results := catalog.SearchResults{Books: books(make([]int, total)...)}
			expectedPages := (total + pageSize - 1) / pageSize

			_, err := Paginate(results, expectedPages, pageSize)
			require.ErrorIs(t, err, ErrOutOfRange)

			if expectedPages == 0 {
				_, err := Paginate(results, 0, pageSize)
				require.ErrorIs(t, err, ErrOutOfRange)
				continue
			}

			last, err := Paginate(results, expectedPages-1, pageSize)
			require.NoError(t, err)
			require.Equal(t, expectedPages, last.TotalPages)
			require.Equal(t, total, last.TotalItems)
			require.GreaterOrEqual(t, len(last.Items), 1)
			require.LessOrEqual(t, len(last.Items), pageSize)

			seen := 0
			for p := 0; p < expectedPages; p++ {
				page, err := Paginate(results, p, pageSize)
				require.NoError(t, err)
				seen += len(page.Items)
			}
			require.Equal(t, total, seen)
		}
	}
}

func TestPaginateOrder(t *testing.T) {
	results := catalog.SearchResults{
		Sequences: sequences(1, 2, 3),
		Books:     books(10, 11, 12, 13),
	}

	page, err := Paginate(results, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []Item{
		{Kind: ItemSequence, Sequence: results.Sequences[0]},
		{Kind: ItemSequence, Sequence: results.Sequences[1]},
	}, page.Items)

	page, err = Paginate(results, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []Item{
		{Kind: ItemSequence, Sequence: results.Sequences[2]},
		{Kind: ItemBook, Book: results.Books[0]},
	}, page.Items)

	page, err = Paginate(results, 3, 2)
	require.NoError(t, err)
	require.Equal(t, []Item{
		{Kind: ItemBook, Book: results.Books[3]},
	}, page.Items)
}

func TestItemKindString(t *testing.T) {
	require.Equal(t, "book", ItemBook.String())
	require.Equal(t, "sequence", ItemSequence.String())
}
