package commands

import (
	"bookbridge/internal/components/telemetry"
	"bookbridge/internal/retrieval"
	"bookbridge/internal/scrapers/catalog"
	"bookbridge/internal/searchcache"
	"bookbridge/internal/sessions"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) Search(ctx context.Context, query string) (catalog.SearchResults, error) {
	results := catalog.SearchResults{
		Sequences: []catalog.BookSequence{{SequenceId: 2006, Title: "Мастер меча", BooksCount: 2}},
		Books:     []catalog.BookSummary{},
	}
	for i := 0; i < 6; i++ {
		results.Books = append(results.Books, catalog.BookSummary{
			Id:     100 + i,
			Title:  fmt.Sprintf("Book %d", 100+i),
			Author: "Author",
		})
	}
	return results, nil
}

func (fakeCatalog) SequenceMembers(ctx context.Context, sequenceId int) ([]catalog.BookSummary, error) {
	return []catalog.BookSummary{
		{Id: 501, Title: "Начало пути", Author: "Олег Верещагин"},
		{Id: 502, Title: "Танец клинка", Author: "Олег Верещагин"},
	}, nil
}

func (fakeCatalog) Detail(ctx context.Context, bookId int) (catalog.FullBookInfo, error) {
	return catalog.FullBookInfo{
		Summary:    catalog.BookSummary{Id: bookId, Title: fmt.Sprintf("Detail %d", bookId), Author: "Author"},
		Annotation: "Annotation text.",
		PagesCount: 100,
	}, nil
}

func (fakeCatalog) Download(ctx context.Context, bookId int) ([]byte, error) {
	return []byte("epub"), nil
}

func newBrowser(t *testing.T) (*browser, *bytes.Buffer, *[]int) {
	tel := telemetry.NewTestAPI(t)
	cache, err := searchcache.New(searchcache.Options{}, tel)
	require.NoError(t, err)
	registry, err := sessions.NewRegistry(sessions.Options{}, tel)
	require.NoError(t, err)
	service := retrieval.NewService(retrieval.Options{
		Catalog:  fakeCatalog{},
		Cache:    cache,
		Sessions: registry,
	}, tel)

	page, err := service.Start(context.Background(), "мастер")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	sent := &[]int{}
	return &browser{
		service: service,
		out:     out,
		page:    page,
		send: func(ctx context.Context, bookId int) error {
			*sent = append(*sent, bookId)
			return nil
		},
	}, out, sent
}

func TestTranslateInput(t *testing.T) {
	page := retrieval.Page{SessionId: "abc", Number: 1, TotalPages: 3}

	testCases := []struct {
		line   string
		expect string
	}{
		{line: "", expect: retrieval.NoopCallback},
		{line: "q", expect: ""},
		{line: "n", expect: "page_abc_2"},
		{line: "p", expect: "page_abc_0"},
		{line: " 3 ", expect: "book_abc_1_2"},
		{line: "i 162355", expect: "info_162355"},
		{line: "s 162355", expect: "send_162355"},
	}
	for _, test := range testCases {
		payload, err := translateInput(test.line, page)
		require.NoError(t, err, test.line)
		require.Equal(t, test.expect, payload, test.line)
	}

	for _, line := range []string{"x", "i", "s abc", "i 1 2"} {
		_, err := translateInput(line, page)
		require.Error(t, err, line)
	}
}

func TestBrowserSession(t *testing.T) {
	b, out, sent := newBrowser(t)

	input := strings.Join([]string{
		"n",
		"n",
		"p",
		"p",
		"p",
		"1",
		"2",
		"9",
		"s 501",
		"q",
	}, "\n")
	require.NoError(t, b.run(context.Background(), strings.NewReader(input)))

	output := out.String()
	require.Contains(t, output, "page 2 of 2")
	require.Contains(t, output, "No such page.")
	// the first entry of the first page is the sequence, opening it lists its books
	require.Contains(t, output, "Начало пути")
	require.Equal(t, "seq:2006", b.page.Query)
	require.Contains(t, output, "Detail 502")
	require.Contains(t, output, "No such entry.")
	require.Equal(t, []int{501}, *sent)
}

func TestBrowserExpiredSession(t *testing.T) {
	b, out, _ := newBrowser(t)
	b.page.SessionId = "expired"

	require.NoError(t, b.run(context.Background(), strings.NewReader("n\n")))
	require.Contains(t, out.String(), "This search has expired")
}
