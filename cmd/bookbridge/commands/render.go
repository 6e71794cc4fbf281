package commands

import (
	"bookbridge/cmd/bookbridge/utils"
	"bookbridge/internal/retrieval"
	"bookbridge/internal/scrapers/catalog"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

const maxTitleWidth = 60

func renderPage(out io.Writer, page retrieval.Page) {
	if page.TotalItems == 0 {
		fmt.Fprintf(out, "No results for %q.\n", page.Query)
		return
	}
	fmt.Fprintf(out, "Results for %q: %d found, page %d of %d\n", page.Query, page.TotalItems, page.Number+1, page.TotalPages)

	t := utils.NewTableTo(out)
	t.AppendHeader(table.Row{"#", "Kind", "Id", "Title", "Author / Books"})
	for i, item := range page.Items {
		switch item.Kind {
		case retrieval.ItemSequence:
			t.AppendRow(table.Row{
				i + 1,
				item.Kind,
				item.Sequence.SequenceId,
				utils.Ellipsize(item.Sequence.Title, maxTitleWidth),
				fmt.Sprintf("%d books", item.Sequence.BooksCount),
			})
		default:
			t.AppendRow(table.Row{
				i + 1,
				item.Kind,
				item.Book.Id,
				utils.Ellipsize(item.Book.Title, maxTitleWidth),
				item.Book.Author,
			})
		}
	}
	t.Render()
}

func renderBooks(out io.Writer, books []catalog.BookSummary) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books found.")
		return
	}
	t := utils.NewTableTo(out)
	t.AppendHeader(table.Row{"Id", "Title", "Author"})
	for _, b := range books {
		t.AppendRow(table.Row{b.Id, utils.Ellipsize(b.Title, maxTitleWidth), b.Author})
	}
	t.Render()
}

func renderDetail(out io.Writer, info catalog.FullBookInfo) {
	t := utils.NewTableTo(out)
	t.AppendRow(table.Row{"Id", info.Summary.Id})
	t.AppendRow(table.Row{"Title", info.Summary.Title})
	t.AppendRow(table.Row{"Author", info.Summary.Author})
	pages := "unknown"
	if info.PagesCount > 0 {
		pages = fmt.Sprint(info.PagesCount)
	}
	t.AppendRow(table.Row{"Pages", pages})
	t.Render()

	if info.Annotation != "" {
		fmt.Fprintf(out, "\n%s\n", info.Annotation)
	}
}
