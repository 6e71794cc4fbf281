package catalog

import (
	"bookbridge/internal/components/telemetry"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/search_page.html
var searchPageHtml string

//go:embed testdata/book_page.html
var bookPageHtml string

//go:embed testdata/sequence_page.html
var sequencePageHtml string

func parse(t testing.TB, contents string) *goquery.Document {
	doc, err := ParseDocument([]byte(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractBookList(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	books := e.ExtractBookList(parse(t, searchPageHtml))
	diff := cmp.Diff([]BookSummary{
		{Id: 162355, Title: "Мастер и Маргарита", Author: "Михаил Булгаков"},
		{Id: 51234, Title: "Мастер ветров", Author: "Андрей Лазарчук"},
		{Id: 7001, Title: "Мастерская", Author: "Ирина Иванова"},
	}, books)
	require.Empty(t, diff)
}

func TestExtractBookListSimpleEntries(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	doc := parse(t, `<html><body>
		<h3>Найденные книги</h3>
		<ul>
			<li><a href="/b/100">T1</a><a>A1</a></li>
			<li><a href="/b/101">T2</a><a>A2</a></li>
			<li><a href="/b/102">T3</a><a>A3</a></li>
		</ul>
	</body></html>`)

	books := e.ExtractBookList(doc)
	require.Equal(t, []BookSummary{
		{Id: 100, Title: "T1", Author: "A1"},
		{Id: 101, Title: "T2", Author: "A2"},
		{Id: 102, Title: "T3", Author: "A3"},
	}, books)
}

func TestExtractBookListMalformedHref(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	doc := parse(t, `<html><body>
		<h3>Найденные книги</h3>
		<ul>
			<li><a href="/b/5">T</a> - <a href="/a/%zz">A</a></li>
			<li><a href="/b/%zz">Broken</a> - <a href="/a/1">B</a></li>
			<li><a href="/b/6">U</a> - <a>C</a></li>
		</ul>
	</body></html>`)

	books := e.ExtractBookList(doc)
	require.Equal(t, []BookSummary{
		{Id: 5, Title: "T", Author: "A"},
		{Id: 6, Title: "U", Author: "C"},
	}, books)
}

func TestExtractBookListMissingSections(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	testCases := []string{
		"",
		"<html><body><p>nothing here</p></body></html>",
		"<html><body><h3>Найденные книги</h3><p>No list</p></body></html>",
		"<html><body><h3>Найденные книги</h3></body></html>",
		"<html><body><h3>Найденные серии</h3><ul><li><a href=\"/b/1\">a</a><a>b</a></li></ul></body></html>",
		"<<<not html at all",
	}

	for _, html := range testCases {
		books := e.ExtractBookList(parse(t, html))
		require.NotNil(t, books)
		require.Empty(t, books, html)
	}
}

func TestExtractSequenceList(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	sequences := e.ExtractSequenceList(parse(t, searchPageHtml))
	diff := cmp.Diff([]BookSequence{
		{SequenceId: 2006, Title: "Мастер меча", BooksCount: 12},
		{SequenceId: 31415, Title: "Мастер иллюзий", BooksCount: 3},
		{SequenceId: 777, Title: "Мастера фантастики", BooksCount: 0},
	}, sequences)
	require.Empty(t, diff)

	empty := e.ExtractSequenceList(parse(t, "<html><body><h3>Найденные серии</h3><p>No list</p></body></html>"))
	require.Empty(t, empty)
}

func TestExtractPageCount(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	count, ok := e.ExtractPageCount(parse(t, searchPageHtml))
	require.True(t, ok)
	require.Equal(t, 14, count)

	_, ok = e.ExtractPageCount(parse(t, bookPageHtml))
	require.False(t, ok)

	count, ok = e.ExtractPageCount(parse(t, `<ul class="pager"><li class="pager-current">1</li></ul>`))
	require.True(t, ok)
	require.Equal(t, 1, count)

	count, ok = e.ExtractPageCount(parse(t, `<ul class="pager">
		<li class="pager-current">1</li>
		<li><a href="/booksearch?ask=x&page=1">2</a></li>
	</ul>`))
	require.True(t, ok)
	require.Equal(t, 2, count)
}

func TestExtractBookDetail(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	info := e.ExtractBookDetail(parse(t, bookPageHtml), 162355)
	diff := cmp.Diff(FullBookInfo{
		Summary: BookSummary{
			Id:     162355,
			Title:  "Мастер и Маргарита",
			Author: "Михаил Афанасьевич Булгаков",
		},
		Annotation: "Роман о дьяволе, посетившем Москву.\n\nВторая часть аннотации.",
		PagesCount: 480,
	}, info)
	require.Empty(t, diff)
}

func TestExtractBookDetailMissingFields(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	noAnnotation := e.ExtractBookDetail(parse(t, `<html><body>
		<h1 class="title">Test Book (fb2)</h1>
		<div id="main">
			<a href="/a/123">Test Author</a>
		</div>
		<span style="size">100 с.</span>
	</body></html>`), 999)
	require.Equal(t, FullBookInfo{
		Summary:    BookSummary{Id: 999, Title: "Test Book", Author: "Test Author"},
		Annotation: "",
		PagesCount: 100,
	}, noAnnotation)

	noPages := e.ExtractBookDetail(parse(t, `<html><body>
		<h1 class="title">Test Book</h1>
		<div id="main">
			<a href="/a/123">Test Author</a>
		</div>
		<h2>Аннотация</h2>
		<p>Test annotation</p>
	</body></html>`), 999)
	require.Equal(t, 0, noPages.PagesCount)
	require.Equal(t, "Test annotation", noPages.Annotation)

	empty := e.ExtractBookDetail(parse(t, "<html></html>"), 5)
	require.Equal(t, FullBookInfo{Summary: BookSummary{Id: 5}}, empty)
}

func TestExtractBookDetailMalformedAuthorHref(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	info := e.ExtractBookDetail(parse(t, `<html><body>
		<h1 class="title">Test Book</h1>
		<div id="main">
			<a href="/a/%zz">First Author</a>
			<a href="/a/2">Second Author</a>
		</div>
	</body></html>`), 1)
	require.Equal(t, "First Author", info.Summary.Author)
}

func TestExtractBookDetailTitleSuffix(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	testCases := []struct {
		title  string
		expect string
	}{
		{title: "Test Book (epub)", expect: "Test Book"},
		{title: "Test Book (FB2)", expect: "Test Book"},
		{title: "Another Book (Epub)", expect: "Another Book"},
		{title: "Test Book", expect: "Test Book"},
		{title: "Book (2nd edition)", expect: "Book (2nd edition)"},
		{title: "Book (pdf) (epub)", expect: "Book (pdf)"},
	}

	for _, test := range testCases {
		doc := parse(t, `<h1 class="title">`+test.title+`</h1>`)
		info := e.ExtractBookDetail(doc, 1)
		require.Equal(t, test.expect, info.Summary.Title, test.title)
	}
}

func TestExtractSequenceMembers(t *testing.T) {
	e := NewExtractor(telemetry.NewTestAPI(t))

	books := e.ExtractSequenceMembers(parse(t, sequencePageHtml))
	diff := cmp.Diff([]BookSummary{
		{Id: 501, Title: "Начало пути", Author: "Олег Верещагин"},
		{Id: 502, Title: "Танец клинка", Author: "Олег Верещагин"},
		{Id: 504, Title: "Без автора", Author: ""},
	}, books)
	require.Empty(t, diff)
}

func TestExtractSequenceMembersEdgeCases(t *testing.T) {
	tel := telemetry.NewTestAPI(t)
	e := NewExtractor(tel)

	missingAuthor := e.ExtractSequenceMembers(parse(t, `<html><body>
		<input type="checkbox" name="bchk123">
		<a href="/b/123">Book Title</a>
		<br>
	</body></html>`))
	require.Equal(t, []BookSummary{{Id: 123, Title: "Book Title"}}, missingAuthor)

	authorOnly := e.ExtractSequenceMembers(parse(t, `<html><body>
		<input type="checkbox" name="bchk123">
		<a href="/a/456">Author Only</a>
		<br>
	</body></html>`))
	require.Empty(t, authorOnly)

	none := e.ExtractSequenceMembers(parse(t, "<html><body></body></html>"))
	require.Empty(t, none)
	require.Contains(t, tel.Warnings(), report_extractor_sequence_members)
}
