// extract.go turns catalog pages into typed records, nothing in here performs I/O.
// Sections that are missing from a page are never an error, they just produce
// empty results.

package catalog

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"bookbridge/pkg/htmlutil"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	report_extractor_book_list        = "extractor.book-list"
	report_extractor_sequence_list    = "extractor.sequence-list"
	report_extractor_page_count       = "extractor.page-count"
	report_extractor_book_detail      = "extractor.book-detail"
	report_extractor_sequence_members = "extractor.sequence-members"
)

const (
	foundBooksHeading     = "Найденные книги"
	foundSequencesHeading = "Найденные серии"
	annotationHeading     = "Аннотация"
)

var (
	formatSuffixRegex = regexp.MustCompile(`(?i)\s*\((fb2|epub|mobi|pdf|doc|txt|djvu|rtf)\)\s*$`)
	booksCountRegex   = regexp.MustCompile(`\((\d+) книг`)
	pagesCountRegex   = regexp.MustCompile(`(\d+)\s*с\.`)
)

// ParseDocument parses a raw page body.
func ParseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Extractor reads records out of parsed catalog pages.
type Extractor struct {
	tel telemetry.API
}

func NewExtractor(tel telemetry.API) Extractor {
	assert.NotNil(tel)
	return Extractor{tel: tel}
}

// idAfter parses the numeric id that follows `marker` in an href,
// ex. idAfter("/b/100", "/b/") = 100.
func idAfter(href, marker string) (int, bool) {
	_, rest, found := strings.Cut(href, marker)
	if !found {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listAfterHeading returns the <ul> directly following the first <h3> whose
// text contains `heading`.
func (e Extractor) listAfterHeading(doc *goquery.Document, reportId, heading string) (*goquery.Selection, bool) {
	header := doc.Find("h3").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(htmlutil.Text(s), heading)
	}).First()
	if header.Length() == 0 {
		e.tel.ReportDebug(reportId, "heading not found", heading)
		return nil, false
	}

	list := header.Next()
	if list.Length() == 0 || goquery.NodeName(list) != "ul" {
		e.tel.ReportWarning(reportId, "no list after heading", heading, goquery.NodeName(list))
		return nil, false
	}
	return list, true
}

func (e Extractor) ExtractBookList(doc *goquery.Document) []BookSummary {
	list, ok := e.listAfterHeading(doc, report_extractor_book_list, foundBooksHeading)
	if !ok {
		return []BookSummary{}
	}

	books := []BookSummary{}
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		links := li.Find("a").Nodes
		if len(links) < 2 {
			e.tel.ReportDebug(report_extractor_book_list, "skipped entry with too few links", len(links), htmlutil.Text(li))
			return
		}

		bookHref := htmlutil.Attr(links[0], "href")
		id, ok := idAfter(bookHref, "/b/")
		if !ok {
			e.tel.ReportDebug(report_extractor_book_list, "skipped entry with invalid id", bookHref)
			return
		}

		books = append(books, BookSummary{
			Id:     id,
			Title:  htmlutil.NodeText(links[0]),
			Author: htmlutil.NodeText(links[1]),
		})
	})

	return books
}

func (e Extractor) ExtractSequenceList(doc *goquery.Document) []BookSequence {
	list, ok := e.listAfterHeading(doc, report_extractor_sequence_list, foundSequencesHeading)
	if !ok {
		return []BookSequence{}
	}

	sequences := []BookSequence{}
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a").First()
		if link.Length() == 0 {
			e.tel.ReportDebug(report_extractor_sequence_list, "skipped entry without link", htmlutil.Text(li))
			return
		}

		href := htmlutil.Attr(link.Nodes[0], "href")
		id, ok := idAfter(href, "/sequence/")
		if !ok {
			e.tel.ReportDebug(report_extractor_sequence_list, "skipped entry with invalid id", href)
			return
		}

		booksCount := 0
		groups := booksCountRegex.FindStringSubmatch(htmlutil.Text(li))
		if len(groups) >= 2 {
			count, err := strconv.Atoi(groups[1])
			if err == nil {
				booksCount = count
			}
		}

		sequences = append(sequences, BookSequence{
			SequenceId: id,
			Title:      htmlutil.Text(link),
			BooksCount: booksCount,
		})
	})

	return sequences
}

// ExtractPageCount returns the amount of result pages announced by the pager,
// false means there is no pager and everything fits on a single page.
func (e Extractor) ExtractPageCount(doc *goquery.Document) (int, bool) {
	pager := doc.Find("ul.pager").First()
	if pager.Length() == 0 {
		return 0, false
	}

	// the page query param is zero based while the labels are one based
	count := 1
	for _, a := range htmlutil.GetAnchors(nil, pager.Find("a")) {
		page, err := strconv.Atoi(a.Url.Query().Get("page"))
		if err == nil && page+1 > count {
			count = page + 1
		}
	}
	pager.Find("li").Each(func(_ int, li *goquery.Selection) {
		label, err := strconv.Atoi(htmlutil.Text(li))
		if err == nil && label > count {
			count = label
		}
	})

	e.tel.ReportDebug(report_extractor_page_count, count)
	return count, true
}

func (e Extractor) ExtractBookDetail(doc *goquery.Document, id int) FullBookInfo {
	rawTitle := ""
	titleElement := doc.Find("h1.title").First()
	if titleElement.Length() == 0 {
		e.tel.ReportWarning(report_extractor_book_detail, "title not found", id)
	} else {
		rawTitle = htmlutil.Text(titleElement)
	}
	title := formatSuffixRegex.ReplaceAllString(rawTitle, "")

	author := ""
	for _, a := range doc.Find(`#main a[href^="/a/"]`).Nodes {
		name := htmlutil.NodeText(a)
		if strings.HasPrefix(name, "[") || strings.HasSuffix(name, "]") || htmlutil.Attr(a, "href") == "/a/all" {
			continue
		}
		author = name
		break
	}
	if author == "" {
		e.tel.ReportWarning(report_extractor_book_detail, "author not found", id)
	}

	annotation := ""
	annotationHeader := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(htmlutil.Text(s), annotationHeading)
	}).First()
	if annotationHeader.Length() > 0 {
		var paragraphs []string
		for el := annotationHeader.Next(); el.Length() > 0 && goquery.NodeName(el) == "p"; el = el.Next() {
			paragraphs = append(paragraphs, htmlutil.Text(el))
		}
		annotation = strings.Join(paragraphs, "\n\n")
	}

	pagesCount := 0
	size := doc.Find(`span[style="size"]`).First()
	if size.Length() > 0 {
		groups := pagesCountRegex.FindStringSubmatch(htmlutil.Text(size))
		if len(groups) >= 2 {
			count, err := strconv.Atoi(groups[1])
			if err == nil {
				pagesCount = count
			}
		}
	}

	return FullBookInfo{
		Summary: BookSummary{
			Id:     id,
			Title:  title,
			Author: author,
		},
		Annotation: annotation,
		PagesCount: pagesCount,
	}
}

func (e Extractor) ExtractSequenceMembers(doc *goquery.Document) []BookSummary {
	checkboxes := doc.Find(`input[type="checkbox"][name^="bchk"]`)
	if checkboxes.Length() == 0 {
		e.tel.ReportWarning(report_extractor_sequence_members, "no checkboxes found")
		return []BookSummary{}
	}

	books := []BookSummary{}
	for _, checkbox := range checkboxes.Nodes {
		var bookLink, authorLink *html.Node
		for sibling := checkbox.NextSibling; sibling != nil; sibling = sibling.NextSibling {
			if sibling.Type != html.ElementNode {
				continue
			}
			if htmlutil.IsElement(sibling, "br") {
				break
			}
			if !htmlutil.IsElement(sibling, "a") {
				continue
			}
			href := htmlutil.Attr(sibling, "href")
			switch {
			case strings.HasPrefix(href, "/b/") && bookLink == nil:
				bookLink = sibling
			case strings.HasPrefix(href, "/a/") && authorLink == nil:
				authorLink = sibling
			}
		}

		if bookLink == nil {
			e.tel.ReportDebug(report_extractor_sequence_members, "skipped entry without book link", authorLink != nil)
			continue
		}
		id, ok := idAfter(htmlutil.Attr(bookLink, "href"), "/b/")
		if !ok {
			e.tel.ReportDebug(report_extractor_sequence_members, "skipped entry with invalid id", htmlutil.Attr(bookLink, "href"))
			continue
		}

		author := ""
		if authorLink != nil {
			author = htmlutil.NodeText(authorLink)
		}
		books = append(books, BookSummary{
			Id:     id,
			Title:  htmlutil.NodeText(bookLink),
			Author: author,
		})
	}

	return books
}
