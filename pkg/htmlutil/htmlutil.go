package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var whitespace = regexp.MustCompile(`[\s\p{Z}]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText drops non-printable characters, collapses every run of
// whitespace into a single space and trims the result.
func NormalizeText(s string) string {
	s = removeNonPrintable(s)
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Text returns the normalized text of all the nodes in a selection.
func Text(sel *goquery.Selection) string {
	return NormalizeText(sel.Text())
}

// NodeText returns the normalized text of a single node.
func NodeText(node *html.Node) string {
	return NormalizeText(GetText(node))
}

// Attr returns the value of the attribute `key` on a node.
func Attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// IsElement reports if a node is an element with the given tag name.
func IsElement(node *html.Node, tag string) bool {
	return node != nil && node.Type == html.ElementNode && node.Data == tag
}

type Anchor struct {
	Name string
	Href string
	Url  *url.URL
}

// GetAnchors returns an anchor for every node in the selection, hrefs are
// resolved against `base` when it is not nil. Nodes with unparsable hrefs
// are skipped.
func GetAnchors(base *url.URL, sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := Attr(n, "href")

		link, err := url.Parse(href)
		if err != nil {
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchors = append(anchors, Anchor{
			Name: NodeText(n),
			Href: href,
			Url:  link,
		})
	}
	return anchors
}
