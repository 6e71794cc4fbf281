package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		input  string
		expect string
	}{
		{input: "  hello   world ", expect: "hello world"},
		{input: "\n\tМастер\n и  Маргарита\t", expect: "Мастер и Маргарита"},
		{input: "", expect: ""},
		{input: "a\u0000b", expect: "ab"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, NormalizeText(test.input))
	}
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<ul>
			<li><a href="/b/100"> Book
				one </a></li>
			<li><a href="https://example.com/a/5">Author</a></li>
			<li><a>No href</a></li>
		</ul>
	`))
	require.NoError(t, err)

	base, err := url.Parse("https://catalog.test")
	require.NoError(t, err)

	anchors := GetAnchors(base, doc.Find("a"))
	require.Len(t, anchors, 3)

	require.Equal(t, "Book one", anchors[0].Name)
	require.Equal(t, "/b/100", anchors[0].Href)
	require.Equal(t, "https://catalog.test/b/100", anchors[0].Url.String())

	require.Equal(t, "/a/5", anchors[1].Url.Path)
	require.Equal(t, "example.com", anchors[1].Url.Host)

	require.Equal(t, "No href", anchors[2].Name)
	require.Equal(t, "", anchors[2].Href)
}
