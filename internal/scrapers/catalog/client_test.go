package catalog

import (
	"bookbridge/internal/components/telemetry"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path  string
	query url.Values
}

type catalogServer struct {
	*httptest.Server

	lock     sync.Mutex
	requests []recordedRequest
}

func newCatalogServer(t testing.TB, handler http.HandlerFunc) *catalogServer {
	s := &catalogServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, recordedRequest{
			path:  r.URL.Path,
			query: r.URL.Query(),
		})
		s.lock.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *catalogServer) last() recordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.requests[len(s.requests)-1]
}

func TestClientEndpoints(t *testing.T) {
	server := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("body:" + r.URL.Path))
	})

	client, err := NewClient(ClientOptions{BaseUrl: server.URL}, telemetry.NewTestAPI(t))
	require.NoError(t, err)
	ctx := context.Background()

	body, err := client.SearchPage(ctx, "мастер", 0)
	require.NoError(t, err)
	require.Equal(t, "body:/booksearch", string(body))
	req := server.last()
	require.Equal(t, "мастер", req.query.Get("ask"))
	require.Equal(t, "on", req.query.Get("chs"))
	require.Equal(t, "on", req.query.Get("chb"))
	require.False(t, req.query.Has("page"))

	_, err = client.SearchPage(ctx, "мастер", 3)
	require.NoError(t, err)
	require.Equal(t, "3", server.last().query.Get("page"))

	body, err = client.SequencePage(ctx, 2006)
	require.NoError(t, err)
	require.Equal(t, "body:/sequence/2006", string(body))

	body, err = client.BookPage(ctx, 162355)
	require.NoError(t, err)
	require.Equal(t, "body:/b/162355", string(body))

	body, err = client.BookFile(ctx, 162355)
	require.NoError(t, err)
	require.Equal(t, "body:/b/162355/epub", string(body))
}

func TestClientStatusError(t *testing.T) {
	server := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tel := telemetry.NewTestAPI(t)
	client, err := NewClient(ClientOptions{BaseUrl: server.URL}, tel)
	require.NoError(t, err)

	_, err = client.BookPage(context.Background(), 1)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Equal(t, "/b/1", statusErr.Endpoint)
	require.Contains(t, tel.Broken(), "catalog_client: "+report_client_book_page)
}

func TestClientUnreachable(t *testing.T) {
	server := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {})
	baseUrl := server.URL
	server.Close()

	client, err := NewClient(ClientOptions{BaseUrl: baseUrl}, telemetry.NewTestAPI(t))
	require.NoError(t, err)

	_, err = client.SearchPage(context.Background(), "q", 0)
	require.Error(t, err)

	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestScraperAgainstServer(t *testing.T) {
	server := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/booksearch":
			w.Write([]byte(`<html><body>
				<h3>Найденные книги</h3>
				<ul><li><a href="/b/10">Title</a> - <a href="/a/1">Author</a></li></ul>
			</body></html>`))
		case "/sequence/7":
			w.Write([]byte(sequencePageHtml))
		case "/b/162355":
			w.Write([]byte(bookPageHtml))
		case "/b/162355/epub":
			w.Write([]byte("epub-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	scraper, err := NewScraper(ScraperOptions{
		Client: ClientOptions{BaseUrl: server.URL},
	}, telemetry.NewTestAPI(t))
	require.NoError(t, err)
	ctx := context.Background()

	results, err := scraper.Search(ctx, "title")
	require.NoError(t, err)
	require.Equal(t, []BookSummary{{Id: 10, Title: "Title", Author: "Author"}}, results.Books)
	require.Empty(t, results.Sequences)

	members, err := scraper.SequenceMembers(ctx, 7)
	require.NoError(t, err)
	require.Len(t, members, 3)

	info, err := scraper.Detail(ctx, 162355)
	require.NoError(t, err)
	require.Equal(t, "Мастер и Маргарита", info.Summary.Title)
	require.Equal(t, 480, info.PagesCount)

	contents, err := scraper.Download(ctx, 162355)
	require.NoError(t, err)
	require.Equal(t, "epub-bytes", string(contents))

	_, err = scraper.Detail(ctx, 404)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
