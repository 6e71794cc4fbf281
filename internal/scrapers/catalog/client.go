// client.go contains the logic for fetching raw pages from the catalog, one
// request per call. It does not retry, that is left to whoever calls it.

package catalog

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/telemetry"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_search_page   = "client.search-page"
	report_client_sequence_page = "client.sequence-page"
	report_client_book_page     = "client.book-page"
	report_client_book_file     = "client.book-file"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// StatusError is returned when the catalog responds with a non-success status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: %s: unexpected status %d", e.Endpoint, e.StatusCode)
}

type ClientOptions struct {
	BaseUrl string
	// defaults to 30 seconds
	Timeout   time.Duration
	UserAgent string
	// wraps the transport so that requests look like they came from a browser,
	// some mirrors of the catalog sit behind cloudflare.
	CloudflareBypass bool
}

// Client is the PageFetcher, the only component that talks to the network.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseUrl)

	tel = telemetry.NewScopedAPI("catalog_client", tel)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(timeout)

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

func (c *Client) get(ctx context.Context, reportId, endpoint string, query map[string]string) ([]byte, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, fmt.Errorf("catalog: fetch %s: %w", endpoint, err)
	}
	if res.IsError() {
		err := &StatusError{Endpoint: endpoint, StatusCode: res.StatusCode()}
		c.tel.ReportBroken(reportId, err)
		return nil, err
	}
	return res.Body(), nil
}

// SearchPage fetches the zero based page `page` of the results for `query`.
func (c *Client) SearchPage(ctx context.Context, query string, page int) ([]byte, error) {
	c.tel.ReportDebug(report_client_search_page, query, page)

	params := map[string]string{
		"ask": query,
		"chs": "on",
		"chb": "on",
	}
	if page > 0 {
		params["page"] = strconv.Itoa(page)
	}
	return c.get(ctx, report_client_search_page, "/booksearch", params)
}

func (c *Client) SequencePage(ctx context.Context, sequenceId int) ([]byte, error) {
	c.tel.ReportDebug(report_client_sequence_page, sequenceId)
	return c.get(ctx, report_client_sequence_page, fmt.Sprintf("/sequence/%d", sequenceId), nil)
}

func (c *Client) BookPage(ctx context.Context, bookId int) ([]byte, error) {
	c.tel.ReportDebug(report_client_book_page, bookId)
	return c.get(ctx, report_client_book_page, fmt.Sprintf("/b/%d", bookId), nil)
}

func (c *Client) BookFile(ctx context.Context, bookId int) ([]byte, error) {
	c.tel.ReportDebug(report_client_book_file, bookId)
	return c.get(ctx, report_client_book_file, fmt.Sprintf("/b/%d/epub", bookId), nil)
}
