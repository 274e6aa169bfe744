package scraper

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/harwood/go-scrape-listings/config"
)

// Page is one fetched listing page. It is owned by the worker that fetched
// it and discarded after extraction.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher issues one synchronous GET per URL. Non-2xx responses are still
// delivered as pages; their markup simply fails extraction downstream. Only
// transport-level failures surface as errors.
type Fetcher struct {
	collector *colly.Collector
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{collector: collector}
}

// WithTransport overrides the HTTP transport. Used by tests.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch performs a blocking GET and returns the response page. A URL
// without an http(s) scheme fails with MalformedURLError before any network
// call; a broken connection is an ordinary fetch error for that URL.
func (f *Fetcher) Fetch(rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, MalformedURLError{URL: rawURL, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, MalformedURLError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return nil, MalformedURLError{URL: rawURL, Err: fmt.Errorf("missing host")}
	}

	// Callbacks are per-fetch state, so each call works on a clone. Clones
	// share the configured transport and timeouts.
	collector := f.collector.Clone()

	var (
		page     *Page
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body := make([]byte, len(r.Body))
		copy(body, r.Body)
		page = &Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       body,
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(rawURL); err != nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, FetchError{URL: rawURL, Err: fetchErr}
	}
	if page == nil {
		return nil, FetchError{URL: rawURL, Err: fmt.Errorf("no response received")}
	}
	return page, nil
}
