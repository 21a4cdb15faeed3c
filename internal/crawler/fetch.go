package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// DefaultUserAgent identifies the auditor to the sites it fetches.
const DefaultUserAgent = "seoaudit/1.0 (+https://github.com/nao1215/seoaudit)"

// Fetcher downloads single pages and turns each response into CrawlData.
// It never returns an error: failures are recorded in CrawlData.Error so a
// broken page still shows up in the audit.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	logger      *slog.Logger
	now         func() time.Time
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds request headers, such as cookies for staging sites.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = maps.Clone(headers)
	}
}

// WithFetchLogger sets the logger for fetch results.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher using client. A nil client uses a client
// with a 30 second timeout.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: model.MaxPageSize,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads pageURL. The returned body is nil unless the response
// was HTML, and is capped at the configured body size.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.CrawlData, []byte) {
	data := &model.CrawlData{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		data.Error = fmt.Sprintf("invalid request: %v", err)
		return data, nil
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := f.now()
	resp, err := f.client.Do(req)
	if err != nil {
		data.ResponseTime = f.now().Sub(start)
		data.Error = err.Error()
		f.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return data, nil
	}
	defer resp.Body.Close()

	data.StatusCode = resp.StatusCode
	data.ContentType = resp.Header.Get("Content-Type")
	data.FinalURL = resp.Request.URL.String()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, f.maxBodySize))
	data.ResponseTime = f.now().Sub(start)
	data.PageSize = n
	if resp.ContentLength > n {
		data.PageSize = resp.ContentLength
	}
	if err != nil {
		data.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	body := buf.Bytes()
	data.ComputeHash(body)

	f.logger.Debug("fetched page",
		"url", pageURL,
		"status", data.StatusCode,
		"bytes", data.PageSize,
		"elapsed", data.ResponseTime,
	)

	if !data.IsHTML() {
		return data, nil
	}
	return data, body
}

// FetchPage fetches pageURL and, for successful HTML responses, extracts
// its SEO attributes into CrawlData.Document.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) *model.Page {
	data, body := f.Fetch(ctx, pageURL)
	return f.newPage(pageURL, data, body)
}

func (f *Fetcher) newPage(pageURL string, data *model.CrawlData, body []byte) *model.Page {
	page := &model.Page{
		URL:    pageURL,
		Domain: Domain(pageURL),
		Crawl:  data,
	}
	if body == nil || data.StatusCode < 200 || data.StatusCode >= 300 {
		return page
	}

	base := pageURL
	if data.FinalURL != "" {
		base = data.FinalURL
	}
	doc, err := Extract(bytes.NewReader(body), base)
	if err != nil {
		f.logger.Warn("failed to extract page attributes", "url", pageURL, "error", err)
		if data.Error == "" {
			data.Error = err.Error()
		}
		return page
	}
	data.Document = doc
	return page
}
