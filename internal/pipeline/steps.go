package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/seoaudit/internal/crawler"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/searchconsole"
)

// ErrFetch is returned by CrawlStep when the page could not be fetched.
// The partial crawl data is still stored on the page.
var ErrFetch = errors.New("fetch failed")

// CrawlStep fetches the page and extracts its on-page attributes.
type CrawlStep struct {
	fetcher    *crawler.Fetcher
	prefetched map[string]*model.CrawlData
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithPrefetched reuses crawl data of pages that discovery already fetched.
func WithPrefetched(pages []*model.Page) CrawlStepOption {
	return func(s *CrawlStep) {
		for _, p := range pages {
			if p != nil && p.Crawl != nil {
				s.prefetched[p.URL] = p.Crawl
			}
		}
	}
}

// NewCrawlStep creates a crawl step.
func NewCrawlStep(fetcher *crawler.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:    fetcher,
		prefetched: make(map[string]*model.CrawlData),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do fetches the page.
func (s *CrawlStep) Do(ctx context.Context, page *model.Page) error {
	page.Domain = crawler.Domain(page.URL)

	data, ok := s.prefetched[page.URL]
	if !ok {
		data = s.fetcher.FetchPage(ctx, page.URL).Crawl
	}
	page.Crawl = data

	if data.StatusCode == 0 && data.Error != "" {
		return fmt.Errorf("%w: %s", ErrFetch, data.Error)
	}
	return nil
}

// SearchStep attaches search-console metrics.
type SearchStep struct {
	dataset *searchconsole.Dataset
}

// NewSearchStep creates a search step backed by a loaded export.
func NewSearchStep(dataset *searchconsole.Dataset) *SearchStep {
	return &SearchStep{dataset: dataset}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search_console"
}

// Do looks the page up by its URL, then by its redirect target.
func (s *SearchStep) Do(_ context.Context, page *model.Page) error {
	page.Search = s.dataset.Lookup(page.URL)
	if page.Search == nil && page.Crawl != nil && page.Crawl.FinalURL != "" {
		page.Search = s.dataset.Lookup(page.Crawl.FinalURL)
	}
	return nil
}

// VitalsClient measures Core Web Vitals for a URL.
type VitalsClient interface {
	Run(ctx context.Context, pageURL string, strategy model.Strategy) (*model.CoreWebVitals, error)
}

// VitalsStep attaches Core Web Vitals.
type VitalsStep struct {
	client   VitalsClient
	strategy model.Strategy
	only     map[string]struct{}
}

// NewVitalsStep creates a vitals step. When only is non-empty, other URLs
// are skipped and keep nil vitals.
func NewVitalsStep(client VitalsClient, strategy model.Strategy, only []string) *VitalsStep {
	s := &VitalsStep{client: client, strategy: strategy}
	if len(only) > 0 {
		s.only = make(map[string]struct{}, len(only))
		for _, u := range only {
			s.only[u] = struct{}{}
		}
	}
	return s
}

// Name returns the step name.
func (s *VitalsStep) Name() string {
	return "pagespeed"
}

// Do measures the page.
func (s *VitalsStep) Do(ctx context.Context, page *model.Page) error {
	if s.only != nil {
		if _, ok := s.only[page.URL]; !ok {
			return nil
		}
	}
	vitals, err := s.client.Run(ctx, page.URL, s.strategy)
	if err != nil {
		return err
	}
	page.Vitals = vitals
	return nil
}
