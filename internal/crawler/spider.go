package crawler

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// Spider discovers the pages of a site with a breadth-first walk from a
// start URL. Only links on the start URL's host are followed.
type Spider struct {
	fetcher *Fetcher

	// maxDepth is the link distance from the start page: 0 fetches the
	// start page only.
	maxDepth int
	maxPages int
	delay    time.Duration

	// ignore and follow are glob patterns matched against the URL path.
	// When follow is set, only matching paths are queued.
	ignore []string
	follow []string

	mu   sync.Mutex
	last SpiderStats
}

// SpiderStats describes the most recent crawl.
type SpiderStats struct {
	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// URLsSeen is the number of distinct URLs queued or fetched.
	URLsSeen int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets how many links away from the start page the spider goes.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages caps the number of fetched pages.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the pause between two requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns skips paths matching any pattern, e.g. "/admin/*" or "*.pdf".
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignore = patterns
	}
}

// WithFollowPatterns restricts the crawl to paths matching at least one pattern.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.follow = patterns
	}
}

// NewSpider creates a Spider that fetches pages with fetcher.
func NewSpider(fetcher *Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		maxDepth: 5,
		maxPages: 100,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// frontier is the state of one crawl.
type frontier struct {
	host  string
	queue []queued
	seen  map[string]struct{}
}

type queued struct {
	url   string
	depth int
}

// push queues rawURL unless it was seen before.
func (f *frontier) push(rawURL string, depth int) {
	key := visitKey(rawURL)
	if _, ok := f.seen[key]; ok {
		return
	}
	f.seen[key] = struct{}{}
	f.queue = append(f.queue, queued{url: rawURL, depth: depth})
}

func (f *frontier) pop() queued {
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next
}

// Crawl walks the site from startURL and returns every fetched page,
// failed ones included, in discovery order. On cancellation the pages
// fetched so far are returned with the context error.
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		start.Scheme = "https"
	}
	if start.Host == "" {
		return nil, fmt.Errorf("invalid start URL: missing host in %q", startURL)
	}

	f := &frontier{host: start.Host, seen: make(map[string]struct{})}
	f.push(start.String(), 0)

	var pages []*model.Page
	defer func() { s.record(len(pages), len(f.seen)) }()

	for len(f.queue) > 0 && len(pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		item := f.pop()
		page, links := s.fetchPage(ctx, item.url)
		pages = append(pages, page)

		if item.depth < s.maxDepth {
			for _, link := range links {
				if s.inScope(f.host, link) {
					f.push(link, item.depth+1)
				}
			}
		}

		if s.delay > 0 && len(f.queue) > 0 && len(pages) < s.maxPages {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return pages, nil
}

// fetchPage fetches one page and returns it with the internal links of
// successful HTML responses.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*model.Page, []string) {
	data, body := s.fetcher.Fetch(ctx, pageURL)
	page := s.fetcher.newPage(pageURL, data, body)
	if page.Document() == nil {
		return page, nil
	}

	links, err := ScanLinks(bytes.NewReader(body), cmp.Or(data.FinalURL, pageURL))
	if err != nil {
		return page, nil
	}
	return page, links.Internal
}

func (s *Spider) record(visited, seen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = SpiderStats{PagesVisited: visited, URLsSeen: seen}
}

// Stats returns the statistics of the most recent crawl.
func (s *Spider) Stats() SpiderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// inScope reports whether link is on host and passes the path patterns.
// Subdomains are separate properties and are not followed.
func (s *Spider) inScope(host, link string) bool {
	u, err := url.Parse(link)
	if err != nil || !strings.EqualFold(u.Host, host) {
		return false
	}
	return s.allowedPath(u.Path)
}

// allowedPath applies the ignore patterns, then the follow patterns.
func (s *Spider) allowedPath(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, pattern := range s.ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}
	if len(s.follow) == 0 {
		return true
	}
	for _, pattern := range s.follow {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// visitKey is the deduplication key of a URL: no fragment, lower-case
// scheme and host, and "/" for an empty path.
func visitKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// matchPattern reports whether path matches a glob pattern.
//
//   - "/admin/*" matches "/admin" and everything below it
//   - "*.pdf" matches any path ending in .pdf
//   - a pattern without "/" is also tried against the last path segment
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok && (path == prefix || strings.HasPrefix(path, prefix+"/")) {
		return true
	}
	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") && strings.HasSuffix(path, ext) {
		return true
	}
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && matched
	}
	return false
}
