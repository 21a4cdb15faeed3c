package crawler

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrSitemapStatus is returned when a sitemap responds with a non-2xx status.
	ErrSitemapStatus = errors.New("unexpected sitemap status")

	// ErrSitemapFormat is returned when a document is neither a urlset nor a sitemapindex.
	ErrSitemapFormat = errors.New("unrecognized sitemap format")
)

// maxSitemapDepth bounds how many sitemap indexes may be nested.
const maxSitemapDepth = 3

type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// SitemapURLs reads the page URLs listed in a sitemap, following sitemap
// indexes. It stops once limit URLs are collected; limit <= 0 means no limit.
// Duplicate URLs are dropped and document order is kept.
func (f *Fetcher) SitemapURLs(ctx context.Context, sitemapURL string, limit int) ([]string, error) {
	urls := make([]string, 0)
	seen := make(map[string]struct{})
	if err := f.readSitemap(ctx, sitemapURL, limit, 0, seen, &urls); err != nil {
		return urls, err
	}
	return urls, nil
}

func (f *Fetcher) readSitemap(ctx context.Context, sitemapURL string, limit, depth int, seen map[string]struct{}, urls *[]string) error {
	if depth > maxSitemapDepth {
		f.logger.Warn("sitemap index nested too deeply", "url", sitemapURL)
		return nil
	}

	doc, err := f.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		return err
	}

	switch doc.XMLName.Local {
	case "urlset":
		for _, u := range doc.URLs {
			loc := strings.TrimSpace(u.Loc)
			if loc == "" {
				continue
			}
			if _, dup := seen[loc]; dup {
				continue
			}
			seen[loc] = struct{}{}
			*urls = append(*urls, loc)
			if limit > 0 && len(*urls) >= limit {
				return nil
			}
		}
	case "sitemapindex":
		for _, s := range doc.Sitemaps {
			loc := strings.TrimSpace(s.Loc)
			if loc == "" {
				continue
			}
			if err := f.readSitemap(ctx, loc, limit, depth+1, seen, urls); err != nil {
				return err
			}
			if limit > 0 && len(*urls) >= limit {
				return nil
			}
		}
	default:
		return fmt.Errorf("%w: <%s> in %s", ErrSitemapFormat, doc.XMLName.Local, sitemapURL)
	}
	return nil
}

func (f *Fetcher) fetchSitemap(ctx context.Context, sitemapURL string) (*sitemapDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sitemap request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrSitemapStatus, sitemapURL, resp.StatusCode)
	}

	var doc sitemapDocument
	if err := xml.NewDecoder(io.LimitReader(resp.Body, f.maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap %s: %w", sitemapURL, err)
	}
	f.logger.Debug("read sitemap", "url", sitemapURL, "urls", len(doc.URLs), "sitemaps", len(doc.Sitemaps))
	return &doc, nil
}
