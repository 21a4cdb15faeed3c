// Package crawler collects the on-page data of an audit.
//
// # Components
//
//   - Fetcher: downloads one URL and records status, timing, size and hash.
//     HTML bodies of successful responses are handed to Extract.
//   - Extract: reads title, meta tags, headings, canonical, images, links and
//     structured data from a page with goquery.
//   - ScanLinks: streams a page and lists its links for discovery.
//   - Spider: breadth-first discovery of one host from a start URL.
//   - SitemapURLs: URL discovery from sitemap.xml, following sitemap indexes.
//
// # Failures
//
// A fetch never fails as a whole. Network errors, error statuses and
// unreadable bodies still produce CrawlData with Error set and no Document,
// so the page is reported instead of silently disappearing.
//
// # Usage
//
//	fetcher := crawler.NewFetcher(client, crawler.WithUserAgent(ua))
//	spider := crawler.NewSpider(fetcher, crawler.WithMaxPages(50))
//	pages, err := spider.Crawl(ctx, "https://example.com/")
package crawler
