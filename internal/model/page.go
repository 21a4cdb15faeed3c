package model

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Page is the immutable snapshot of everything known about one URL at audit time.
//
// Each source is optional and may fail independently, so every source is a
// pointer. A nil source means "no data", which detection rules treat as
// "cannot evaluate" rather than as an issue.
type Page struct {
	// URL is the unique key of the page.
	URL string `json:"url"`

	// Domain is the host the page belongs to (the regional property).
	Domain string `json:"domain,omitempty"`

	// Type is set by the classifier during aggregation.
	Type PageType `json:"page_type,omitempty"`

	// Crawl holds the HTTP fetch result and parsed on-page attributes.
	Crawl *CrawlData `json:"crawl,omitempty"`

	// Search holds search-console performance for the page.
	Search *SearchMetrics `json:"search,omitempty"`

	// Vitals holds Core Web Vitals measured by the performance source.
	Vitals *CoreWebVitals `json:"vitals,omitempty"`

	// Mobile holds mobile-usability flags.
	Mobile *MobileUsability `json:"mobile,omitempty"`
}

// HasData reports whether any source produced data for the page.
func (p *Page) HasData() bool {
	return p.Crawl != nil || p.Search != nil || p.Vitals != nil || p.Mobile != nil
}

// Document returns the parsed document, or nil when the page was not parsed.
func (p *Page) Document() *Document {
	if p.Crawl == nil {
		return nil
	}
	return p.Crawl.Document
}

// MaxPageSize is the maximum number of body bytes the crawler reads.
// Larger bodies are truncated, but PageSize still reports the full length when known.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// CrawlData is the crawler's best-effort result for a URL.
// A fetch that failed part-way still yields CrawlData with Error set.
type CrawlData struct {
	// StatusCode is the HTTP status code, or 0 when no response was received.
	StatusCode int `json:"status_code"`

	// ResponseTime is the time until the full body was read.
	ResponseTime time.Duration `json:"response_time"`

	// PageSize is the body size in bytes.
	PageSize int64 `json:"page_size"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// FinalURL is the URL after redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Hash is the BLAKE2b-256 hash of the body, used for change detection.
	Hash string `json:"hash,omitempty"`

	// Error is the fetch error message, if any.
	Error string `json:"error,omitempty"`

	// Document is nil when the body was not HTML or could not be read.
	Document *Document `json:"document,omitempty"`
}

// HasStatus reports whether an HTTP status was received.
func (c *CrawlData) HasStatus() bool {
	return c != nil && c.StatusCode > 0
}

// IsHTML returns true if the content type indicates HTML.
func (c *CrawlData) IsHTML() bool {
	ct := strings.ToLower(c.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// ComputeHash sets Hash from the body bytes.
func (c *CrawlData) ComputeHash(body []byte) {
	if len(body) == 0 {
		c.Hash = ""
		return
	}
	hash := blake2b.Sum256(body)
	c.Hash = hex.EncodeToString(hash[:])
}

// Document holds the SEO-relevant attributes extracted from an HTML page.
type Document struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	H1              []string `json:"h1,omitempty"`

	// Canonical is the href of <link rel="canonical">, empty when absent.
	Canonical string `json:"canonical,omitempty"`

	// Robots is the lower-cased content of <meta name="robots">.
	Robots string `json:"robots,omitempty"`

	// HasViewport is true when <meta name="viewport"> is present.
	HasViewport bool `json:"has_viewport"`

	// Lang is the <html lang> attribute.
	Lang string `json:"lang,omitempty"`

	WordCount        int `json:"word_count"`
	ImageCount       int `json:"image_count"`
	ImagesWithoutAlt int `json:"images_without_alt"`
	InternalLinks    int `json:"internal_links"`
	ExternalLinks    int `json:"external_links"`

	StructuredData StructuredData `json:"structured_data"`

	// DuplicateTitle is set during aggregation when another page shares the title.
	DuplicateTitle bool `json:"duplicate_title,omitempty"`

	// DuplicateMetaDescription is set during aggregation when another page
	// shares the meta description.
	DuplicateMetaDescription bool `json:"duplicate_meta_description,omitempty"`
}

// Noindex reports whether the robots directives exclude the page from the index.
func (d *Document) Noindex() bool {
	for directive := range strings.SplitSeq(d.Robots, ",") {
		switch strings.TrimSpace(strings.ToLower(directive)) {
		case "noindex", "none":
			return true
		}
	}
	return false
}

// StructuredData summarizes the schema.org markup on a page.
type StructuredData struct {
	// JSONLDBlocks counts <script type="application/ld+json"> blocks.
	JSONLDBlocks int `json:"json_ld_blocks"`

	// InvalidBlocks counts JSON-LD blocks that failed to parse.
	InvalidBlocks int `json:"invalid_blocks"`

	// MicrodataItems counts elements carrying itemscope.
	MicrodataItems int `json:"microdata_items"`

	// Types lists the schema.org @type values found, deduplicated.
	Types []string `json:"types,omitempty"`
}

// Present reports whether any structured data was found.
func (s StructuredData) Present() bool {
	return s.JSONLDBlocks > 0 || s.MicrodataItems > 0
}

// HasType reports whether the schema type was declared, case-insensitively.
func (s StructuredData) HasType(schemaType string) bool {
	for _, t := range s.Types {
		if strings.EqualFold(t, schemaType) {
			return true
		}
	}
	return false
}

// SearchMetrics is search-console performance for a page over the reporting window.
type SearchMetrics struct {
	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`

	// CTR is the click-through rate as a fraction (0.025 means 2.5%).
	CTR float64 `json:"ctr"`

	// Position is the average ranking position, 1 being the top.
	Position float64 `json:"position"`
}

// ClickThroughRate returns the reported CTR, or clicks over impressions
// when no CTR was reported.
func (m *SearchMetrics) ClickThroughRate() float64 {
	if m.CTR > 0 || m.Impressions == 0 {
		return m.CTR
	}
	return float64(m.Clicks) / float64(m.Impressions)
}

// Strategy is the device profile a performance measurement was taken with.
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

// CoreWebVitals holds page-performance metrics. Nil metrics were not measured.
type CoreWebVitals struct {
	Strategy Strategy `json:"strategy,omitempty"`

	// LCP is Largest Contentful Paint.
	LCP *time.Duration `json:"lcp,omitempty"`

	// INP is Interaction to Next Paint.
	INP *time.Duration `json:"inp,omitempty"`

	// CLS is Cumulative Layout Shift.
	CLS *float64 `json:"cls,omitempty"`

	// FCP is First Contentful Paint.
	FCP *time.Duration `json:"fcp,omitempty"`

	// TTFB is Time to First Byte.
	TTFB *time.Duration `json:"ttfb,omitempty"`

	// PerformanceScore is the lab performance score in [0,100].
	PerformanceScore *float64 `json:"performance_score,omitempty"`

	// FieldData is true when metrics come from real-user data rather than lab runs.
	FieldData bool `json:"field_data"`
}

// MobileUsability holds mobile-usability problems reported for a page.
type MobileUsability struct {
	Issues []string `json:"issues,omitempty"`
}

// Flagged reports whether any mobile-usability problem was reported.
func (m *MobileUsability) Flagged() bool {
	return m != nil && len(m.Issues) > 0
}
