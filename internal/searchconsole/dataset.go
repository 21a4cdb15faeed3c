package searchconsole

import (
	"cmp"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// Row is one page of a performance export.
type Row struct {
	URL     string
	Metrics model.SearchMetrics
}

// Dataset holds search performance per page, keyed by normalized URL.
type Dataset struct {
	rows    map[string]Row
	skipped int
}

// NewDataset builds a dataset from rows. When a URL appears more than once,
// the counts are summed and position is averaged weighted by impressions.
func NewDataset(rows []Row) *Dataset {
	d := &Dataset{rows: make(map[string]Row, len(rows))}
	for _, r := range rows {
		d.add(r)
	}
	return d
}

func (d *Dataset) add(r Row) {
	key := NormalizeURL(r.URL)
	if key == "" {
		d.skipped++
		return
	}
	existing, ok := d.rows[key]
	if !ok {
		d.rows[key] = r
		return
	}

	a, b := existing.Metrics, r.Metrics
	merged := model.SearchMetrics{
		Impressions: a.Impressions + b.Impressions,
		Clicks:      a.Clicks + b.Clicks,
	}
	if merged.Impressions > 0 {
		merged.CTR = float64(merged.Clicks) / float64(merged.Impressions)
		merged.Position = (a.Position*float64(a.Impressions) + b.Position*float64(b.Impressions)) / float64(merged.Impressions)
	}
	existing.Metrics = merged
	d.rows[key] = existing
}

// Lookup returns the metrics for a page, or nil when the export has no row for it.
// The returned value is a copy.
func (d *Dataset) Lookup(rawURL string) *model.SearchMetrics {
	if d == nil {
		return nil
	}
	r, ok := d.rows[NormalizeURL(rawURL)]
	if !ok {
		return nil
	}
	m := r.Metrics
	return &m
}

// Len returns the number of distinct pages.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Skipped returns the number of rows that were dropped as unusable.
func (d *Dataset) Skipped() int {
	if d == nil {
		return 0
	}
	return d.skipped
}

// TopURLs returns up to n page URLs ordered by impressions, highest first.
// n <= 0 returns every URL.
func (d *Dataset) TopURLs(n int) []string {
	if d == nil {
		return nil
	}
	rows := slices.Collect(maps.Values(d.rows))
	slices.SortFunc(rows, func(x, y Row) int {
		if c := cmp.Compare(y.Metrics.Impressions, x.Metrics.Impressions); c != 0 {
			return c
		}
		return cmp.Compare(x.URL, y.URL)
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	urls := make([]string, len(rows))
	for i, r := range rows {
		urls[i] = r.URL
	}
	return urls
}

// NormalizeURL returns the key used to match export rows with crawled pages.
// Scheme and host are lower-cased, the fragment is dropped and a trailing
// slash is ignored except on the root path. Unparsable input yields "".
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}
