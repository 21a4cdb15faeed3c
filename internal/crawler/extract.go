package crawler

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/net/html"
)

// Extract parses an HTML page and returns its SEO attributes.
// pageURL is used to tell internal links from external ones.
func Extract(content io.Reader, pageURL string) (*model.Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &model.Document{
		Title: collapseSpace(doc.Find("title").First().Text()),
		H1:    make([]string, 0),
	}
	d.Lang, _ = doc.Find("html").First().Attr("lang")

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "description":
			if d.MetaDescription == "" {
				d.MetaDescription = strings.TrimSpace(content)
			}
		case "robots":
			if d.Robots == "" {
				d.Robots = strings.ToLower(strings.TrimSpace(content))
			}
		case "viewport":
			d.HasViewport = true
		}
	})

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpace(s.Text()); text != "" {
			d.H1 = append(d.H1, text)
		}
	})

	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !slices.Contains(strings.Fields(strings.ToLower(rel)), "canonical") {
			return true
		}
		href, _ := s.Attr("href")
		d.Canonical = strings.TrimSpace(href)
		return false
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		d.ImageCount++
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			d.ImagesWithoutAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveReference(base, href)
		if resolved == "" {
			return
		}
		if sameSite(base, resolved) {
			d.InternalLinks++
		} else {
			d.ExternalLinks++
		}
	})

	d.StructuredData = extractStructuredData(doc)

	for _, n := range doc.Find("body").Nodes {
		d.WordCount += countWords(n)
	}

	return d, nil
}

// extractStructuredData counts JSON-LD blocks and microdata items and
// collects the schema.org types they declare.
func extractStructuredData(doc *goquery.Document) model.StructuredData {
	var sd model.StructuredData
	types := make([]string, 0)
	addType := func(t string) {
		t = schemaTypeName(t)
		if t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			return
		}
		sd.JSONLDBlocks++
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			sd.InvalidBlocks++
			return
		}
		collectJSONLDTypes(v, addType)
	})

	doc.Find("[itemscope]").Each(func(_ int, s *goquery.Selection) {
		sd.MicrodataItems++
		if itemType, ok := s.Attr("itemtype"); ok {
			for t := range strings.FieldsSeq(itemType) {
				addType(t)
			}
		}
	})

	if len(types) > 0 {
		sd.Types = types
	}
	return sd
}

// collectJSONLDTypes walks a decoded JSON-LD value and reports every @type,
// including those nested in @graph arrays and child objects.
func collectJSONLDTypes(v any, add func(string)) {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			collectJSONLDTypes(item, add)
		}
	case map[string]any:
		switch t := x["@type"].(type) {
		case string:
			add(t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
		for _, key := range slices.Sorted(maps.Keys(x)) {
			if key == "@type" || key == "@context" {
				continue
			}
			collectJSONLDTypes(x[key], add)
		}
	}
}

// schemaTypeName strips a schema.org vocabulary prefix:
// "https://schema.org/Product" becomes "Product".
func schemaTypeName(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.LastIndexAny(t, "/#"); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// countWords counts whitespace-separated words in visible text nodes.
// Adjacent elements never merge their words.
func countWords(n *html.Node) int {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return 0
		}
	}
	if n.Type == html.TextNode {
		return len(strings.Fields(n.Data))
	}
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countWords(c)
	}
	return count
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
