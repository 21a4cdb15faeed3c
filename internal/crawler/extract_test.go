package crawler

import (
	"slices"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>
    Blue Running Shoes | Example
  </title>
  <meta name="Description" content=" Lightweight shoes for trail and road. ">
  <meta name="robots" content="NOINDEX, follow">
  <meta name="viewport" content="width=device-width">
  <link rel="alternate stylesheet" href="/alt.css">
  <link rel="Canonical" href="https://example.com/products/blue">
  <script type="application/ld+json">
    {"@context": "https://schema.org", "@graph": [
      {"@type": "Product", "name": "Blue", "offers": {"@type": "Offer"}},
      {"@type": ["Organization", "Brand"]}
    ]}
  </script>
  <script type="application/ld+json">{ not json </script>
  <script>var words = "these are not counted";</script>
</head>
<body>
  <h1>Blue <em>Running</em> Shoes</h1>
  <h1>   </h1>
  <p>One two</p><p>three</p>
  <img src="a.png" alt="A shoe">
  <img src="b.png" alt="  ">
  <img src="c.png">
  <a href="/products/red">Red</a>
  <a href="https://www.example.com/about">About</a>
  <a href="https://partner.org/">Partner</a>
  <a href="javascript:void(0)">Nothing</a>
  <div itemscope itemtype="https://schema.org/BreadcrumbList">crumbs</div>
  <style>.x { color: red }</style>
</body>
</html>`

// TestExtract tests SEO attribute extraction from a full page.
func TestExtract(t *testing.T) {
	t.Parallel()

	doc, err := Extract(strings.NewReader(samplePage), "https://example.com/products/blue")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	testCases := []struct {
		name string
		got  any
		want any
	}{
		{name: "title is whitespace collapsed", got: doc.Title, want: "Blue Running Shoes | Example"},
		{name: "meta name is case insensitive", got: doc.MetaDescription, want: "Lightweight shoes for trail and road."},
		{name: "robots is lower-cased", got: doc.Robots, want: "noindex, follow"},
		{name: "viewport is detected", got: doc.HasViewport, want: true},
		{name: "lang is read", got: doc.Lang, want: "en"},
		{name: "canonical rel is case insensitive", got: doc.Canonical, want: "https://example.com/products/blue"},
		{name: "empty h1 is ignored", got: len(doc.H1), want: 1},
		{name: "h1 includes nested text", got: doc.H1[0], want: "Blue Running Shoes"},
		{name: "images are counted", got: doc.ImageCount, want: 3},
		{name: "blank alt counts as missing", got: doc.ImagesWithoutAlt, want: 2},
		{name: "subdomain links are internal", got: doc.InternalLinks, want: 2},
		{name: "other sites are external", got: doc.ExternalLinks, want: 1},
		{name: "json-ld blocks are counted", got: doc.StructuredData.JSONLDBlocks, want: 2},
		{name: "invalid json-ld is counted", got: doc.StructuredData.InvalidBlocks, want: 1},
		{name: "microdata items are counted", got: doc.StructuredData.MicrodataItems, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	t.Run("schema types are collected from graphs and microdata", func(t *testing.T) {
		t.Parallel()

		for _, want := range []string{"Product", "Offer", "Organization", "Brand", "BreadcrumbList"} {
			if !slices.Contains(doc.StructuredData.Types, want) {
				t.Errorf("expected type %q in %v", want, doc.StructuredData.Types)
			}
		}
	})

	t.Run("scripts and styles are not counted as words", func(t *testing.T) {
		t.Parallel()

		// Blue Running Shoes, One two, three, crumbs, and the four link texts.
		if doc.WordCount != 11 {
			t.Errorf("expected 11 words, got %d", doc.WordCount)
		}
	})
}

// TestExtractEmptyDocument tests that a bare page yields an empty document.
func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	doc, err := Extract(strings.NewReader(""), "https://example.com/")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if doc.Title != "" || doc.Canonical != "" || len(doc.H1) != 0 || doc.StructuredData.Present() {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

// TestExtractInvalidURL tests that an unparsable page URL is rejected.
func TestExtractInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := Extract(strings.NewReader("<html></html>"), "://bad"); err == nil {
		t.Error("expected error for invalid page URL")
	}
}
