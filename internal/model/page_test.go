package model

import (
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/blake2b"
)

// TestPageHasData tests the HasData method.
func TestPageHasData(t *testing.T) {
	t.Parallel()

	t.Run("page without sources has no data", func(t *testing.T) {
		t.Parallel()
		p := &Page{URL: "https://example.com/"}
		if p.HasData() {
			t.Error("expected HasData to be false")
		}
		if p.Document() != nil {
			t.Error("expected nil document")
		}
	})

	t.Run("search metrics alone count as data", func(t *testing.T) {
		t.Parallel()
		p := &Page{URL: "https://example.com/", Search: &SearchMetrics{Impressions: 10}}
		if !p.HasData() {
			t.Error("expected HasData to be true")
		}
	})
}

// TestCrawlDataIsHTML tests the IsHTML method.
func TestCrawlDataIsHTML(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.contentType, func(t *testing.T) {
			t.Parallel()
			c := &CrawlData{ContentType: tc.contentType}
			if c.IsHTML() != tc.expected {
				t.Errorf("got %v, expected %v", c.IsHTML(), tc.expected)
			}
		})
	}
}

// TestCrawlDataComputeHash tests the ComputeHash method.
func TestCrawlDataComputeHash(t *testing.T) {
	t.Parallel()

	body := []byte("<html></html>")
	sum := blake2b.Sum256(body)

	c := &CrawlData{}
	c.ComputeHash(body)
	if c.Hash != hex.EncodeToString(sum[:]) {
		t.Errorf("got hash %q, expected the BLAKE2b-256 digest of the body", c.Hash)
	}

	c.ComputeHash(nil)
	if c.Hash != "" {
		t.Error("expected empty hash for empty body")
	}
}

// TestDocumentNoindex tests robots directive parsing.
func TestDocumentNoindex(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		robots   string
		expected bool
	}{
		{"noindex, nofollow", true},
		{"NOINDEX", true},
		{"none", true},
		{"index, follow", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.robots, func(t *testing.T) {
			t.Parallel()
			d := &Document{Robots: tc.robots}
			if d.Noindex() != tc.expected {
				t.Errorf("got %v, expected %v", d.Noindex(), tc.expected)
			}
		})
	}
}

// TestStructuredDataHasType tests schema type matching.
func TestStructuredDataHasType(t *testing.T) {
	t.Parallel()

	sd := StructuredData{JSONLDBlocks: 1, Types: []string{"Product", "BreadcrumbList"}}
	if !sd.Present() {
		t.Error("expected structured data to be present")
	}
	if !sd.HasType("product") {
		t.Error("expected case-insensitive match for Product")
	}
	if sd.HasType("Organization") {
		t.Error("did not expect Organization")
	}
}
