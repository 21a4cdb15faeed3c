package model

import "testing"

// TestLookup tests the Lookup function.
func TestLookup(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		issueType string
		severity  Severity
		category  Category
	}{
		{IssueServerError, SeverityCritical, CategoryTechnical},
		{IssueBlockedByRobots, SeverityCritical, CategoryTechnical},
		{IssueMissingMetaDescription, SeverityMedium, CategoryContent},
		{IssueMissingAltText, SeverityMedium, CategoryMobile},
		{IssueSlowResponse, SeverityMedium, CategoryPerformance},
		{IssueMissingProductSchema, SeverityHigh, CategoryStructuredData},
		{IssueZeroClicks, SeverityCritical, CategoryTechnical},
	}

	for _, tc := range testCases {
		t.Run(tc.issueType, func(t *testing.T) {
			t.Parallel()
			entry, ok := Lookup(tc.issueType)
			if !ok {
				t.Fatalf("expected %q to be cataloged", tc.issueType)
			}
			if entry.Severity != tc.severity {
				t.Errorf("severity: got %v, expected %v", entry.Severity, tc.severity)
			}
			if entry.Category != tc.category {
				t.Errorf("category: got %v, expected %v", entry.Category, tc.category)
			}
			if entry.Recommendation == "" {
				t.Error("expected non-empty recommendation")
			}
		})
	}

	t.Run("unknown type falls back to default entry", func(t *testing.T) {
		t.Parallel()
		entry, ok := Lookup("Mystery Issue")
		if ok {
			t.Error("expected ok=false for unknown type")
		}
		if entry != DefaultEntry {
			t.Errorf("got %+v, expected default entry", entry)
		}
	})
}

// TestCatalogWeights tests that every cataloged weight is within [0,100].
func TestCatalogWeights(t *testing.T) {
	t.Parallel()

	for _, issueType := range IssueTypes() {
		w := SeverityWeight(issueType)
		if w < 0 || w > 100 {
			t.Errorf("%s: weight %d out of range", issueType, w)
		}
	}
	if got := SeverityWeight("Mystery Issue"); got != DefaultEntry.Weight {
		t.Errorf("got %d, expected default weight %d", got, DefaultEntry.Weight)
	}
}

// TestTeamFor tests the category to team mapping.
func TestTeamFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		category Category
		expected Team
	}{
		{CategoryTechnical, TeamTech},
		{CategoryPerformance, TeamTech},
		{CategoryStructuredData, TeamTech},
		{CategoryContent, TeamMarketing},
		{CategoryMobile, TeamDesign},
		{Category("Accessibility"), DefaultTeam},
	}

	for _, tc := range testCases {
		t.Run(string(tc.category), func(t *testing.T) {
			t.Parallel()
			if got := TeamFor(tc.category); got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestIssueKeyFingerprint tests that fingerprints are stable and distinct.
func TestIssueKeyFingerprint(t *testing.T) {
	t.Parallel()

	a := Issue{URL: "https://example.com/", Type: IssueMissingTitle}.Key()
	b := Issue{URL: "https://example.com/", Type: IssueMissingH1}.Key()

	if a.Fingerprint() != a.Fingerprint() {
		t.Error("expected fingerprint to be stable")
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("expected different keys to have different fingerprints")
	}
	if len(a.Fingerprint()) != 32 {
		t.Errorf("got fingerprint length %d, expected 32", len(a.Fingerprint()))
	}
}
