package model

import (
	"maps"
	"slices"
)

// Issue types known to the catalog.
const (
	IssueServerError              = "Server Error"
	IssueClientError              = "Client Error"
	IssueBlockedByRobots          = "Blocked by Robots Meta"
	IssueMissingTitle             = "Missing Title Tag"
	IssueDuplicateTitle           = "Duplicate Title Tags"
	IssueGenericTitle             = "Generic Title Tag"
	IssueShortTitle               = "Short Title Tag"
	IssueLongTitle                = "Long Title Tag"
	IssueMissingMetaDescription   = "Missing Meta Description"
	IssueDuplicateMetaDescription = "Duplicate Meta Descriptions"
	IssueShortMetaDescription     = "Short Meta Description"
	IssueLongMetaDescription      = "Long Meta Description"
	IssueMissingH1                = "Missing H1 Tag"
	IssueMultipleH1               = "Multiple H1 Tags"
	IssueMissingCanonical         = "Missing Canonical Tag"
	IssueInvalidCanonical         = "Invalid Canonical URL"
	IssueMissingAltText           = "Images Without Alt Text"
	IssueThinContent              = "Thin Content"
	IssueMissingStructuredData    = "Missing Structured Data"
	IssueInvalidStructuredData    = "Invalid Structured Data"
	IssueMissingProductSchema     = "Missing Product Schema"
	IssueMissingOrgSchema         = "Missing Organization Schema"
	IssueMobileUsability          = "Mobile Usability Issues"
	IssueSlowResponse             = "Slow Response Time"
	IssuePoorCoreWebVitals        = "Poor Core Web Vitals"
	IssueCoreWebVitalsNeedWork    = "Core Web Vitals Need Improvement"
	IssueLargePageSize            = "Large Page Size"
	IssueInsufficientLinks        = "Insufficient Internal Links"
	IssueExcessiveExternalLinks   = "Excessive External Links"
	IssueZeroClicks               = "High Impressions Zero Clicks"
	IssueLowCTR                   = "High Impressions Low CTR"
	IssuePoorPosition             = "High Impressions Poor Position"
	IssueHighValueOpportunity     = "High Value Page Opportunity"
	IssueHighTrafficTechnical     = "High Traffic Page with Technical Issues"
)

// CatalogEntry is the static business metadata of an issue type.
type CatalogEntry struct {
	// Severity is the default severity. Rules may raise it for a specific page.
	Severity Severity
	// Weight is the business weight in [0,100] used as the score base.
	Weight int
	// Category decides the owning team.
	Category Category
	// Recommendation is the default remediation advice.
	Recommendation string
}

// DefaultEntry is returned for issue types missing from the catalog.
var DefaultEntry = CatalogEntry{
	Severity:       SeverityMedium,
	Weight:         50,
	Category:       CategoryTechnical,
	Recommendation: "Investigate the issue and assess its search impact.",
}

// DefaultTeam owns issues whose category is unknown.
const DefaultTeam = TeamTech

var catalog = map[string]CatalogEntry{
	// Technical
	IssueServerError: {
		Severity: SeverityCritical, Weight: 100, Category: CategoryTechnical,
		Recommendation: "Fix the server error so the page can be crawled and indexed.",
	},
	IssueClientError: {
		Severity: SeverityHigh, Weight: 90, Category: CategoryTechnical,
		Recommendation: "Restore the page or redirect it to a relevant live URL.",
	},
	IssueBlockedByRobots: {
		Severity: SeverityCritical, Weight: 100, Category: CategoryTechnical,
		Recommendation: "Remove the noindex directive if the page should rank.",
	},
	IssueMissingCanonical: {
		Severity: SeverityMedium, Weight: 75, Category: CategoryTechnical,
		Recommendation: "Add a self-referencing canonical tag.",
	},
	IssueInvalidCanonical: {
		Severity: SeverityHigh, Weight: 75, Category: CategoryTechnical,
		Recommendation: "Use an absolute http(s) URL in the canonical tag.",
	},
	IssueInsufficientLinks: {
		Severity: SeverityLow, Weight: 45, Category: CategoryTechnical,
		Recommendation: "Add contextual internal links to related pages.",
	},
	IssueExcessiveExternalLinks: {
		Severity: SeverityLow, Weight: 30, Category: CategoryTechnical,
		Recommendation: "Reduce outbound links or mark them nofollow where appropriate.",
	},
	IssueZeroClicks: {
		Severity: SeverityCritical, Weight: 95, Category: CategoryTechnical,
		Recommendation: "Check how the page renders in results and fix indexing or snippet problems.",
	},
	IssueHighTrafficTechnical: {
		Severity: SeverityCritical, Weight: 90, Category: CategoryTechnical,
		Recommendation: "Prioritize the technical fixes on this page; it already earns significant visibility.",
	},

	// Content
	IssueMissingTitle: {
		Severity: SeverityHigh, Weight: 95, Category: CategoryContent,
		Recommendation: "Add a unique, descriptive title tag of 30 to 70 characters.",
	},
	IssueDuplicateTitle: {
		Severity: SeverityMedium, Weight: 80, Category: CategoryContent,
		Recommendation: "Write a unique title for each page.",
	},
	IssueGenericTitle: {
		Severity: SeverityMedium, Weight: 75, Category: CategoryContent,
		Recommendation: "Replace the placeholder title with one describing the page.",
	},
	IssueShortTitle: {
		Severity: SeverityLow, Weight: 55, Category: CategoryContent,
		Recommendation: "Expand the title to at least 30 characters.",
	},
	IssueLongTitle: {
		Severity: SeverityLow, Weight: 50, Category: CategoryContent,
		Recommendation: "Shorten the title to 70 characters or fewer to avoid truncation.",
	},
	IssueMissingMetaDescription: {
		Severity: SeverityMedium, Weight: 45, Category: CategoryContent,
		Recommendation: "Add a compelling meta description of 120 to 170 characters.",
	},
	IssueDuplicateMetaDescription: {
		Severity: SeverityLow, Weight: 50, Category: CategoryContent,
		Recommendation: "Write a unique meta description for each page.",
	},
	IssueShortMetaDescription: {
		Severity: SeverityLow, Weight: 25, Category: CategoryContent,
		Recommendation: "Expand the meta description to at least 120 characters.",
	},
	IssueLongMetaDescription: {
		Severity: SeverityLow, Weight: 25, Category: CategoryContent,
		Recommendation: "Shorten the meta description to 170 characters or fewer.",
	},
	IssueMissingH1: {
		Severity: SeverityMedium, Weight: 65, Category: CategoryContent,
		Recommendation: "Add a descriptive H1 tag for page hierarchy.",
	},
	IssueMultipleH1: {
		Severity: SeverityLow, Weight: 30, Category: CategoryContent,
		Recommendation: "Use only one H1 tag per page.",
	},
	IssueThinContent: {
		Severity: SeverityMedium, Weight: 85, Category: CategoryContent,
		Recommendation: "Expand the copy to at least 300 words of useful content.",
	},
	IssueLowCTR: {
		Severity: SeverityHigh, Weight: 70, Category: CategoryContent,
		Recommendation: "Rewrite the title and meta description to earn more clicks.",
	},
	IssuePoorPosition: {
		Severity: SeverityMedium, Weight: 60, Category: CategoryContent,
		Recommendation: "Improve content depth and internal linking to climb to page one.",
	},
	IssueHighValueOpportunity: {
		Severity: SeverityMedium, Weight: 50, Category: CategoryContent,
		Recommendation: "Invest in this page; small gains in ranking yield large traffic.",
	},

	// Performance
	IssueSlowResponse: {
		Severity: SeverityMedium, Weight: 80, Category: CategoryPerformance,
		Recommendation: "Reduce server response time below 3 seconds.",
	},
	IssuePoorCoreWebVitals: {
		Severity: SeverityHigh, Weight: 95, Category: CategoryPerformance,
		Recommendation: "Optimize LCP, INP and CLS to pass the Core Web Vitals assessment.",
	},
	IssueCoreWebVitalsNeedWork: {
		Severity: SeverityMedium, Weight: 70, Category: CategoryPerformance,
		Recommendation: "Tune the failing Core Web Vitals metrics into the good range.",
	},
	IssueLargePageSize: {
		Severity: SeverityMedium, Weight: 55, Category: CategoryPerformance,
		Recommendation: "Optimize images and resources to reduce page size.",
	},

	// Mobile
	IssueMobileUsability: {
		Severity: SeverityHigh, Weight: 90, Category: CategoryMobile,
		Recommendation: "Fix viewport, tap target and font size problems on mobile.",
	},
	IssueMissingAltText: {
		Severity: SeverityMedium, Weight: 40, Category: CategoryMobile,
		Recommendation: "Add descriptive alt text to all images.",
	},

	// Structured data
	IssueMissingStructuredData: {
		Severity: SeverityLow, Weight: 50, Category: CategoryStructuredData,
		Recommendation: "Add schema.org markup in JSON-LD.",
	},
	IssueInvalidStructuredData: {
		Severity: SeverityMedium, Weight: 60, Category: CategoryStructuredData,
		Recommendation: "Fix the JSON-LD syntax so search engines can read it.",
	},
	IssueMissingProductSchema: {
		Severity: SeverityHigh, Weight: 70, Category: CategoryStructuredData,
		Recommendation: "Add Product schema with name, price and availability.",
	},
	IssueMissingOrgSchema: {
		Severity: SeverityMedium, Weight: 45, Category: CategoryStructuredData,
		Recommendation: "Add Organization schema to the homepage.",
	},
}

var categoryTeams = map[Category]Team{
	CategoryTechnical:      TeamTech,
	CategoryPerformance:    TeamTech,
	CategoryStructuredData: TeamTech,
	CategoryContent:        TeamMarketing,
	CategoryMobile:         TeamDesign,
}

// Lookup returns the catalog entry for an issue type.
// Unknown types return DefaultEntry and false.
func Lookup(issueType string) (CatalogEntry, bool) {
	entry, ok := catalog[issueType]
	if !ok {
		return DefaultEntry, false
	}
	return entry, true
}

// SeverityWeight returns the business weight of an issue type in [0,100].
func SeverityWeight(issueType string) int {
	entry, _ := Lookup(issueType)
	return entry.Weight
}

// TeamFor returns the team owning a category, or DefaultTeam for unknown categories.
func TeamFor(category Category) Team {
	if team, ok := categoryTeams[category]; ok {
		return team
	}
	return DefaultTeam
}

// IssueTypes returns every cataloged issue type in sorted order.
func IssueTypes() []string {
	return slices.Sorted(maps.Keys(catalog))
}
