package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditReport is the result of one audit run.
// It is created by the aggregator and never mutated after the run completes.
type AuditReport struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Sites lists the domains covered by the run, sorted.
	Sites []string `json:"sites"`

	// GeneratedAt is informational and never used for scoring or ordering.
	GeneratedAt time.Time `json:"generated_at"`

	// PagesAudited is the number of pages that passed validation.
	PagesAudited int `json:"pages_audited"`

	// Issues is the ranked issue list, highest impact first.
	Issues []Issue `json:"issues"`

	// HealthScore is 100 minus the severity deductions, never below 0.
	HealthScore int `json:"health_score"`

	// Grade is the letter grade for HealthScore.
	Grade string `json:"grade"`

	Summary Summary `json:"summary"`

	// Teams holds one entry per team that owns at least one issue.
	Teams []TeamSummary `json:"teams,omitempty"`

	Insights Insights `json:"insights"`

	// Skipped lists input records that could not be audited.
	Skipped []SkippedPage `json:"skipped,omitempty"`
}

// NewAuditReport creates an empty report with a fresh run ID.
func NewAuditReport(generatedAt time.Time) *AuditReport {
	return &AuditReport{
		ID:          uuid.NewString(),
		GeneratedAt: generatedAt,
		Issues:      []Issue{},
		Summary:     NewSummary(),
	}
}

// Summary holds issue counts.
type Summary struct {
	TotalIssues   int `json:"total_issues"`
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	NewCount      int `json:"new_count"`

	ByCategory map[Category]int `json:"by_category"`
	ByPageType map[PageType]int `json:"by_page_type"`
}

// NewSummary creates a Summary with initialized maps.
func NewSummary() Summary {
	return Summary{
		ByCategory: make(map[Category]int),
		ByPageType: make(map[PageType]int),
	}
}

// Add counts one issue.
func (s *Summary) Add(issue Issue) {
	s.TotalIssues++
	switch issue.Severity {
	case SeverityCritical:
		s.CriticalCount++
	case SeverityHigh:
		s.HighCount++
	case SeverityMedium:
		s.MediumCount++
	case SeverityLow:
		s.LowCount++
	}
	if issue.Status == StatusNew {
		s.NewCount++
	}
	s.ByCategory[issue.Category]++
	s.ByPageType[issue.PageType]++
}

// Count returns the number of issues with the given severity.
func (s Summary) Count(severity Severity) int {
	switch severity {
	case SeverityCritical:
		return s.CriticalCount
	case SeverityHigh:
		return s.HighCount
	case SeverityMedium:
		return s.MediumCount
	case SeverityLow:
		return s.LowCount
	default:
		return 0
	}
}

// TeamSummary groups the issues owned by one team.
type TeamSummary struct {
	Team        Team   `json:"team"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Issues keeps the report's ranking order.
	Issues []Issue `json:"issues"`

	Total         int     `json:"total_issues"`
	Critical      int     `json:"critical_issues"`
	High          int     `json:"high_issues"`
	AverageImpact float64 `json:"avg_impact"`

	// PriorityScore is critical*10 + high*5 + total.
	PriorityScore int `json:"priority_score"`
}

// Insights holds the strategic view of the audit.
type Insights struct {
	// HighPriorityPages are business-critical pages that have issues.
	HighPriorityPages []PageInsight `json:"high_priority_pages,omitempty"`

	// CriticalBusinessImpact lists the critical issues on business-critical pages.
	CriticalBusinessImpact []Issue `json:"critical_business_impact,omitempty"`

	// SearchOpportunities counts issues raised from search metrics.
	SearchOpportunities int `json:"search_opportunities"`
}

// PageInsight summarizes the issues on one page.
type PageInsight struct {
	URL           string   `json:"url"`
	PageType      PageType `json:"page_type"`
	IssueCount    int      `json:"issue_count"`
	CriticalCount int      `json:"critical_count"`
	TopImpact     float64  `json:"top_impact"`
}

// SkippedPage records an input that could not be audited.
type SkippedPage struct {
	// Index is the position of the record in the input.
	Index  int    `json:"index"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason"`
}

// TeamSummary returns the summary for the team, or nil when the team has no issues.
func (r *AuditReport) TeamSummary(team Team) *TeamSummary {
	for i := range r.Teams {
		if r.Teams[i].Team == team {
			return &r.Teams[i]
		}
	}
	return nil
}

// IssuesForURL returns the issues reported for one page, in ranking order.
func (r *AuditReport) IssuesForURL(url string) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.URL == url {
			issues = append(issues, issue)
		}
	}
	return issues
}
