package audit

import (
	"testing"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// TestHealthScore tests the deduction arithmetic and the floor at zero.
func TestHealthScore(t *testing.T) {
	t.Parallel()

	deductions := config.DefaultScoring().Health
	issuesOf := func(sev model.Severity, n int) []model.Issue {
		issues := make([]model.Issue, n)
		for i := range issues {
			issues[i].Severity = sev
		}
		return issues
	}

	testCases := []struct {
		name   string
		issues []model.Issue
		want   int
	}{
		{name: "no issues is perfect", issues: nil, want: 100},
		{name: "one of each severity", issues: []model.Issue{
			{Severity: model.SeverityCritical},
			{Severity: model.SeverityHigh},
			{Severity: model.SeverityMedium},
			{Severity: model.SeverityLow},
		}, want: 82},
		{name: "score never goes below zero", issues: issuesOf(model.SeverityCritical, 11), want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := HealthScore(tc.issues, deductions); got != tc.want {
				t.Errorf("HealthScore() = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestHealthScoreIsMonotonic tests that adding an issue never raises the score.
func TestHealthScoreIsMonotonic(t *testing.T) {
	t.Parallel()

	deductions := config.DefaultScoring().Health
	var issues []model.Issue
	prev := HealthScore(issues, deductions)
	for i := range 40 {
		issues = append(issues, model.Issue{Severity: model.Severities[i%len(model.Severities)]})
		got := HealthScore(issues, deductions)
		if got > prev {
			t.Fatalf("score rose from %d to %d after issue %d", prev, got, i)
		}
		prev = got
	}
}

// TestGrade tests the grade boundaries.
func TestGrade(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		score int
		want  string
	}{
		{100, "A+"}, {90, "A+"}, {89, "A"}, {80, "A"}, {79, "B"},
		{70, "B"}, {69, "C"}, {60, "C"}, {59, "D"}, {0, "D"},
	}
	for _, tc := range testCases {
		if got := Grade(tc.score); got != tc.want {
			t.Errorf("Grade(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

// TestGroupByTeam tests team totals, ordering and omission of empty teams.
func TestGroupByTeam(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		{Type: "a", Team: model.TeamMarketing, Severity: model.SeverityHigh, ImpactScore: 300},
		{Type: "b", Team: model.TeamTech, Severity: model.SeverityCritical, ImpactScore: 200},
		{Type: "c", Team: model.TeamMarketing, Severity: model.SeverityLow, ImpactScore: 100},
	}

	groups := GroupByTeam(issues)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Team != model.TeamTech || groups[1].Team != model.TeamMarketing {
		t.Errorf("unexpected group order: %s, %s", groups[0].Team, groups[1].Team)
	}

	marketing := groups[1]
	if marketing.Total != 2 || marketing.High != 1 || marketing.Critical != 0 {
		t.Errorf("unexpected marketing counts: %+v", marketing)
	}
	if marketing.AverageImpact != 200 {
		t.Errorf("average impact = %v, want 200", marketing.AverageImpact)
	}
	if marketing.PriorityScore != 1*5+2 {
		t.Errorf("priority score = %d, want 7", marketing.PriorityScore)
	}
	if marketing.Issues[0].Type != "a" {
		t.Error("expected issues to keep ranking order")
	}
	if groups[0].PriorityScore != 10+1 {
		t.Errorf("tech priority score = %d, want 11", groups[0].PriorityScore)
	}
	if marketing.Name == "" {
		t.Error("expected display name to be set")
	}
}
