package audit

import (
	"math"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// HealthScore returns 100 minus the severity deductions of all issues, floored at 0.
func HealthScore(issues []model.Issue, deductions config.HealthDeductions) int {
	score := 100
	for _, issue := range issues {
		score -= deductions.For(issue.Severity)
	}
	return max(0, score)
}

// Grade converts a health score to a letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	default:
		return "D"
	}
}

// GroupByTeam splits ranked issues by owning team. Teams without issues
// are omitted and the rest follow model.Teams order.
func GroupByTeam(issues []model.Issue) []model.TeamSummary {
	groups := make(map[model.Team]*model.TeamSummary)
	for _, issue := range issues {
		ts, ok := groups[issue.Team]
		if !ok {
			ts = &model.TeamSummary{
				Team:        issue.Team,
				Name:        issue.Team.DisplayName(),
				Description: issue.Team.Description(),
			}
			groups[issue.Team] = ts
		}
		ts.Issues = append(ts.Issues, issue)
		ts.Total++
		switch issue.Severity {
		case model.SeverityCritical:
			ts.Critical++
		case model.SeverityHigh:
			ts.High++
		}
		ts.AverageImpact += issue.ImpactScore
	}

	summaries := make([]model.TeamSummary, 0, len(groups))
	for _, team := range model.Teams {
		ts, ok := groups[team]
		if !ok {
			continue
		}
		ts.AverageImpact = math.Round(ts.AverageImpact/float64(ts.Total)*100) / 100
		ts.PriorityScore = ts.Critical*10 + ts.High*5 + ts.Total
		summaries = append(summaries, *ts)
	}
	return summaries
}
