package report

import (
	"strconv"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// Health directions between two audits.
const (
	DirectionImproved  = "improved"
	DirectionWorsened  = "worsened"
	DirectionUnchanged = "unchanged"
)

// Snapshot summarizes one side of a comparison.
type Snapshot struct {
	AuditID       string    `json:"audit_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	PagesAudited  int       `json:"pages_audited"`
	HealthScore   int       `json:"health_score"`
	Grade         string    `json:"grade"`
	TotalIssues   int       `json:"total_issues"`
	CriticalCount int       `json:"critical_count"`
	HighCount     int       `json:"high_count"`
	MediumCount   int       `json:"medium_count"`
	LowCount      int       `json:"low_count"`
}

func newSnapshot(r *model.AuditReport) Snapshot {
	return Snapshot{
		AuditID:       r.ID,
		GeneratedAt:   r.GeneratedAt,
		PagesAudited:  r.PagesAudited,
		HealthScore:   r.HealthScore,
		Grade:         r.Grade,
		TotalIssues:   len(r.Issues),
		CriticalCount: r.Summary.CriticalCount,
		HighCount:     r.Summary.HighCount,
		MediumCount:   r.Summary.MediumCount,
		LowCount:      r.Summary.LowCount,
	}
}

// Comparison is the difference between two audits of the same site.
type Comparison struct {
	Site     string   `json:"site"`
	Previous Snapshot `json:"previous"`
	Current  Snapshot `json:"current"`

	// NewIssues are in the current audit only, in its ranking order.
	NewIssues []model.Issue `json:"new_issues,omitempty"`

	// ResolvedIssues are in the previous audit only, in its ranking order.
	ResolvedIssues []model.Issue `json:"resolved_issues,omitempty"`

	UnchangedCount int `json:"unchanged_count"`

	// HealthDelta is the current health score minus the previous one.
	HealthDelta int    `json:"health_delta"`
	Direction   string `json:"direction"`
}

// Compare diffs two audits by issue key.
func Compare(site string, previous, current *model.AuditReport) *Comparison {
	c := &Comparison{
		Site:     site,
		Previous: newSnapshot(previous),
		Current:  newSnapshot(current),
	}

	before := make(map[model.IssueKey]struct{}, len(previous.Issues))
	for _, issue := range previous.Issues {
		before[issue.Key()] = struct{}{}
	}
	after := make(map[model.IssueKey]struct{}, len(current.Issues))
	for _, issue := range current.Issues {
		after[issue.Key()] = struct{}{}
		if _, ok := before[issue.Key()]; ok {
			c.UnchangedCount++
		} else {
			c.NewIssues = append(c.NewIssues, issue)
		}
	}
	for _, issue := range previous.Issues {
		if _, ok := after[issue.Key()]; !ok {
			c.ResolvedIssues = append(c.ResolvedIssues, issue)
		}
	}

	c.HealthDelta = current.HealthScore - previous.HealthScore
	switch {
	case c.HealthDelta > 0:
		c.Direction = DirectionImproved
	case c.HealthDelta < 0:
		c.Direction = DirectionWorsened
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

func formatDirection(direction string) string {
	switch direction {
	case DirectionImproved:
		return "IMPROVED (health increased)"
	case DirectionWorsened:
		return "WORSENED (health decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with its sign.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
