package jira

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/seoaudit/internal/model"
)

// Issue type names used by the exporter.
const (
	IssueTypeEpic = "Epic"
	IssueTypeTask = "Task"
)

// Jira priority names.
const (
	PriorityHighest = "Highest"
	PriorityHigh    = "High"
	PriorityMedium  = "Medium"
	PriorityLow     = "Low"
)

// LabelAudit is attached to every exported ticket.
const LabelAudit = "seo-audit"

// Ticket is one Jira issue to create. Description is Markdown.
type Ticket struct {
	// Team is empty for the epic.
	Team        model.Team `json:"team,omitempty"`
	IssueType   string     `json:"issue_type"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Labels      []string   `json:"labels"`
	// EpicName is the short epic name, set on the epic only.
	EpicName string `json:"epic_name,omitempty"`
}

// TicketSet is the epic for an audit and one task per team with issues.
type TicketSet struct {
	Epic  Ticket   `json:"epic"`
	Tasks []Ticket `json:"tasks"`
}

var teamLabels = map[model.Team][]string{
	model.TeamTech:      {"tech-team", "seo-tech", "backend"},
	model.TeamMarketing: {"marketing-team", "seo-content", "content"},
	model.TeamDesign:    {"design-team", "ux-team", "frontend"},
}

var teamActions = map[model.Team][]string{
	model.TeamTech: {
		"Review server response times and fix HTTP errors",
		"Implement proper canonical URL tags",
		"Add missing structured data (schema markup)",
		"Review robots meta settings",
		"Optimize page load times and resource loading",
	},
	model.TeamMarketing: {
		"Rewrite generic or duplicate title tags",
		"Create unique, compelling meta descriptions",
		"Audit thin content and expand where needed",
		"Optimize high-impression pages with poor CTR",
	},
	model.TeamDesign: {
		"Add alt text to all images",
		"Review mobile usability and responsive design",
		"Improve user experience on high-traffic pages",
		"Compress images and optimize visual assets",
	},
}

// TeamLabels returns the labels for a team's task.
func TeamLabels(team model.Team) []string {
	return append([]string(nil), teamLabels[team]...)
}

// PriorityFor maps an issue severity to a Jira priority.
func PriorityFor(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return PriorityHighest
	case model.SeverityHigh:
		return PriorityHigh
	case model.SeverityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// OverallPriority is the epic priority for an audit summary.
func OverallPriority(s model.Summary) string {
	switch {
	case s.CriticalCount > 5:
		return PriorityHighest
	case s.CriticalCount > 0 || s.HighCount > 10:
		return PriorityHigh
	case s.HighCount > 0:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// teamPriority maps the most severe issue of a team.
func teamPriority(ts model.TeamSummary) string {
	top := model.SeverityLow
	for _, issue := range ts.Issues {
		if issue.Severity.Rank() < top.Rank() {
			top = issue.Severity
		}
	}
	return PriorityFor(top)
}

// BuildTickets turns a report into an epic and per-team tasks.
// Teams without issues get no task.
func BuildTickets(report *model.AuditReport) *TicketSet {
	date := report.GeneratedAt.Format("2006-01-02")
	dateLabel := report.GeneratedAt.Format("20060102")

	set := &TicketSet{
		Epic: Ticket{
			IssueType:   IssueTypeEpic,
			Summary:     fmt.Sprintf("SEO Audit Results - %s (%d Issues Found)", date, report.Summary.TotalIssues),
			Description: epicDescription(report, date),
			Priority:    OverallPriority(report.Summary),
			Labels:      []string{LabelAudit, "score-" + strconv.Itoa(report.HealthScore), dateLabel},
			EpicName:    "SEO-AUDIT-" + date,
		},
		Tasks: make([]Ticket, 0, len(report.Teams)),
	}

	for _, ts := range report.Teams {
		if ts.Total == 0 {
			continue
		}
		labels := append(TeamLabels(ts.Team), LabelAudit, dateLabel)
		set.Tasks = append(set.Tasks, Ticket{
			Team:        ts.Team,
			IssueType:   IssueTypeTask,
			Summary:     fmt.Sprintf("%s: %d SEO Issues - %s", ts.Name, ts.Total, date),
			Description: teamDescription(ts),
			Priority:    teamPriority(ts),
			Labels:      labels,
		})
	}
	return set
}

func epicDescription(report *model.AuditReport, date string) string {
	var sb strings.Builder
	md := markdown.NewMarkdown(&sb)
	s := report.Summary

	md.H1("SEO Audit Results - " + date)
	md.PlainText("")
	md.H2("Overall Health Score")
	md.PlainTextf("**Health Score: %d/100 (%s)**", report.HealthScore, report.Grade)
	md.PlainText("")
	md.H2("Issues Breakdown")
	md.BulletList(
		fmt.Sprintf("**Critical Issues:** %d", s.CriticalCount),
		fmt.Sprintf("**High Issues:** %d", s.HighCount),
		fmt.Sprintf("**Medium Issues:** %d", s.MediumCount),
		fmt.Sprintf("**Low Issues:** %d", s.LowCount),
		fmt.Sprintf("**Total Issues:** %d", s.TotalIssues),
		fmt.Sprintf("**Pages Audited:** %d", report.PagesAudited),
	)
	md.PlainText("")

	md.H2("Strategic Insights")
	in := report.Insights
	if len(in.HighPriorityPages) == 0 && len(in.CriticalBusinessImpact) == 0 {
		md.PlainText("*All pages performing within acceptable parameters.*")
	} else {
		md.BulletList(
			fmt.Sprintf("**%d high-priority pages** have SEO issues", len(in.HighPriorityPages)),
			fmt.Sprintf("**%d critical issues** on business-critical pages", len(in.CriticalBusinessImpact)),
			fmt.Sprintf("**%d search opportunities**", in.SearchOpportunities),
		)
	}
	md.PlainText("")

	md.H2("Team Assignments")
	if len(report.Teams) == 0 {
		md.PlainText("*No issues to assign.*")
	} else {
		items := make([]string, 0, len(report.Teams))
		for _, ts := range report.Teams {
			items = append(items, fmt.Sprintf("**%s**: %s - %d issues", ts.Name, urgency(ts), ts.Total))
		}
		md.BulletList(items...)
	}
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("*Individual team tickets contain detailed issue breakdowns and recommendations.*")

	return md.String()
}

func urgency(ts model.TeamSummary) string {
	switch {
	case ts.Critical > 0:
		return "URGENT"
	case ts.High > 0:
		return "HIGH PRIORITY"
	default:
		return "MEDIUM PRIORITY"
	}
}

func teamDescription(ts model.TeamSummary) string {
	var sb strings.Builder
	md := markdown.NewMarkdown(&sb)

	md.H1(ts.Name + " - SEO Issues")
	md.PlainText("")
	md.H2("Team Responsibility")
	md.PlainText(ts.Description)
	md.PlainText("")
	md.H2("Issue Summary")
	md.BulletList(
		fmt.Sprintf("**Total Issues:** %d", ts.Total),
		fmt.Sprintf("**Critical:** %d", ts.Critical),
		fmt.Sprintf("**High:** %d", ts.High),
		fmt.Sprintf("**Average Impact Score:** %.2f", ts.AverageImpact),
		fmt.Sprintf("**Priority Score:** %d", ts.PriorityScore),
	)
	md.PlainText("")

	md.H2("Issues to Fix")
	md.PlainText("")
	for i, issue := range ts.Issues {
		md.H3(fmt.Sprintf("%d. %s (%s)", i+1, issue.Type, issue.Severity))
		md.PlainTextf("**URL:** `%s`", issue.URL)
		md.PlainTextf("**Impact Score:** %.2f", issue.ImpactScore)
		md.PlainTextf("**Category:** %s", issue.Category)
		md.PlainText("")
		md.PlainTextf("**Issue:** %s", issue.Description)
		md.PlainText("")
		md.PlainTextf("**Recommendation:** %s", issue.Recommendation)
		md.PlainText("")
	}

	if actions := teamActions[ts.Team]; len(actions) > 0 {
		md.H2("Action Items")
		md.BulletList(actions...)
		md.PlainText("")
	}
	return md.String()
}
