package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// DefaultMaxIssues is the number of issues the text report lists.
const DefaultMaxIssues = 20

const ruleWidth = 70

// SimpleWriter outputs plain-text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	verbose   bool
	maxIssues int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every issue with its description and recommendation.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaxIssues limits the issue list. Zero or less lists every issue.
func WithMaxIssues(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxIssues = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxIssues:  DefaultMaxIssues,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeTeams(&sb, report)
	w.writeIssues(&sb, report)
	w.writeInsights(&sb, report)
	w.writeSkipped(&sb, report)
	writeRule(&sb, "=")

	return io.WriteString(w.output, sb.String())
}

func writeRule(sb *strings.Builder, char string) {
	sb.WriteString(strings.Repeat(char, ruleWidth))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	writeRule(sb, "-")
	sb.WriteString(title)
	sb.WriteString("\n")
	writeRule(sb, "-")
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	writeRule(sb, "=")
	sb.WriteString("                          SEO AUDIT REPORT\n")
	writeRule(sb, "=")
	sb.WriteString("\n")

	sites := strings.Join(report.Sites, ", ")
	if sites == "" {
		sites = "-"
	}
	fmt.Fprintf(sb, "Sites:          %s\n", sites)
	fmt.Fprintf(sb, "Audit ID:       %s\n", report.ID)
	fmt.Fprintf(sb, "Generated:      %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Audited:  %d\n", report.PagesAudited)
	fmt.Fprintf(sb, "Health Score:   %d/100 (%s)\n\n", report.HealthScore, report.Grade)
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AuditReport) {
	writeSection(sb, "SEVERITY SUMMARY")

	s := report.Summary
	fmt.Fprintf(sb, "  CRITICAL: %d\n", s.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", s.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", s.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n\n", s.LowCount)
	fmt.Fprintf(sb, "  TOTAL:    %d issues (%d new)\n\n", s.TotalIssues, s.NewCount)
}

func (w *SimpleWriter) writeTeams(sb *strings.Builder, report *model.AuditReport) {
	if len(report.Teams) == 0 {
		return
	}
	writeSection(sb, "TEAMS")

	for _, team := range report.Teams {
		fmt.Fprintf(sb, "  %-16s %3d issues  critical %-3d high %-3d avg impact %8.2f  priority %d\n",
			team.Name, team.Total, team.Critical, team.High, team.AverageImpact, team.PriorityScore)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.AuditReport) {
	if len(report.Issues) == 0 {
		writeSection(sb, "ISSUES")
		sb.WriteString("  No issues detected\n\n")
		return
	}

	issues := report.Issues
	limit := w.maxIssues
	if w.verbose || limit <= 0 || limit > len(issues) {
		limit = len(issues)
	}

	writeSection(sb, fmt.Sprintf("TOP ISSUES (%d of %d)", limit, len(issues)))
	for _, issue := range issues[:limit] {
		marker := ""
		if issue.Status == model.StatusNew {
			marker = " [NEW]"
		}
		fmt.Fprintf(sb, "  [%s] %8.2f  %s%s\n", severityIndicator(issue.Severity), issue.ImpactScore, issue.Type, marker)
		fmt.Fprintf(sb, "      %s (%s, %s)\n", issue.URL, issue.PageType, teamLabel(issue.Team))
		if w.verbose {
			if issue.Description != "" {
				fmt.Fprintf(sb, "      Description: %s\n", issue.Description)
			}
			if issue.Recommendation != "" {
				fmt.Fprintf(sb, "      Recommendation: %s\n", issue.Recommendation)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeInsights(sb *strings.Builder, report *model.AuditReport) {
	in := report.Insights
	if len(in.HighPriorityPages) == 0 && in.SearchOpportunities == 0 {
		return
	}
	writeSection(sb, "INSIGHTS")

	fmt.Fprintf(sb, "  Critical issues on key pages: %d\n", len(in.CriticalBusinessImpact))
	fmt.Fprintf(sb, "  Search opportunities:         %d\n", in.SearchOpportunities)
	if len(in.HighPriorityPages) > 0 {
		sb.WriteString("\n  Key pages with issues:\n")
		for _, p := range in.HighPriorityPages {
			fmt.Fprintf(sb, "    * %s (%s) %d issues, %d critical, top impact %.2f\n",
				p.URL, p.PageType, p.IssueCount, p.CriticalCount, p.TopImpact)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSkipped(sb *strings.Builder, report *model.AuditReport) {
	if len(report.Skipped) == 0 {
		return
	}
	writeSection(sb, fmt.Sprintf("SKIPPED RECORDS (%d)", len(report.Skipped)))
	for _, s := range report.Skipped {
		url := s.URL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(sb, "  #%d %s: %s\n", s.Index, url, s.Reason)
	}
	sb.WriteString("\n")
}

// WriteComparison outputs the comparison.
func (w *SimpleWriter) WriteComparison(c *Comparison) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Audit Comparison: %s\n", c.Site)
	writeRule(&sb, "=")
	fmt.Fprintf(&sb, "\nHealth: %s\n", formatDirection(c.Direction))
	fmt.Fprintf(&sb, "\nPrevious audit: %s  (%d/100 %s)\n",
		c.Previous.GeneratedAt.Format("2006-01-02 15:04:05"), c.Previous.HealthScore, c.Previous.Grade)
	fmt.Fprintf(&sb, "Current audit:  %s  (%d/100 %s)\n",
		c.Current.GeneratedAt.Format("2006-01-02 15:04:05"), c.Current.HealthScore, c.Current.Grade)

	sb.WriteString("\nIssue Summary:\n")
	fmt.Fprintf(&sb, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n")
	rows := []struct {
		label      string
		prev, curr int
	}{
		{"Critical", c.Previous.CriticalCount, c.Current.CriticalCount},
		{"High", c.Previous.HighCount, c.Current.HighCount},
		{"Medium", c.Previous.MediumCount, c.Current.MediumCount},
		{"Low", c.Previous.LowCount, c.Current.LowCount},
		{"Total", c.Previous.TotalIssues, c.Current.TotalIssues},
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "  %-10s  %-10d  %-10d  %-10s\n", r.label, r.prev, r.curr, formatDelta(r.curr-r.prev))
	}

	if len(c.NewIssues) > 0 {
		fmt.Fprintf(&sb, "\nNew Issues (%d):\n", len(c.NewIssues))
		for _, issue := range c.NewIssues {
			fmt.Fprintf(&sb, "  [+] [%s] %s: %s\n", issue.Severity, issue.Type, issue.URL)
		}
	}
	if len(c.ResolvedIssues) > 0 {
		fmt.Fprintf(&sb, "\nResolved Issues (%d):\n", len(c.ResolvedIssues))
		for _, issue := range c.ResolvedIssues {
			fmt.Fprintf(&sb, "  [-] [%s] %s: %s\n", issue.Severity, issue.Type, issue.URL)
		}
	}
	if c.UnchangedCount > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d issues\n", c.UnchangedCount)
	}

	return io.WriteString(w.output, sb.String())
}

func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!! "
	case model.SeverityMedium:
		return "!  "
	default:
		return "-  "
	}
}
