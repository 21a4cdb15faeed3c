package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/seoaudit/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeCategories(md, report)
	w.writeTeams(md, report)
	w.writeInsights(md, report)
	w.writeSkipped(md, report)
	writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	sites := strings.Join(report.Sites, ", ")
	if sites == "" {
		sites = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Sites", sites},
			{"Audit ID", "`" + report.ID + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Audited", strconv.Itoa(report.PagesAudited)},
			{"Health Score", fmt.Sprintf("**%d/100 (%s)**", report.HealthScore, report.Grade)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AuditReport) {
	s := report.Summary
	md.H2("Severity Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(s.CriticalCount)},
			{"🟠 High", strconv.Itoa(s.HighCount)},
			{"🟡 Medium", strconv.Itoa(s.MediumCount)},
			{"🔵 Low", strconv.Itoa(s.LowCount)},
			{"**Total**", "**" + strconv.Itoa(s.TotalIssues) + "**"},
			{"New since last audit", strconv.Itoa(s.NewCount)},
		},
	})
	md.PlainText("")

	if s.TotalIssues > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Issue Severity Distribution"),
			piechart.WithShowData(true),
		)
		for _, severity := range model.Severities {
			if n := s.Count(severity); n > 0 {
				chart.LabelAndIntValue(severity.String(), uint64(n))
			}
		}
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.CriticalCount > 0:
		md.Cautionf("%d critical issue(s) block indexing or search visibility and need immediate attention.", s.CriticalCount)
	case s.HighCount > 0:
		md.Warningf("%d high severity issue(s) should be fixed in the next release.", s.HighCount)
	case s.MediumCount > 0:
		md.Importantf("%d medium severity issue(s) limit search performance.", s.MediumCount)
	case s.TotalIssues > 0:
		md.Note("Only low severity issues detected.")
	default:
		md.Tip("No SEO issues detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, report *model.AuditReport) {
	if report.Summary.TotalIssues == 0 {
		return
	}
	md.H2("Issues by Category")
	md.PlainText("")

	var rows [][]string
	for _, category := range model.Categories {
		if n := report.Summary.ByCategory[category]; n > 0 {
			rows = append(rows, []string{string(category), strconv.Itoa(n)})
		}
	}
	for _, pageType := range model.PageTypes {
		if n := report.Summary.ByPageType[pageType]; n > 0 {
			rows = append(rows, []string{pageTypeLabel(pageType) + " pages", strconv.Itoa(n)})
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Group", "Issues"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTeams(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Issues by Team")
	md.PlainText("")

	if len(report.Teams) == 0 {
		md.PlainText("No issues to assign.")
		md.PlainText("")
		return
	}

	for _, team := range report.Teams {
		md.H3(fmt.Sprintf("%s (%d)", team.Name, team.Total))
		md.PlainText("")
		md.PlainTextf("*%s*. Critical: %d, High: %d, average impact %.2f, priority score %d.",
			team.Description, team.Critical, team.High, team.AverageImpact, team.PriorityScore)
		md.PlainText("")
		md.Table(issueTable(team.Issues))
		md.PlainText("")
	}
}

// issueTable renders issues as a Markdown table.
func issueTable(issues []model.Issue) markdown.TableSet {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		rows[i] = []string{
			issue.Severity.String(),
			issue.Type,
			"`" + truncateString(issue.URL, 60) + "`",
			pageTypeLabel(issue.PageType),
			strconv.FormatFloat(issue.ImpactScore, 'f', 2, 64),
			statusLabel(issue.Status),
			truncateString(issue.Recommendation, 80),
		}
	}
	return markdown.TableSet{
		Header: []string{"Severity", "Issue", "URL", "Page Type", "Impact", "Status", "Recommendation"},
		Rows:   rows,
	}
}

func (w *MarkdownWriter) writeInsights(md *markdown.Markdown, report *model.AuditReport) {
	in := report.Insights
	if len(in.HighPriorityPages) == 0 && in.SearchOpportunities == 0 {
		return
	}
	md.H2("Strategic Insights")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Critical issues on business-critical pages: %d", len(in.CriticalBusinessImpact)),
		fmt.Sprintf("Search opportunities: %d", in.SearchOpportunities),
	)
	md.PlainText("")

	if len(in.HighPriorityPages) == 0 {
		return
	}
	rows := make([][]string, len(in.HighPriorityPages))
	for i, p := range in.HighPriorityPages {
		rows[i] = []string{
			"`" + p.URL + "`",
			pageTypeLabel(p.PageType),
			strconv.Itoa(p.IssueCount),
			strconv.Itoa(p.CriticalCount),
			strconv.FormatFloat(p.TopImpact, 'f', 2, 64),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Type", "Issues", "Critical", "Top Impact"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, report *model.AuditReport) {
	if len(report.Skipped) == 0 {
		return
	}
	items := make([]string, len(report.Skipped))
	for i, s := range report.Skipped {
		items[i] = fmt.Sprintf("record %d `%s`: %s", s.Index, s.URL, s.Reason)
	}
	md.Details(fmt.Sprintf("Skipped records (%d)", len(items)), strings.Join(items, "\n"))
	md.PlainText("")
}

// WriteComparison outputs the comparison.
func (w *MarkdownWriter) WriteComparison(c *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Audit Comparison: " + c.Site)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Health:** %s", formatDirection(c.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Date", c.Previous.GeneratedAt.Format("2006-01-02 15:04"), c.Current.GeneratedAt.Format("2006-01-02 15:04"), "-"},
			{"Health", strconv.Itoa(c.Previous.HealthScore), strconv.Itoa(c.Current.HealthScore), formatDelta(c.HealthDelta)},
			{"Critical", strconv.Itoa(c.Previous.CriticalCount), strconv.Itoa(c.Current.CriticalCount), formatDelta(c.Current.CriticalCount - c.Previous.CriticalCount)},
			{"High", strconv.Itoa(c.Previous.HighCount), strconv.Itoa(c.Current.HighCount), formatDelta(c.Current.HighCount - c.Previous.HighCount)},
			{"Medium", strconv.Itoa(c.Previous.MediumCount), strconv.Itoa(c.Current.MediumCount), formatDelta(c.Current.MediumCount - c.Previous.MediumCount)},
			{"Low", strconv.Itoa(c.Previous.LowCount), strconv.Itoa(c.Current.LowCount), formatDelta(c.Current.LowCount - c.Previous.LowCount)},
			{"**Total**", "**" + strconv.Itoa(c.Previous.TotalIssues) + "**", "**" + strconv.Itoa(c.Current.TotalIssues) + "**", "**" + formatDelta(c.Current.TotalIssues-c.Previous.TotalIssues) + "**"},
		},
	})
	md.PlainText("")

	if len(c.NewIssues) > 0 {
		md.H2(fmt.Sprintf("New Issues (%d)", len(c.NewIssues)))
		md.PlainText("")
		md.Table(issueTable(c.NewIssues))
		md.PlainText("")
	}
	if len(c.ResolvedIssues) > 0 {
		md.H2(fmt.Sprintf("Resolved Issues (%d)", len(c.ResolvedIssues)))
		md.PlainText("")
		items := make([]string, len(c.ResolvedIssues))
		for i, issue := range c.ResolvedIssues {
			items[i] = fmt.Sprintf("~~**[%s]** %s: `%s`~~", issue.Severity, issue.Type, issue.URL)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if c.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d issues unchanged*", c.UnchangedCount)
	}

	return len(md.String()), md.Build()
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seoaudit](https://github.com/nao1215/seoaudit)*")
}
