package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/report"
)

const noIssuesMessage = "No issues"

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare the latest audit of a site with an earlier one",
		Long: `Compare displays the differences between two stored audits of a site.

It shows:
- New issues that appeared since the earlier audit
- Resolved issues that are no longer detected
- The change in health score and issue counts

The comparison requires at least two audits of the site in the database.
Use 'seoaudit audit' to run audits and save results.

Examples:
  # Compare the latest two audits of a site
  seoaudit compare example.com

  # List the audit history of a site
  seoaudit compare --list example.com

  # Compare with a specific audit by ID
  seoaudit compare --with-audit-id 5 example.com

  # Compare with the first audit since a date
  seoaudit compare --since 2026-01-01 example.com

  # List all audited sites
  seoaudit compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all audited sites in the database")

	cmd.Flags().Int64P("with-audit-id", "i", 0,
		"Compare with a specific audit by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first audit on or after this date (format: YYYY-MM-DD)")

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	site      string
	listSites bool
	list      bool
	withID    int64
	since     time.Time
	json      bool
	markdown  bool
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseCompareFlags(cmd, args)
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runCompare(cmd.Context(), db, opts, cmd.OutOrStdout())
}

func parseCompareFlags(cmd *cobra.Command, args []string) (compareOptions, error) {
	var (
		opts compareOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.listSites, err = flags.GetBool("list-sites"); err != nil {
		return opts, err
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.withID, err = flags.GetInt64("with-audit-id"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	since, err := flags.GetString("since")
	if err != nil {
		return opts, err
	}

	if opts.listSites {
		return opts, nil
	}
	if len(args) == 0 {
		return opts, errors.New("site is required (use --list-sites to see audited sites)")
	}
	opts.site = strings.ToLower(strings.TrimSpace(args[0]))

	if opts.json && opts.markdown {
		return opts, config.ErrConflictingReportFormats
	}
	if opts.withID < 0 {
		return opts, errors.New("audit ID must be positive")
	}
	if opts.withID > 0 && since != "" {
		return opts, errors.New("--with-audit-id and --since cannot be used together")
	}
	if since != "" {
		if opts.since, err = time.Parse(time.DateOnly, since); err != nil {
			return opts, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}
	return opts, nil
}

func runCompare(ctx context.Context, db *database.AuditDB, opts compareOptions, out io.Writer) error {
	if opts.listSites {
		return listAuditedSites(ctx, db, out)
	}
	if opts.list {
		return listAuditHistory(ctx, db, opts.site, out)
	}

	previous, current, err := db.ComparisonPair(ctx, opts.site, opts.withID, opts.since)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	var writer report.Writer
	switch {
	case opts.json:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out)
	}
	_, err = writer.WriteComparison(report.Compare(opts.site, previous.Report, current.Report))
	return err
}

func listAuditedSites(ctx context.Context, db *database.AuditDB, out io.Writer) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(out, "No audited sites found in the database.")
		fmt.Fprintln(out, "\nUse 'seoaudit audit <url>' to audit a site.")
		return nil
	}

	fmt.Fprintf(out, "Audited sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  - %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'seoaudit compare --list <site>' to see the audit history of a site.")
	return nil
}

func listAuditHistory(ctx context.Context, db *database.AuditDB, site string, out io.Writer) error {
	history, err := db.GetAuditHistory(ctx, site, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No audit history found for %s\n", site)
		fmt.Fprintln(out, "\nUse 'seoaudit audit' to audit this site.")
		return nil
	}

	fmt.Fprintf(out, "Audit history for %s (%d audits):\n\n", site, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-6s  %s\n", "ID", "Date", "Pages", "Health", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))
	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-6s  %s\n",
			meta.ID,
			meta.GeneratedAt.Local().Format(time.DateTime),
			meta.PagesAudited,
			fmt.Sprintf("%d %s", meta.HealthScore, meta.Grade),
			formatSeveritySummary(meta.Severity),
		)
	}

	fmt.Fprintln(out, "\nUse 'seoaudit compare <site>' to compare the latest two audits.")
	fmt.Fprintln(out, "Use 'seoaudit compare --with-audit-id <id> <site>' to compare with a specific audit.")
	return nil
}

// formatSeveritySummary formats non-zero severity counts as "C:1 H:2 L:3".
func formatSeveritySummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	for _, sev := range []struct{ key, label string }{
		{"critical", "C"}, {"high", "H"}, {"medium", "M"}, {"low", "L"},
	} {
		if v := summary[sev.key]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", sev.label, v))
		}
	}
	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}
