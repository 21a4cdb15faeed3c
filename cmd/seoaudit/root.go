package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	seolog "github.com/nao1215/seoaudit/internal/log"
)

// NewRootCmd creates the root command for seoaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoaudit",
		Short: "Deterministic SEO issue scoring for regional web properties",
		Long: `seoaudit audits web pages for SEO problems and ranks them by business impact.

Pages are crawled, enriched with search-console and Core Web Vitals data,
classified by page type, and every detected issue is scored and routed to
the team that owns the fix (Tech/Dev, Marketing or Design/UX).

Audit results are stored locally so that later runs can mark issues as
new or existing, compare runs and create Jira tickets.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewTicketsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerFromFlags builds the stderr logger from the persistent flags.
func loggerFromFlags(cmd *cobra.Command) *slog.Logger {
	return seolog.NewLogger(cmd.ErrOrStderr(), seolog.Options{
		Verbose: boolFlag(cmd, "verbose"),
		JSON:    boolFlag(cmd, "log-json"),
	})
}

// boolFlag reads a flag from the command or the root's persistent flags.
func boolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}
