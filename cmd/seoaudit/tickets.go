package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/jira"
	"github.com/nao1215/seoaudit/internal/model"
)

// dryRunProjectKey is shown in dry-run payloads when no project is configured.
const dryRunProjectKey = "SEO"

// NewTicketsCmd creates the tickets command.
func NewTicketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets [site]",
		Short: "Create Jira tickets from a stored audit",
		Long: `Tickets exports a stored audit to Jira.

One epic summarizes the audit and one task per team lists the issues the
team owns, ordered by impact. Tasks are linked to the epic.

Credentials are read from the environment or a .env file:
  JIRA_BASE_URL, JIRA_USERNAME, JIRA_API_TOKEN, JIRA_PROJECT_KEY
The jira section of the configuration file may provide the non-secret ones.

Examples:
  # Preview the tickets for the latest audit of a site
  seoaudit tickets --dry-run example.com

  # Create tickets for a specific audit
  seoaudit tickets --audit-id 12

  # Create tickets in another project
  seoaudit tickets --project WEB example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTicketsCmd,
	}

	cmd.Flags().Int64P("audit-id", "i", 0,
		"Export the audit with this ID instead of the latest one")
	cmd.Flags().BoolP("dry-run", "n", false,
		"Print the Jira request payloads without creating anything")
	cmd.Flags().StringP("project", "P", "",
		"Jira project key (overrides JIRA_PROJECT_KEY and the config file)")
	cmd.Flags().String("epic-name-field", "",
		"Custom field ID of the epic name on company-managed projects (e.g. customfield_10011)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoaudit in the current or home directory, then the XDG config dir)")

	return cmd
}

// ticketsOptions holds the parsed tickets flags.
type ticketsOptions struct {
	site          string
	auditID       int64
	dryRun        bool
	project       string
	epicNameField string
	configPath    string
}

func runTicketsCmd(cmd *cobra.Command, args []string) error {
	var (
		opts ticketsOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.auditID, err = flags.GetInt64("audit-id"); err != nil {
		return err
	}
	if opts.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return err
	}
	if opts.project, err = flags.GetString("project"); err != nil {
		return err
	}
	if opts.epicNameField, err = flags.GetString("epic-name-field"); err != nil {
		return err
	}
	if opts.configPath, err = flags.GetString("config"); err != nil {
		return err
	}
	if len(args) > 0 {
		opts.site = strings.ToLower(strings.TrimSpace(args[0]))
	}

	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	file, err := loadConfigFile(opts.configPath)
	if err != nil {
		return err
	}
	var fileSettings config.JiraConfig
	if file != nil {
		fileSettings = file.Jira
	}
	secrets := config.SecretsFromEnv()
	if opts.project != "" {
		secrets.JiraProjectKey = opts.project
	}
	settings, token, credErr := config.JiraSettings(fileSettings, secrets)
	if credErr != nil && !opts.dryRun {
		return credErr
	}

	logger := loggerFromFlags(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	stored, err := loadTicketReport(ctx, db, opts)
	if err != nil {
		return err
	}
	set := jira.BuildTickets(stored.Report)

	out := cmd.OutOrStdout()
	if opts.dryRun {
		project := settings.ProjectKey
		if project == "" {
			project = dryRunProjectKey
		}
		return printPayloads(out, project, set, opts.epicNameField)
	}

	client := jira.New(settings.BaseURL, settings.Username, token, settings.ProjectKey,
		jira.WithEpicNameField(opts.epicNameField),
		jira.WithLogger(logger),
	)
	return createTickets(ctx, client, set, out, logger)
}

// loadTicketReport returns the requested audit, or the latest one for the site.
func loadTicketReport(ctx context.Context, db *database.AuditDB, opts ticketsOptions) (*database.StoredReport, error) {
	var (
		stored *database.StoredReport
		err    error
	)
	if opts.auditID > 0 {
		stored, err = db.GetAuditReportByID(ctx, opts.auditID)
	} else {
		stored, err = db.GetLatestAuditReport(ctx, opts.site)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load audit: %w", err)
	}
	if stored == nil {
		if opts.auditID > 0 {
			return nil, fmt.Errorf("%w: %d", database.ErrAuditNotFound, opts.auditID)
		}
		if opts.site != "" {
			return nil, fmt.Errorf("%w for %s", database.ErrNoHistory, opts.site)
		}
		return nil, database.ErrNoHistory
	}
	if len(stored.Report.Issues) == 0 {
		return nil, errors.New("the audit has no issues; nothing to export")
	}
	return stored, nil
}

// dryRunOutput is the JSON printed by --dry-run.
type dryRunOutput struct {
	Epic  *jira.Payload   `json:"epic"`
	Tasks []*jira.Payload `json:"tasks"`
}

func printPayloads(out io.Writer, projectKey string, set *jira.TicketSet, epicNameField string) error {
	result := dryRunOutput{
		Epic:  jira.NewPayload(projectKey, set.Epic, "", epicNameField),
		Tasks: make([]*jira.Payload, 0, len(set.Tasks)),
	}
	for _, task := range set.Tasks {
		result.Tasks = append(result.Tasks, jira.NewPayload(projectKey, task, "EPIC-KEY", epicNameField))
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func createTickets(ctx context.Context, client *jira.Client, set *jira.TicketSet, out io.Writer, logger *slog.Logger) error {
	name, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("jira connection failed: %w", err)
	}
	logger.Info("connected to jira", "account", name)

	result, err := client.CreateAll(ctx, set)
	if err != nil {
		return err
	}

	if result.EpicKey != "" {
		fmt.Fprintf(out, "Epic: %s  %s\n", result.EpicKey, client.BrowseURL(result.EpicKey))
	}
	for _, team := range model.Teams {
		if key, ok := result.TaskKeys[string(team)]; ok {
			fmt.Fprintf(out, "  %-16s %s  %s\n", team.DisplayName(), key, client.BrowseURL(key))
		}
	}
	fmt.Fprintf(out, "\nCreated %d of %d tickets\n", result.Created(), len(set.Tasks)+1)

	if len(result.Failed) > 0 {
		for _, what := range slices.Sorted(maps.Keys(result.Failed)) {
			fmt.Fprintf(out, "  failed %s: %s\n", what, result.Failed[what])
		}
		return fmt.Errorf("%d tickets could not be created", len(result.Failed))
	}
	return nil
}
