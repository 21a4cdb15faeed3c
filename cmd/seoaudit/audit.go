package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoaudit/internal/audit"
	"github.com/nao1215/seoaudit/internal/classify"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/crawler"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/detect"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/pagespeed"
	"github.com/nao1215/seoaudit/internal/pipeline"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/nao1215/seoaudit/internal/score"
	"github.com/nao1215/seoaudit/internal/searchconsole"
)

var errNoPages = errors.New("no pages collected: check the URLs, sitemap and site configuration")

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit pages and rank SEO issues by business impact",
		Long: `Audit fetches pages, detects SEO issues and ranks them by business impact.

Pages come from URL arguments, configured sites (--site), a sitemap
(--sitemap) or link discovery from each start URL (--discover).
Search-console exports (--gsc) and PageSpeed Insights (--pagespeed) add
traffic and Core Web Vitals data to the audit.

Every issue is scored by severity, page type and traffic, then assigned
to the Tech/Dev, Marketing or Design/UX team. The report is saved to the
local history database so that later runs can flag issues as new.

Examples:
  # Audit a single page
  seoaudit audit https://example.com/

  # Crawl a site from its home page, up to 200 pages
  seoaudit audit --discover --max-pages 200 https://example.com/

  # Audit configured regional sites with their search-console exports
  seoaudit audit --site example.com --site example.co.uk

  # Add Core Web Vitals for the 10 highest-traffic pages
  PAGESPEED_API_KEY=... seoaudit audit --site example.com --gsc export.csv --pagespeed

  # Write a Markdown report
  seoaudit audit -m -o reports/audit.md https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Page sources
	cmd.Flags().StringSliceP("site", "s", nil,
		"Site key from the configuration file (repeatable)")
	cmd.Flags().String("sitemap", "",
		"Audit the URLs listed in this sitemap")
	cmd.Flags().BoolP("discover", "d", false,
		"Discover pages by following same-host links from each start URL")
	cmd.Flags().StringP("gsc", "g", "",
		"Search-console export (CSV or JSON) applied to every page")

	// PageSpeed
	cmd.Flags().Bool("pagespeed", false,
		"Collect Core Web Vitals from PageSpeed Insights (needs PAGESPEED_API_KEY)")
	cmd.Flags().Int("pagespeed-limit", config.DefaultPageSpeedLimit,
		"Number of highest-traffic pages measured with PageSpeed")
	cmd.Flags().String("strategy", config.DefaultStrategy,
		"PageSpeed device profile: mobile or desktop")

	// Audit behavior
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent page fetches")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages discovered per site")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests while discovering pages")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoaudit in the current or home directory, then the XDG config dir)")

	// Report
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not save the audit to the history database")

	return cmd
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := loggerFromFlags(cmd)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAudit(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags and the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Sites, err = flags.GetStringSlice("site"); err != nil {
		return nil, err
	}
	if cfg.SitemapURL, err = flags.GetString("sitemap"); err != nil {
		return nil, err
	}
	if cfg.Discover, err = flags.GetBool("discover"); err != nil {
		return nil, err
	}
	if cfg.SearchConsoleFile, err = flags.GetString("gsc"); err != nil {
		return nil, err
	}
	if cfg.PageSpeed, err = flags.GetBool("pagespeed"); err != nil {
		return nil, err
	}
	if cfg.PageSpeedLimit, err = flags.GetInt("pagespeed-limit"); err != nil {
		return nil, err
	}
	if cfg.Strategy, err = flags.GetString("strategy"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.Verbose = boolFlag(cmd, "verbose")
	cfg.LogJSON = boolFlag(cmd, "log-json")

	if cfg.File, err = loadConfigFile(cfg.ConfigFilePath); err != nil {
		return nil, err
	}

	cfg.Secrets = config.SecretsFromEnv()
	cfg.Targets = args
	return cfg, nil
}

// loadConfigFile loads the configuration file. A missing file is an error
// only when path was given explicitly.
func loadConfigFile(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, nil
	}
	file, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return file, nil
}

// siteTarget is one group of pages fetched with the same site settings.
type siteTarget struct {
	site     string
	settings config.SiteConfig
	urls     []string
	starts   []string
	sitemaps []string
}

// planTargets groups the requested pages by site. URL arguments and sitemap
// entries are grouped by host so that a configured site's headers and
// cookies apply to them too.
func planTargets(cfg *config.Config) []*siteTarget {
	var targets []*siteTarget
	index := make(map[string]*siteTarget)

	get := func(site string) *siteTarget {
		if t, ok := index[site]; ok {
			return t
		}
		t := &siteTarget{site: site}
		if cfg.File != nil {
			t.settings = cfg.File.GetSiteConfig(site)
		}
		index[site] = t
		targets = append(targets, t)
		return t
	}

	for _, site := range cfg.Sites {
		t := get(site)
		t.urls = append(t.urls, t.settings.URLs...)
		start := t.settings.StartURL
		if start == "" {
			start = "https://" + site + "/"
		}
		t.urls = append(t.urls, start)
		t.starts = append(t.starts, start)
		if t.settings.Sitemap != "" {
			t.sitemaps = append(t.sitemaps, t.settings.Sitemap)
		}
	}
	for _, u := range cfg.Targets {
		t := get(crawler.Domain(u))
		t.urls = append(t.urls, u)
		t.starts = append(t.starts, u)
	}
	if cfg.SitemapURL != "" {
		t := get(crawler.Domain(cfg.SitemapURL))
		t.sitemaps = append(t.sitemaps, cfg.SitemapURL)
	}
	return targets
}

// runAudit collects every page, runs the aggregator and writes the report.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	var global *searchconsole.Dataset
	if cfg.SearchConsoleFile != "" {
		var err error
		global, err = loadDataset(cfg.SearchConsoleFile, logger)
		if err != nil {
			return err
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	var vitals pipeline.VitalsClient
	if cfg.PageSpeed {
		vitals = pagespeed.New(cfg.Secrets.PageSpeedAPIKey,
			pagespeed.WithLogger(logger),
		)
	}

	startTime := time.Now()
	var pages []*model.Page
	for _, target := range planTargets(cfg) {
		if err := ctx.Err(); err != nil {
			return err
		}
		sitePages, err := collectSite(ctx, cfg, target, client, vitals, global, logger, stderr)
		if err != nil {
			return err
		}
		pages = append(pages, sitePages...)
	}

	if len(pages) == 0 {
		return errNoPages
	}

	aggregator, err := newAggregator(ctx, cfg, db, pages, logger)
	if err != nil {
		return err
	}
	auditReport, err := aggregator.Run(ctx, pages)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	fmt.Fprintf(stderr, "Audited %d pages in %s\n\n", auditReport.PagesAudited, time.Since(startTime).Round(time.Millisecond))

	if db != nil {
		id, err := db.SaveAuditReport(ctx, auditReport)
		if err != nil {
			logger.Error("failed to save audit report", "error", err)
		} else {
			logger.Info("audit report saved to database", "id", id, "run", auditReport.ID)
		}
	}

	return outputReport(cfg, auditReport, stdout)
}

func loadDataset(path string, logger *slog.Logger) (*searchconsole.Dataset, error) {
	dataset, err := searchconsole.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load search-console export %s: %w", path, err)
	}
	logger.Info("search-console export loaded", "file", path, "rows", dataset.Len(), "skipped", dataset.Skipped())
	return dataset, nil
}

// collectSite gathers the URLs of one site and runs the collection pipeline over them.
func collectSite(
	ctx context.Context,
	cfg *config.Config,
	target *siteTarget,
	client *http.Client,
	vitals pipeline.VitalsClient,
	global *searchconsole.Dataset,
	logger *slog.Logger,
	stderr io.Writer,
) ([]*model.Page, error) {
	settings := target.settings
	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cmp.Or(settings.UserAgent, cfg.UserAgent)),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithHeaders(requestHeaders(settings)),
		crawler.WithFetchLogger(logger),
	)
	maxPages := cfg.MaxPages
	if settings.MaxPages > 0 {
		maxPages = settings.MaxPages
	}

	urls := slices.Clone(target.urls)
	for _, sm := range target.sitemaps {
		found, err := fetcher.SitemapURLs(ctx, sm, maxPages)
		if err != nil {
			logger.Warn("failed to read sitemap", "site", target.site, "sitemap", sm, "error", err)
			fmt.Fprintf(stderr, "Sitemap error for %s: %v\n", sm, err)
			continue
		}
		urls = append(urls, found...)
	}

	var discovered []*model.Page
	if cfg.Discover {
		for _, start := range target.starts {
			spider := crawler.NewSpider(fetcher,
				crawler.WithMaxPages(maxPages),
				crawler.WithDelay(cfg.CrawlDelay),
				crawler.WithIgnorePatterns(settings.IgnorePatterns),
				crawler.WithFollowPatterns(settings.FollowPatterns),
			)
			fmt.Fprintf(stderr, "Discovering pages from %s...\n", start)
			found, err := spider.Crawl(ctx, start)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil {
				logger.Warn("discovery failed", "start", start, "error", err)
				continue
			}
			stats := spider.Stats()
			logger.Info("discovery complete", "start", start, "pages", stats.PagesVisited)
			discovered = append(discovered, found...)
			for _, p := range found {
				urls = append(urls, p.URL)
			}
		}
	}
	urls = uniqueURLs(urls)
	if len(urls) == 0 {
		logger.Warn("no pages found for site", "site", target.site)
		return nil, nil
	}

	dataset := global
	if settings.SearchConsole != "" {
		var err error
		if dataset, err = loadDataset(settings.SearchConsole, logger); err != nil {
			return nil, err
		}
	}

	steps := []pipeline.Step{pipeline.NewCrawlStep(fetcher, pipeline.WithPrefetched(discovered))}
	if dataset != nil {
		steps = append(steps, pipeline.NewSearchStep(dataset))
	}
	if vitals != nil {
		steps = append(steps, pipeline.NewVitalsStep(vitals, model.Strategy(cfg.Strategy), vitalsURLs(dataset, urls, cfg.PageSpeedLimit)))
	}

	p := pipeline.New(steps,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	bp := pipeline.NewBatchProcessor(p,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(stderr, "Collecting %d pages for %s (concurrency: %d)...\n", len(urls), siteLabel(target.site), cfg.BatchSize)
	results, err := bp.ProcessBatch(ctx, urls)
	if err != nil {
		return nil, err
	}
	for step, n := range pipeline.FailureCounts(results) {
		logger.Warn("pages with failed collection step", "site", target.site, "step", step, "count", n)
	}
	return pipeline.Pages(results), nil
}

// vitalsURLs picks the pages measured with PageSpeed: the highest-traffic
// crawled pages when search data is available, otherwise the first pages.
func vitalsURLs(dataset *searchconsole.Dataset, urls []string, limit int) []string {
	if limit <= 0 {
		return urls
	}
	if dataset != nil {
		crawled := make(map[string]string, len(urls))
		for _, u := range urls {
			crawled[searchconsole.NormalizeURL(u)] = u
		}
		var picked []string
		for _, u := range dataset.TopURLs(0) {
			if orig, ok := crawled[searchconsole.NormalizeURL(u)]; ok {
				picked = append(picked, orig)
				if len(picked) == limit {
					return picked
				}
			}
		}
		if len(picked) > 0 {
			return picked
		}
	}
	return urls[:min(limit, len(urls))]
}

// newAggregator builds the aggregator from the configuration file and the
// issue keys of the previous audit of the same sites.
func newAggregator(ctx context.Context, cfg *config.Config, db *database.AuditDB, pages []*model.Page, logger *slog.Logger) (*audit.Aggregator, error) {
	scoring := cfg.Scoring()

	var classifyOpts []classify.Option
	if cfg.File != nil {
		var err error
		if classifyOpts, err = classify.OptionsFromConfig(cfg.File.Classifier); err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
	}

	opts := []audit.Option{
		audit.WithLogger(logger),
		audit.WithConcurrency(cfg.BatchSize),
	}
	if db != nil {
		known, err := db.KnownIssueKeys(ctx, pageSites(pages))
		if err != nil {
			return nil, fmt.Errorf("failed to load previous issues: %w", err)
		}
		opts = append(opts, audit.WithKnownIssues(known))
	}

	return audit.New(scoring,
		classify.New(classifyOpts...),
		detect.New(scoring, detect.WithLogger(logger)),
		score.New(scoring),
		opts...,
	), nil
}

// outputReport writes the report in the requested format to the report file or stdout.
func outputReport(cfg *config.Config, auditReport *model.AuditReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		// Owner-only permissions.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	_, err := writer.Write(auditReport)
	return err
}

func requestHeaders(settings config.SiteConfig) map[string]string {
	headers := maps.Clone(settings.Headers)
	if settings.Cookie != "" {
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		headers["Cookie"] = settings.Cookie
	}
	return headers
}

func pageSites(pages []*model.Page) []string {
	var sites []string
	for _, p := range pages {
		if p != nil && p.Domain != "" && !slices.Contains(sites, p.Domain) {
			sites = append(sites, p.Domain)
		}
	}
	slices.Sort(sites)
	return sites
}

func uniqueURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok || u == "" {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func siteLabel(site string) string {
	if site == "" {
		return "unknown site"
	}
	return site
}
