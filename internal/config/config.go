package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/seoaudit/internal/model"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each HTTP request. Slow pages are still reported
	// as slow rather than dropped, so this only needs to cut off hung servers.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of concurrent page fetches.
	DefaultBatchSize = 10

	// DefaultMaxPages caps discovery from a start URL or sitemap per site.
	DefaultMaxPages = 100

	// AppName is the application name used for XDG directory paths.
	AppName = "seoaudit"

	// DefaultCrawlDelay is the politeness delay between requests to the same site.
	DefaultCrawlDelay = 200 * time.Millisecond

	// DefaultUserAgent identifies seoaudit in HTTP requests.
	DefaultUserAgent = "seoaudit/1.0 (+https://github.com/nao1215/seoaudit)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = model.MaxPageSize

	// DefaultPageSpeedLimit is the number of top URLs measured with PageSpeed.
	// Each measurement takes several seconds and counts against the API quota.
	DefaultPageSpeedLimit = 10

	// DefaultStrategy is the device profile used for PageSpeed measurements.
	DefaultStrategy = string(model.StrategyMobile)
)

// Config holds all configuration options for an audit run.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// MaxPages is the maximum number of pages discovered per site.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// BatchSize is the number of concurrent page fetches.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seoaudit in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the loaded configuration file, or nil when none was found.
	File *File

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets are page URLs given on the command line.
	Targets []string

	// Sites are site keys from the configuration file.
	Sites []string

	// SitemapURL is a sitemap whose URLs are audited.
	SitemapURL string

	// Discover crawls same-host links from each target up to MaxPages.
	Discover bool

	// SearchConsoleFile is a search-console export applied to every page.
	SearchConsoleFile string

	// PageSpeed enables Core Web Vitals collection for the top PageSpeedLimit URLs.
	PageSpeed bool

	// PageSpeedLimit is the number of URLs measured when PageSpeed is enabled.
	PageSpeedLimit int

	// Strategy is the PageSpeed device profile (mobile or desktop).
	Strategy string

	// Secrets holds credentials read from the environment.
	Secrets Secrets

	// DBDir is the directory of the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/seoaudit on Linux).
	DBDir string

	// SaveToDB indicates whether to save the audit to the database.
	SaveToDB bool

	// CrawlDelay is the delay between HTTP requests to the same site.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		MaxPages:       DefaultMaxPages,
		BatchSize:      DefaultBatchSize,
		CrawlDelay:     DefaultCrawlDelay,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		PageSpeedLimit: DefaultPageSpeedLimit,
		Strategy:       DefaultStrategy,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
	}
}

// Scoring returns the scoring configuration from the config file,
// or the defaults when no file was loaded.
func (c *Config) Scoring() ScoringConfig {
	if c.File == nil {
		return DefaultScoring()
	}
	return c.File.Scoring
}

// XDGDataDir returns the XDG data directory for seoaudit.
// On Linux: ~/.local/share/seoaudit
// On macOS: ~/Library/Application Support/seoaudit
// On Windows: %LOCALAPPDATA%\seoaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 && len(c.Sites) == 0 && c.SitemapURL == "" {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	switch model.Strategy(c.Strategy) {
	case model.StrategyMobile, model.StrategyDesktop:
	default:
		return ErrInvalidStrategy
	}

	if c.PageSpeed && c.Secrets.PageSpeedAPIKey == "" {
		return ErrMissingPageSpeedKey
	}

	for _, site := range c.Sites {
		if c.File == nil {
			return ErrUnknownSite
		}
		if _, ok := c.File.Sites[site]; !ok {
			return ErrUnknownSite
		}
	}

	if c.File != nil {
		if err := c.File.Scoring.Validate(); err != nil {
			return err
		}
	}

	return nil
}
