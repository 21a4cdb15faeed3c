package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() while still showing a human-readable message.
var (
	// ErrNoTarget is returned when no URL, site key or sitemap is specified.
	ErrNoTarget = errors.New("no target specified: provide a URL, --site or --sitemap")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent fetches at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidStrategy is returned for a PageSpeed strategy other than mobile or desktop.
	ErrInvalidStrategy = errors.New("invalid strategy: must be mobile or desktop")

	// ErrMissingPageSpeedKey is returned when PageSpeed collection is enabled
	// without PAGESPEED_API_KEY.
	ErrMissingPageSpeedKey = errors.New("PAGESPEED_API_KEY is required when --pagespeed is set")

	// ErrUnknownSite is returned when --site names a key missing from the config file.
	ErrUnknownSite = errors.New("site is not defined in the configuration file")

	// ErrInvalidMultiplier is returned when a page-type multiplier is not positive.
	ErrInvalidMultiplier = errors.New("invalid page type multiplier: must be positive")

	// ErrInvalidPageType is returned when a config key names an unknown page type.
	ErrInvalidPageType = errors.New("invalid page type")

	// ErrMissingJiraCredentials is returned when ticket creation lacks a base URL,
	// username, API token or project key.
	ErrMissingJiraCredentials = errors.New("jira base URL, username, API token and project key are required")
)
