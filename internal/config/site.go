package config

import "maps"

// SiteConfig holds per-property configuration for one regional site.
type SiteConfig struct {
	// StartURL is where discovery begins. Defaults to https://<site key>/.
	StartURL string `yaml:"startURL,omitempty"`

	// URLs are audited in addition to any discovered pages.
	URLs []string `yaml:"urls,omitempty"`

	// Sitemap is a sitemap.xml URL whose entries are audited.
	Sitemap string `yaml:"sitemap,omitempty"`

	// SearchConsole is the path of a search-console export for this site.
	SearchConsole string `yaml:"searchConsole,omitempty"`

	// Cookie is an HTTP cookie to send, e.g. a consent cookie.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxPages overrides the global discovery limit for this site.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path patterns to skip during discovery.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict discovery to matching paths when set.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// ClassifierRule maps URLs containing Pattern to a page type.
type ClassifierRule struct {
	Pattern  string `yaml:"pattern"`
	PageType string `yaml:"pageType"`
}

// ClassifierConfig holds extra page classification rules.
// They are evaluated before the built-in rules.
type ClassifierConfig struct {
	Rules []ClassifierRule `yaml:"rules,omitempty"`
}

// JiraConfig holds the non-secret Jira settings.
// The API token is read from JIRA_API_TOKEN.
type JiraConfig struct {
	BaseURL    string `yaml:"baseURL,omitempty"`
	ProjectKey string `yaml:"projectKey,omitempty"`
	Username   string `yaml:"username,omitempty"`
}

// File represents the structure of the .seoaudit configuration file.
type File struct {
	// Sites maps site keys (usually the domain) to their configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Scoring overrides the scoring tables and detection thresholds.
	Scoring ScoringConfig `yaml:"scoring,omitempty"`

	Classifier ClassifierConfig `yaml:"classifier,omitempty"`

	Jira JiraConfig `yaml:"jira,omitempty"`
}

// GetSiteConfig returns the configuration for a site key.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(site string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.Sites[site]
	if !ok {
		return result
	}

	if siteConfig.StartURL != "" {
		result.StartURL = siteConfig.StartURL
	}
	if len(siteConfig.URLs) > 0 {
		result.URLs = siteConfig.URLs
	}
	if siteConfig.Sitemap != "" {
		result.Sitemap = siteConfig.Sitemap
	}
	if siteConfig.SearchConsole != "" {
		result.SearchConsole = siteConfig.SearchConsole
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}
