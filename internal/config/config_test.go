package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default BatchSize is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 10 {
			t.Errorf("expected BatchSize to be 10, got %d", cfg.BatchSize)
		}
	})

	t.Run("default Strategy is mobile", func(t *testing.T) {
		t.Parallel()
		if cfg.Strategy != "mobile" {
			t.Errorf("expected Strategy to be mobile, got %q", cfg.Strategy)
		}
	})

	t.Run("saves to database by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB || cfg.DBDir == "" {
			t.Error("expected SaveToDB with a DBDir")
		}
	})

	t.Run("scoring falls back to defaults without a file", func(t *testing.T) {
		t.Parallel()
		if got := cfg.Scoring().Multiplier(model.PageTypeHomepage); got != 5.0 {
			t.Errorf("expected homepage multiplier 5.0, got %v", got)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com/"}
		return cfg
	}

	testCases := []struct {
		name     string
		modify   func(*Config)
		expected error
	}{
		{"valid config returns nil", func(*Config) {}, nil},
		{"sitemap alone is a target", func(c *Config) { c.Targets = nil; c.SitemapURL = "https://example.com/sitemap.xml" }, nil},
		{"empty targets returns ErrNoTarget", func(c *Config) { c.Targets = nil }, ErrNoTarget},
		{"zero timeout returns ErrInvalidTimeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero batch size returns ErrInvalidBatchSize", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"json and markdown returns ErrConflictingReportFormats", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"negative crawl delay returns ErrInvalidCrawlDelay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidCrawlDelay},
		{"negative body size returns ErrInvalidMaxBodySize", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"negative max pages returns ErrInvalidMaxPages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"unknown strategy returns ErrInvalidStrategy", func(c *Config) { c.Strategy = "tablet" }, ErrInvalidStrategy},
		{"pagespeed without key returns ErrMissingPageSpeedKey", func(c *Config) { c.PageSpeed = true }, ErrMissingPageSpeedKey},
		{"pagespeed with key is valid", func(c *Config) { c.PageSpeed = true; c.Secrets.PageSpeedAPIKey = "k" }, nil},
		{"site without config file returns ErrUnknownSite", func(c *Config) { c.Sites = []string{"example.com"} }, ErrUnknownSite},
		{"site missing from config file returns ErrUnknownSite", func(c *Config) {
			c.Sites = []string{"example.de"}
			c.File = &File{Sites: map[string]SiteConfig{"example.com": {}}, Scoring: DefaultScoring()}
		}, ErrUnknownSite},
		{"configured site is valid", func(c *Config) {
			c.Targets = nil
			c.Sites = []string{"example.com"}
			c.File = &File{Sites: map[string]SiteConfig{"example.com": {}}, Scoring: DefaultScoring()}
		}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expected == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestFileGetSiteConfig tests merging site configuration with defaults.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{MaxPages: 20, Cookie: "consent=1"},
			Sites:    map[string]SiteConfig{},
		}

		result := cf.GetSiteConfig("example.com")
		if result.MaxPages != 20 {
			t.Errorf("expected max pages 20, got %d", result.MaxPages)
		}
		if result.Cookie != "consent=1" {
			t.Errorf("expected default cookie, got %q", result.Cookie)
		}
	})

	t.Run("site values override defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{MaxPages: 20, Sitemap: "https://default/sitemap.xml"},
			Sites: map[string]SiteConfig{
				"example.de": {
					MaxPages:       50,
					Sitemap:        "https://example.de/sitemap.xml",
					SearchConsole:  "gsc-de.csv",
					URLs:           []string{"https://example.de/"},
					IgnorePatterns: []string{"/admin/*"},
				},
			},
		}

		result := cf.GetSiteConfig("example.de")
		if result.MaxPages != 50 {
			t.Errorf("expected max pages 50, got %d", result.MaxPages)
		}
		if result.Sitemap != "https://example.de/sitemap.xml" {
			t.Errorf("expected site sitemap, got %q", result.Sitemap)
		}
		if result.SearchConsole != "gsc-de.csv" {
			t.Errorf("expected site export, got %q", result.SearchConsole)
		}
		if len(result.URLs) != 1 || len(result.IgnorePatterns) != 1 {
			t.Errorf("expected site URLs and patterns, got %+v", result)
		}
	})

	t.Run("merges headers without mutating defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Headers: map[string]string{"Accept-Language": "en", "X-Env": "prod"}},
			Sites: map[string]SiteConfig{
				"example.de": {Headers: map[string]string{"Accept-Language": "de"}},
			},
		}

		result := cf.GetSiteConfig("example.de")
		if result.Headers["Accept-Language"] != "de" {
			t.Errorf("expected site header to win, got %q", result.Headers["Accept-Language"])
		}
		if result.Headers["X-Env"] != "prod" {
			t.Error("expected default header to be kept")
		}
		if cf.Defaults.Headers["Accept-Language"] != "en" {
			t.Error("defaults were mutated by the merge")
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		cf := &File{Defaults: SiteConfig{MaxPages: 5}}
		if got := cf.GetSiteConfig("example.com").MaxPages; got != 5 {
			t.Errorf("expected max pages 5, got %d", got)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.seoaudit")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads sites and keeps unset scoring defaults", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".seoaudit")
		content := `defaults:
  maxPages: 50
sites:
  example.com:
    startURL: "https://www.example.com/"
    searchConsole: "gsc.csv"
    headers:
      Accept-Language: "en"
scoring:
  multipliers:
    homepage: 6.0
  search:
    highImpressions: 2000
  detection:
    slowResponse: 2s
jira:
  projectKey: SEO
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.StartURL != "https://www.example.com/" || site.SearchConsole != "gsc.csv" {
			t.Errorf("unexpected site config: %+v", site)
		}
		if cfg.Scoring.Multiplier(model.PageTypeHomepage) != 6.0 {
			t.Errorf("expected overridden homepage multiplier, got %v", cfg.Scoring.Multiplier(model.PageTypeHomepage))
		}
		if cfg.Scoring.Multiplier(model.PageTypeProduct) != 4.5 {
			t.Errorf("expected default product multiplier, got %v", cfg.Scoring.Multiplier(model.PageTypeProduct))
		}
		if cfg.Scoring.Search.HighImpressions != 2000 {
			t.Errorf("expected highImpressions 2000, got %d", cfg.Scoring.Search.HighImpressions)
		}
		if cfg.Scoring.Search.ZeroClickBoost != 1.5 {
			t.Errorf("expected default zero click boost, got %v", cfg.Scoring.Search.ZeroClickBoost)
		}
		if cfg.Scoring.Detection.SlowResponse != 2*time.Second {
			t.Errorf("expected slowResponse 2s, got %v", cfg.Scoring.Detection.SlowResponse)
		}
		if cfg.Jira.ProjectKey != "SEO" {
			t.Errorf("expected jira project SEO, got %q", cfg.Jira.ProjectKey)
		}
	})

	t.Run("rejects unknown page type in multipliers", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".seoaudit")
		content := "scoring:\n  multipliers:\n    landing: 3.0\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); !errors.Is(err, ErrInvalidPageType) {
			t.Errorf("expected ErrInvalidPageType, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".seoaudit")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".seoaudit")
		if err := os.WriteFile(configPath, []byte("defaults:\n  maxPages: 25\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("ignores a directory", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile(t.TempDir()); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end with %s, got %s", AppName, XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected config dir to end with %s, got %s", AppName, XDGConfigDir())
	}
}
