package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *AuditDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newReport builds a small report for the given sites.
func newReport(at time.Time, sites []string, issues ...model.Issue) *model.AuditReport {
	r := model.NewAuditReport(at)
	r.Sites = sites
	r.PagesAudited = len(issues)
	r.Issues = issues
	for _, issue := range issues {
		r.Summary.Add(issue)
	}
	r.HealthScore = 90
	r.Grade = "A+"
	return r
}

func issue(url, issueType string, severity model.Severity) model.Issue {
	return model.Issue{
		URL:         url,
		Type:        issueType,
		Severity:    severity,
		Category:    model.CategoryContent,
		Team:        model.TeamMarketing,
		Status:      model.StatusNew,
		ImpactScore: 42.5,
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error %q", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		report := newReport(time.Now(), []string{"example.com"})
		if _, err := db1.SaveAuditReport(context.Background(), report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		latest, err := db2.GetLatestAuditReport(context.Background(), "example.com")
		if err != nil || latest == nil {
			t.Fatalf("expected stored report, got %v, %v", latest, err)
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists || !opts.EnableWAL {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

// TestSaveAuditReport tests storing and loading reports.
func TestSaveAuditReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newReport(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), []string{"example.com", "example.de"},
		issue("https://example.com/", model.IssueMissingMetaDescription, model.SeverityHigh),
		issue("https://example.de/", model.IssueMissingTitle, model.SeverityCritical),
	)

	id, err := db.SaveAuditReport(ctx, report)
	if err != nil {
		t.Fatalf("SaveAuditReport failed: %v", err)
	}

	t.Run("by database id", func(t *testing.T) {
		t.Parallel()

		stored, err := db.GetAuditReportByID(ctx, id)
		if err != nil || stored == nil {
			t.Fatalf("expected report, got %v, %v", stored, err)
		}
		if stored.Report.ID != report.ID || len(stored.Report.Issues) != 2 {
			t.Errorf("unexpected report %+v", stored.Report)
		}
		if stored.Report.Issues[1].Severity != model.SeverityCritical {
			t.Errorf("severity did not round-trip: %v", stored.Report.Issues[1].Severity)
		}
	})

	t.Run("by run id", func(t *testing.T) {
		t.Parallel()

		stored, err := db.GetAuditReportByRunID(ctx, report.ID)
		if err != nil || stored == nil || stored.ID != id {
			t.Fatalf("expected report %d, got %v, %v", id, stored, err)
		}
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		t.Parallel()

		stored, err := db.GetAuditReportByID(ctx, id+100)
		if err != nil || stored != nil {
			t.Errorf("expected nil, got %v, %v", stored, err)
		}
	})

	t.Run("duplicate run id is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := db.SaveAuditReport(ctx, report); err == nil {
			t.Error("expected error for duplicate run id")
		}
	})
}

// TestAuditHistory tests listing and filtering stored reports.
func TestAuditHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	reports := []*model.AuditReport{
		newReport(base, []string{"example.com"}, issue("https://example.com/a", model.IssueMissingTitle, model.SeverityCritical)),
		newReport(base.AddDate(0, 0, 7), []string{"example.com", "example.fr"}),
		newReport(base.AddDate(0, 0, 14), []string{"example.fr"}),
	}
	for _, r := range reports {
		if _, err := db.SaveAuditReport(ctx, r); err != nil {
			t.Fatalf("SaveAuditReport failed: %v", err)
		}
	}

	testCases := []struct {
		name  string
		site  string
		since time.Time
		want  []string
	}{
		{name: "all reports newest first", want: []string{reports[2].ID, reports[1].ID, reports[0].ID}},
		{name: "filtered by site", site: "example.com", want: []string{reports[1].ID, reports[0].ID}},
		{name: "filtered by date", site: "example.fr", since: base.AddDate(0, 0, 10), want: []string{reports[2].ID}},
		{name: "unknown site", site: "example.org"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			history, err := db.GetAuditHistory(ctx, tc.site, tc.since)
			if err != nil {
				t.Fatalf("GetAuditHistory failed: %v", err)
			}
			if len(history) != len(tc.want) {
				t.Fatalf("expected %d reports, got %d", len(tc.want), len(history))
			}
			for i, meta := range history {
				if meta.RunID != tc.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tc.want[i], meta.RunID)
				}
			}
		})
	}

	t.Run("metadata carries the summary", func(t *testing.T) {
		t.Parallel()

		history, err := db.GetAuditHistory(ctx, "example.com", time.Time{})
		if err != nil {
			t.Fatal(err)
		}
		oldest := history[len(history)-1]
		if oldest.Severity["critical"] != 1 {
			t.Errorf("expected 1 critical issue, got %v", oldest.Severity)
		}
		if !oldest.GeneratedAt.Equal(base) {
			t.Errorf("expected %v, got %v", base, oldest.GeneratedAt)
		}
		if len(history[0].Sites) != 2 {
			t.Errorf("expected 2 sites, got %v", history[0].Sites)
		}
	})

	t.Run("latest report per site", func(t *testing.T) {
		t.Parallel()

		latest, err := db.GetLatestAuditReport(ctx, "example.com")
		if err != nil || latest == nil {
			t.Fatalf("expected report, got %v, %v", latest, err)
		}
		if latest.Report.ID != reports[1].ID {
			t.Errorf("expected %s, got %s", reports[1].ID, latest.Report.ID)
		}
	})

	t.Run("lists sites", func(t *testing.T) {
		t.Parallel()

		sites, err := db.ListSites(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(sites, ",") != "example.com,example.fr" {
			t.Errorf("unexpected sites %v", sites)
		}
	})
}

// TestKnownIssueKeys tests looking up previously reported issues.
func TestKnownIssueKeys(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	old := newReport(base, []string{"example.com"},
		issue("https://example.com/", model.IssueMissingTitle, model.SeverityCritical))
	latest := newReport(base.AddDate(0, 0, 1), []string{"example.com"},
		issue("https://example.com/", model.IssueMissingMetaDescription, model.SeverityHigh))
	other := newReport(base, []string{"example.de"},
		issue("https://example.de/", model.IssueMissingH1, model.SeverityHigh))
	for _, r := range []*model.AuditReport{old, latest, other} {
		if _, err := db.SaveAuditReport(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	known, err := db.KnownIssueKeys(ctx, []string{"example.com", "example.de", "example.org"})
	if err != nil {
		t.Fatalf("KnownIssueKeys failed: %v", err)
	}
	if len(known) != 2 {
		t.Fatalf("expected 2 keys, got %v", known)
	}
	if _, ok := known[model.IssueKey{URL: "https://example.com/", Type: model.IssueMissingMetaDescription}]; !ok {
		t.Error("expected the latest report's issue")
	}
	if _, ok := known[model.IssueKey{URL: "https://example.com/", Type: model.IssueMissingTitle}]; ok {
		t.Error("issues of older reports must not be known")
	}
}

// TestDeleteAuditReport tests that deleting a report removes its rows.
func TestDeleteAuditReport(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := newReport(time.Now(), []string{"example.com"},
		issue("https://example.com/", model.IssueMissingTitle, model.SeverityCritical))
	id, err := db.SaveAuditReport(ctx, report)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteAuditReport(ctx, id); err != nil {
		t.Fatalf("DeleteAuditReport failed: %v", err)
	}

	known, err := db.KnownIssueKeys(ctx, []string{"example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if len(known) != 0 {
		t.Errorf("expected no known issues, got %v", known)
	}
	sites, err := db.ListSites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sites) != 0 {
		t.Errorf("expected no sites, got %v", sites)
	}
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		zero bool
	}{
		{in: "2026-01-02T03:04:05.123456789Z"},
		{in: "2026-01-02T03:04:05Z"},
		{in: "2026-01-02 03:04:05"},
		{in: "garbage", zero: true},
	}
	for _, tc := range testCases {
		if got := parseTimestamp(tc.in); got.IsZero() != tc.zero {
			t.Errorf("parseTimestamp(%q) = %v", tc.in, got)
		}
	}
}
