package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/seoaudit/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "seoaudit.db"

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// AuditDB stores audit reports so later runs can tell new issues from
// existing ones and compare health over time.
type AuditDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the API server can read
	// while an audit writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run an audit first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

func (adb *AuditDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		generated_at TEXT NOT NULL,
		pages_audited INTEGER NOT NULL,
		health_score INTEGER NOT NULL,
		grade TEXT NOT NULL,
		severity_summary TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_generated ON audit_reports(generated_at);

	-- One row per site covered by a report.
	CREATE TABLE IF NOT EXISTS audit_sites (
		report_id INTEGER NOT NULL REFERENCES audit_reports(id) ON DELETE CASCADE,
		site TEXT NOT NULL,
		PRIMARY KEY (report_id, site)
	);

	CREATE INDEX IF NOT EXISTS idx_sites_site ON audit_sites(site);

	-- One row per issue key, used to mark issues as new or existing.
	CREATE TABLE IF NOT EXISTS audit_issues (
		report_id INTEGER NOT NULL REFERENCES audit_reports(id) ON DELETE CASCADE,
		fingerprint TEXT NOT NULL,
		url TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		team TEXT,
		impact_score REAL NOT NULL,
		PRIMARY KEY (report_id, fingerprint)
	);

	CREATE INDEX IF NOT EXISTS idx_issues_url ON audit_issues(url);
	`
	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAuditReport stores a report and its issue keys in one transaction.
// It returns the database ID of the stored report.
func (adb *AuditDB) SaveAuditReport(ctx context.Context, report *model.AuditReport) (id int64, err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(severitySummary(report.Summary))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO audit_reports (run_id, generated_at, pages_audited, health_score, grade, severity_summary, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.GeneratedAt.UTC().Format(timeLayout),
		report.PagesAudited,
		report.HealthScore,
		report.Grade,
		string(summaryJSON),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save audit report: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}

	for _, site := range report.Sites {
		if _, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO audit_sites (report_id, site) VALUES (?, ?)`, id, site); err != nil {
			return 0, fmt.Errorf("failed to save site %s: %w", site, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR IGNORE INTO audit_issues (report_id, fingerprint, url, issue_type, severity, team, impact_score)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, issue := range report.Issues {
		if _, err = stmt.ExecContext(ctx,
			id,
			issue.Key().Fingerprint(),
			issue.URL,
			issue.Type,
			issue.Severity.String(),
			string(issue.Team),
			issue.ImpactScore,
		); err != nil {
			return 0, fmt.Errorf("failed to save issue: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit report: %w", err)
	}
	return id, nil
}

func severitySummary(s model.Summary) map[string]int {
	return map[string]int{
		"critical": s.CriticalCount,
		"high":     s.HighCount,
		"medium":   s.MediumCount,
		"low":      s.LowCount,
	}
}

// StoredReport is a report together with its database ID.
type StoredReport struct {
	ID     int64              `json:"id"`
	Report *model.AuditReport `json:"report"`
}

// GetLatestAuditReport returns the most recent report covering site.
// An empty site matches any report. It returns nil when none exists.
func (adb *AuditDB) GetLatestAuditReport(ctx context.Context, site string) (*StoredReport, error) {
	query := `SELECT r.id, r.report_json FROM audit_reports r`
	var args []any
	if site != "" {
		query += ` JOIN audit_sites s ON s.report_id = r.id WHERE s.site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY r.generated_at DESC, r.id DESC LIMIT 1`

	return adb.queryReport(ctx, query, args...)
}

// GetAuditReportByID returns the report with the given database ID, or nil.
func (adb *AuditDB) GetAuditReportByID(ctx context.Context, id int64) (*StoredReport, error) {
	return adb.queryReport(ctx, `SELECT id, report_json FROM audit_reports WHERE id = ?`, id)
}

// GetAuditReportByRunID returns the report with the given run ID, or nil.
func (adb *AuditDB) GetAuditReportByRunID(ctx context.Context, runID string) (*StoredReport, error) {
	return adb.queryReport(ctx, `SELECT id, report_json FROM audit_reports WHERE run_id = ?`, runID)
}

func (adb *AuditDB) queryReport(ctx context.Context, query string, args ...any) (*StoredReport, error) {
	var (
		id         int64
		reportJSON string
	)
	err := adb.db.QueryRowContext(ctx, query, args...).Scan(&id, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &StoredReport{ID: id, Report: &report}, nil
}

// AuditMetadata summarizes a stored report without loading its issues.
type AuditMetadata struct {
	ID           int64          `json:"id"`
	RunID        string         `json:"run_id"`
	Sites        []string       `json:"sites"`
	GeneratedAt  time.Time      `json:"generated_at"`
	PagesAudited int            `json:"pages_audited"`
	HealthScore  int            `json:"health_score"`
	Grade        string         `json:"grade"`
	Severity     map[string]int `json:"severity"`
}

// GetAuditHistory lists reports covering site, newest first.
// An empty site lists every report. A non-zero since excludes older reports.
func (adb *AuditDB) GetAuditHistory(ctx context.Context, site string, since time.Time) ([]AuditMetadata, error) {
	query := `
	SELECT r.id, r.run_id, r.generated_at, r.pages_audited, r.health_score, r.grade, r.severity_summary,
		(SELECT group_concat(site, ',') FROM audit_sites WHERE report_id = r.id)
	FROM audit_reports r
	WHERE 1=1
	`
	var args []any
	if site != "" {
		query += ` AND EXISTS (SELECT 1 FROM audit_sites s WHERE s.report_id = r.id AND s.site = ?)`
		args = append(args, site)
	}
	if !since.IsZero() {
		query += ` AND r.generated_at >= ?`
		args = append(args, since.UTC().Format(timeLayout))
	}
	query += ` ORDER BY r.generated_at DESC, r.id DESC`

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var (
			meta        AuditMetadata
			generatedAt string
			summaryJSON sql.NullString
			sites       sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.RunID, &generatedAt, &meta.PagesAudited,
			&meta.HealthScore, &meta.Grade, &summaryJSON, &sites); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		meta.Severity = make(map[string]int)
		if summaryJSON.Valid && summaryJSON.String != "" {
			_ = json.Unmarshal([]byte(summaryJSON.String), &meta.Severity) //nolint:errcheck
		}
		if sites.Valid && sites.String != "" {
			meta.Sites = strings.Split(sites.String, ",")
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListSites returns every site that has at least one stored report.
func (adb *AuditDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT site FROM audit_sites ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// KnownIssueKeys returns the issue keys of the latest stored report for each
// of the given sites. The aggregator marks matching issues as existing.
func (adb *AuditDB) KnownIssueKeys(ctx context.Context, sites []string) (map[model.IssueKey]struct{}, error) {
	known := make(map[model.IssueKey]struct{})
	seen := make(map[int64]struct{})

	for _, site := range sites {
		var reportID int64
		err := adb.db.QueryRowContext(ctx, `
		SELECT r.id FROM audit_reports r
		JOIN audit_sites s ON s.report_id = r.id
		WHERE s.site = ?
		ORDER BY r.generated_at DESC, r.id DESC
		LIMIT 1
		`, site).Scan(&reportID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find latest report for %s: %w", site, err)
		}
		if _, dup := seen[reportID]; dup {
			continue
		}
		seen[reportID] = struct{}{}

		if err := adb.loadIssueKeys(ctx, reportID, known); err != nil {
			return nil, err
		}
	}
	return known, nil
}

func (adb *AuditDB) loadIssueKeys(ctx context.Context, reportID int64, into map[model.IssueKey]struct{}) error {
	rows, err := adb.db.QueryContext(ctx, `SELECT url, issue_type FROM audit_issues WHERE report_id = ?`, reportID)
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key model.IssueKey
		if err := rows.Scan(&key.URL, &key.Type); err != nil {
			return fmt.Errorf("failed to scan issue: %w", err)
		}
		into[key] = struct{}{}
	}
	return rows.Err()
}

// DeleteAuditReport removes a report and its issue rows.
func (adb *AuditDB) DeleteAuditReport(ctx context.Context, id int64) error {
	if _, err := adb.db.ExecContext(ctx, `DELETE FROM audit_reports WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete audit report: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
