package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/audit"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/jira"
	"github.com/nao1215/seoaudit/internal/model"
)

// TestNewTicketsCmd tests the tickets command flags.
func TestNewTicketsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewTicketsCmd()
	for flag, shorthand := range map[string]string{
		"audit-id":        "i",
		"dry-run":         "n",
		"project":         "P",
		"config":          "c",
		"epic-name-field": "",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
}

func ticketReport(t *testing.T) *model.AuditReport {
	t.Helper()

	r := model.NewAuditReport(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	r.Sites = []string{"shop.example.com"}
	r.PagesAudited = 3
	r.HealthScore = 83
	r.Grade = "B"
	r.Issues = []model.Issue{
		{URL: "https://shop.example.com/checkout", Type: model.IssueServerError, Severity: model.SeverityCritical,
			Team: model.TeamTech, Category: model.CategoryTechnical, PageType: model.PageTypeCheckout, ImpactScore: 480},
		{URL: "https://shop.example.com/", Type: model.IssueMissingH1, Severity: model.SeverityMedium,
			Team: model.TeamMarketing, Category: model.CategoryContent, PageType: model.PageTypeHomepage, ImpactScore: 325},
	}
	for _, issue := range r.Issues {
		r.Summary.Add(issue)
	}
	r.Teams = audit.GroupByTeam(r.Issues)
	return r
}

// TestLoadTicketReport tests selecting the audit to export.
func TestLoadTicketReport(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	id, err := db.SaveAuditReport(t.Context(), ticketReport(t))
	if err != nil {
		t.Fatal(err)
	}
	clean := model.NewAuditReport(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	clean.Sites = []string{"clean.example.com"}
	clean.HealthScore = 100
	if _, err := db.SaveAuditReport(t.Context(), clean); err != nil {
		t.Fatal(err)
	}

	t.Run("by id", func(t *testing.T) {
		stored, err := loadTicketReport(t.Context(), db, ticketsOptions{auditID: id})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.ID != id {
			t.Errorf("expected audit %d, got %d", id, stored.ID)
		}
	})

	t.Run("latest for site", func(t *testing.T) {
		stored, err := loadTicketReport(t.Context(), db, ticketsOptions{site: "shop.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored.Report.Issues) != 2 {
			t.Errorf("expected 2 issues, got %d", len(stored.Report.Issues))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := loadTicketReport(t.Context(), db, ticketsOptions{auditID: id + 100})
		if !errors.Is(err, database.ErrAuditNotFound) {
			t.Errorf("expected ErrAuditNotFound, got %v", err)
		}
	})

	t.Run("unknown site", func(t *testing.T) {
		_, err := loadTicketReport(t.Context(), db, ticketsOptions{site: "other.example.com"})
		if !errors.Is(err, database.ErrNoHistory) {
			t.Errorf("expected ErrNoHistory, got %v", err)
		}
	})

	t.Run("audit without issues", func(t *testing.T) {
		_, err := loadTicketReport(t.Context(), db, ticketsOptions{site: "clean.example.com"})
		if err == nil || !strings.Contains(err.Error(), "nothing to export") {
			t.Errorf("expected nothing-to-export error, got %v", err)
		}
	})
}

// TestPrintPayloads tests the dry-run output.
func TestPrintPayloads(t *testing.T) {
	t.Parallel()

	set := jira.BuildTickets(ticketReport(t))

	var buf bytes.Buffer
	if err := printPayloads(&buf, dryRunProjectKey, set, "customfield_10011"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out dryRunOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if out.Epic == nil || len(out.Tasks) != 2 {
		t.Fatalf("expected an epic and 2 tasks, got %+v", out)
	}

	project, ok := out.Epic.Fields["project"].(map[string]any)
	if !ok || project["key"] != dryRunProjectKey {
		t.Errorf("unexpected project field %v", out.Epic.Fields["project"])
	}
	if _, ok := out.Epic.Fields["customfield_10011"]; !ok {
		t.Error("expected the epic name field on the epic")
	}
	if _, ok := out.Epic.Fields["parent"]; ok {
		t.Error("epic must not have a parent")
	}
	for _, task := range out.Tasks {
		parent, ok := task.Fields["parent"].(map[string]any)
		if !ok || parent["key"] != "EPIC-KEY" {
			t.Errorf("unexpected task parent %v", task.Fields["parent"])
		}
	}
}

func newFakeJira(t *testing.T, failTasks bool) *httptest.Server {
	t.Helper()

	var next atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/rest/api/3/myself":
			_, _ = w.Write([]byte(`{"displayName":"Audit Bot"}`)) //nolint:errcheck
		case r.URL.Path == "/rest/api/3/issue" && r.Method == http.MethodPost:
			var body jira.Payload
			_ = json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
			if _, isTask := body.Fields["parent"]; isTask && failTasks {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errorMessages":["Issue type is invalid"]}`)) //nolint:errcheck
				return
			}
			w.WriteHeader(http.StatusCreated)
			key := "SEO-" + strconv.Itoa(int(next.Add(1)))
			_ = json.NewEncoder(w).Encode(jira.CreatedIssue{ID: "1", Key: key}) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// TestCreateTickets tests ticket creation against a fake Jira server.
func TestCreateTickets(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	set := jira.BuildTickets(ticketReport(t))

	t.Run("creates the epic and one task per team", func(t *testing.T) {
		t.Parallel()

		server := newFakeJira(t, false)
		client := jira.New(server.URL, "bot@example.com", "token", "SEO",
			jira.WithHTTPClient(server.Client()), jira.WithRateLimit(1000))

		var buf bytes.Buffer
		if err := createTickets(t.Context(), client, set, &buf, logger); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Epic: SEO-1",
			server.URL + "/browse/SEO-1",
			model.TeamTech.DisplayName(),
			model.TeamMarketing.DisplayName(),
			"Created 3 of 3 tickets",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, model.TeamDesign.DisplayName()) {
			t.Error("design team has no issues and must not get a task")
		}
	})

	t.Run("reports failed tasks", func(t *testing.T) {
		t.Parallel()

		server := newFakeJira(t, true)
		client := jira.New(server.URL, "bot@example.com", "token", "SEO",
			jira.WithHTTPClient(server.Client()), jira.WithRateLimit(1000))

		var buf bytes.Buffer
		err := createTickets(t.Context(), client, set, &buf, logger)
		if err == nil {
			t.Fatal("expected error for failed tasks")
		}
		if !strings.Contains(buf.String(), "Created 1 of 3 tickets") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("unreachable jira", func(t *testing.T) {
		t.Parallel()

		server := newFakeJira(t, false)
		client := jira.New(server.URL+"/missing", "bot@example.com", "token", "SEO",
			jira.WithHTTPClient(server.Client()), jira.WithRateLimit(1000))

		err := createTickets(t.Context(), client, set, io.Discard, logger)
		if err == nil || !strings.Contains(err.Error(), "jira connection failed") {
			t.Errorf("expected connection error, got %v", err)
		}
	})
}
