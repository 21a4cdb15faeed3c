package audit

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/classify"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/detect"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/score"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator(opts ...Option) *Aggregator {
	scoring := config.DefaultScoring()
	clock := func() time.Time { return fixedTime }
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(scoring,
		classify.New(),
		detect.New(scoring, detect.WithClock(clock)),
		score.New(scoring),
		opts...,
	)
}

// healthyPage returns a crawled page that raises no issue on its own.
// Title and description embed the URL so pages never duplicate each other.
func healthyPage(url string) *model.Page {
	return &model.Page{
		URL:    url,
		Domain: "example.com",
		Crawl: &model.CrawlData{
			StatusCode:   200,
			ResponseTime: 300 * time.Millisecond,
			PageSize:     80_000,
			ContentType:  "text/html; charset=utf-8",
			Document: &model.Document{
				Title:           "Example page " + url,
				MetaDescription: url + " " + strings.Repeat("Lightweight running shoes with grip. ", 3),
				H1:              []string{"Heading"},
				Canonical:       url,
				HasViewport:     true,
				WordCount:       900,
				ImageCount:      3,
				InternalLinks:   10,
				ExternalLinks:   1,
				StructuredData: model.StructuredData{
					JSONLDBlocks: 1,
					Types:        []string{"Organization", "Product"},
				},
			},
		},
	}
}

func findIssue(issues []model.Issue, url, issueType string) (model.Issue, bool) {
	for _, issue := range issues {
		if issue.URL == url && issue.Type == issueType {
			return issue, true
		}
	}
	return model.Issue{}, false
}

// TestRunValidation tests the errors returned for unusable input.
func TestRunValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		pages []*model.Page
		want  error
	}{
		{name: "nil input", pages: nil, want: ErrNoPages},
		{name: "empty input", pages: []*model.Page{}, want: ErrNoPages},
		{name: "only pages without url", pages: []*model.Page{{}, nil}, want: ErrNoUsablePages},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report, err := newTestAggregator().Run(context.Background(), tc.pages)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if report != nil {
				t.Error("expected nil report on error")
			}
		})
	}
}

// TestRunSkipsBadRecords tests that bad records are reported and the rest audited.
func TestRunSkipsBadRecords(t *testing.T) {
	t.Parallel()

	pages := []*model.Page{
		healthyPage("https://example.com/"),
		{Domain: "example.com"},
		nil,
		healthyPage("https://example.com/"),
	}

	report, err := newTestAggregator().Run(context.Background(), pages)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.PagesAudited != 1 {
		t.Errorf("expected 1 audited page, got %d", report.PagesAudited)
	}

	want := []model.SkippedPage{
		{Index: 1, Reason: ReasonMissingURL},
		{Index: 2, Reason: ReasonNilPage},
		{Index: 3, URL: "https://example.com/", Reason: ReasonDuplicateURL},
	}
	if !reflect.DeepEqual(report.Skipped, want) {
		t.Errorf("skipped = %+v, want %+v", report.Skipped, want)
	}
}

// TestRunHomepageZeroClicks tests scoring of a visible homepage that earns no clicks.
func TestRunHomepageZeroClicks(t *testing.T) {
	t.Parallel()

	home := healthyPage("https://example.com/")
	home.Crawl.Document.MetaDescription = ""
	home.Search = &model.SearchMetrics{Impressions: 5000, Clicks: 0, Position: 3}

	report, err := newTestAggregator().Run(context.Background(), []*model.Page{home})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	testCases := []struct {
		name      string
		issueType string
		impact    float64
		team      model.Team
	}{
		{name: "missing meta description is amplified", issueType: model.IssueMissingMetaDescription, impact: 337.5, team: model.TeamMarketing},
		{name: "zero clicks is raised", issueType: model.IssueZeroClicks, impact: 712.5, team: model.TeamTech},
		{name: "high traffic technical is raised", issueType: model.IssueHighTrafficTechnical, impact: 675, team: model.TeamTech},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			issue, ok := findIssue(report.Issues, home.URL, tc.issueType)
			if !ok {
				t.Fatalf("expected %q issue, got %+v", tc.issueType, report.Issues)
			}
			if issue.ImpactScore != tc.impact {
				t.Errorf("impact = %v, want %v", issue.ImpactScore, tc.impact)
			}
			if issue.Team != tc.team {
				t.Errorf("team = %s, want %s", issue.Team, tc.team)
			}
			if issue.PageType != model.PageTypeHomepage {
				t.Errorf("page type = %s, want homepage", issue.PageType)
			}
		})
	}

	if len(report.Issues) != 3 {
		t.Errorf("expected 3 issues, got %d", len(report.Issues))
	}
	if report.Issues[0].Type != model.IssueZeroClicks {
		t.Errorf("expected zero clicks ranked first, got %q", report.Issues[0].Type)
	}
	// 100 - 2*10 - 2
	if report.HealthScore != 78 || report.Grade != "B" {
		t.Errorf("health = %d %s, want 78 B", report.HealthScore, report.Grade)
	}
	if len(report.Insights.CriticalBusinessImpact) != 2 {
		t.Errorf("expected 2 critical business issues, got %d", len(report.Insights.CriticalBusinessImpact))
	}
	if report.Insights.SearchOpportunities != 1 {
		t.Errorf("expected 1 search opportunity, got %d", report.Insights.SearchOpportunities)
	}
}

// TestRunRanksHomepageFirst tests that the same issue ranks higher on the homepage.
func TestRunRanksHomepageFirst(t *testing.T) {
	t.Parallel()

	other := healthyPage("https://example.com/about")
	other.Crawl.Document.H1 = nil
	home := healthyPage("https://example.com/")
	home.Crawl.Document.H1 = nil

	report, err := newTestAggregator().Run(context.Background(), []*model.Page{other, home})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", report.Issues)
	}
	if report.Issues[0].URL != home.URL {
		t.Errorf("expected homepage first, got %s", report.Issues[0].URL)
	}
	if report.Issues[0].ImpactScore <= report.Issues[1].ImpactScore {
		t.Errorf("expected homepage score %v above %v", report.Issues[0].ImpactScore, report.Issues[1].ImpactScore)
	}
	if len(report.Insights.HighPriorityPages) != 1 || report.Insights.HighPriorityPages[0].URL != home.URL {
		t.Errorf("expected only the homepage as high priority, got %+v", report.Insights.HighPriorityPages)
	}
}

// TestRunPageWithoutData tests that a page with no source data yields a clean report.
func TestRunPageWithoutData(t *testing.T) {
	t.Parallel()

	report, err := newTestAggregator().Run(context.Background(), []*model.Page{{URL: "https://example.com/x"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Errorf("expected no issues, got %+v", report.Issues)
	}
	if report.HealthScore != 100 || report.Grade != "A+" {
		t.Errorf("health = %d %s, want 100 A+", report.HealthScore, report.Grade)
	}
	if len(report.Teams) != 0 {
		t.Errorf("expected no team groups, got %+v", report.Teams)
	}
	if report.PagesAudited != 1 {
		t.Errorf("expected 1 audited page, got %d", report.PagesAudited)
	}
}

// TestRunIsDeterministic tests that repeated runs give identical issues.
func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []*model.Page {
		var pages []*model.Page
		for _, path := range []string{"", "products/a", "products/b", "category/shoes", "checkout", "blog/post"} {
			p := healthyPage("https://example.com/" + path)
			p.Crawl.Document.H1 = nil
			p.Crawl.Document.Title = "Shared title for every page"
			p.Search = &model.SearchMetrics{Impressions: 2000, Clicks: 10, CTR: 0.005, Position: 4}
			pages = append(pages, p)
		}
		return pages
	}

	first, err := newTestAggregator(WithConcurrency(3)).Run(context.Background(), build())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := newTestAggregator(WithConcurrency(1)).Run(context.Background(), build())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Issues, second.Issues) {
		t.Error("expected identical issues across runs")
	}
	if first.HealthScore != second.HealthScore {
		t.Errorf("health differs: %d vs %d", first.HealthScore, second.HealthScore)
	}
	if first.ID == second.ID {
		t.Error("expected distinct report IDs")
	}
	if _, ok := findIssue(first.Issues, "https://example.com/blog/post", model.IssueDuplicateTitle); !ok {
		t.Error("expected shared titles to be reported as duplicates")
	}
}

// TestRunDoesNotModifyInput tests that classification and duplicate marking work on copies.
func TestRunDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	a := healthyPage("https://example.com/products/a")
	b := healthyPage("https://example.com/products/b")
	a.Crawl.Document.Title = "Same title on both pages"
	b.Crawl.Document.Title = "Same title on both pages"

	if _, err := newTestAggregator().Run(context.Background(), []*model.Page{a, b}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if a.Type != "" || b.Type != "" {
		t.Errorf("expected input page types untouched, got %q and %q", a.Type, b.Type)
	}
	if a.Crawl.Document.DuplicateTitle || b.Crawl.Document.DuplicateTitle {
		t.Error("expected input documents untouched")
	}
}

// TestRunKnownIssues tests that issues from a previous audit are marked existing.
func TestRunKnownIssues(t *testing.T) {
	t.Parallel()

	page := healthyPage("https://example.com/about")
	page.Crawl.Document.H1 = nil
	page.Crawl.Document.Canonical = ""

	known := map[model.IssueKey]struct{}{
		{URL: page.URL, Type: model.IssueMissingH1}: {},
	}
	report, err := newTestAggregator(WithKnownIssues(known)).Run(context.Background(), []*model.Page{page})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	h1, _ := findIssue(report.Issues, page.URL, model.IssueMissingH1)
	if h1.Status != model.StatusExisting {
		t.Errorf("expected known issue to be existing, got %s", h1.Status)
	}
	canonical, _ := findIssue(report.Issues, page.URL, model.IssueMissingCanonical)
	if canonical.Status != model.StatusNew {
		t.Errorf("expected unseen issue to be new, got %s", canonical.Status)
	}
	if report.Summary.NewCount != 1 {
		t.Errorf("expected 1 new issue, got %d", report.Summary.NewCount)
	}
}

// TestRunSites tests how site names are recorded.
func TestRunSites(t *testing.T) {
	t.Parallel()

	t.Run("page domains are used by default", func(t *testing.T) {
		t.Parallel()

		b := healthyPage("https://b.example.org/")
		b.Domain = "b.example.org"
		report, err := newTestAggregator().Run(context.Background(), []*model.Page{b, healthyPage("https://example.com/")})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		want := []string{"b.example.org", "example.com"}
		if !reflect.DeepEqual(report.Sites, want) {
			t.Errorf("sites = %v, want %v", report.Sites, want)
		}
	})

	t.Run("configured sites take precedence", func(t *testing.T) {
		t.Parallel()

		report, err := newTestAggregator(WithSites("shop")).Run(context.Background(), []*model.Page{healthyPage("https://example.com/")})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !reflect.DeepEqual(report.Sites, []string{"shop"}) {
			t.Errorf("sites = %v, want [shop]", report.Sites)
		}
	})
}

// TestRunCancelled tests that a context cancelled before the run stops it.
func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAggregator().Run(ctx, []*model.Page{healthyPage("https://example.com/")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestRunCompletesAfterCancellation tests that cancelling during a run
// still yields the full report.
func TestRunCompletesAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scoring := config.DefaultScoring()
	cancelOnFirstPage := detect.NewRule("cancel", func(*model.Page) (detect.Finding, bool) {
		cancel()
		return detect.Finding{}, false
	})
	a := New(scoring,
		classify.New(),
		detect.New(scoring, detect.WithRule(cancelOnFirstPage)),
		score.New(scoring),
		WithConcurrency(1),
		WithClock(func() time.Time { return fixedTime }),
	)

	first := healthyPage("https://example.com/")
	second := healthyPage("https://example.com/products/shoe")
	second.Crawl.Document.H1 = nil

	report, err := a.Run(ctx, []*model.Page{first, second})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.PagesAudited != 2 {
		t.Errorf("got %d pages audited, expected 2", report.PagesAudited)
	}
	if !hasIssue(report.Issues, second.URL, model.IssueMissingH1) {
		t.Errorf("expected Missing H1 on the second page, got %+v", report.Issues)
	}
}

// TestRunStampsIssuesWithRunTime tests that issues share the report timestamp
// even when the detector has its own clock.
func TestRunStampsIssuesWithRunTime(t *testing.T) {
	t.Parallel()

	scoring := config.DefaultScoring()
	detectorTime := fixedTime.Add(-48 * time.Hour)
	a := New(scoring,
		classify.New(),
		detect.New(scoring, detect.WithClock(func() time.Time { return detectorTime })),
		score.New(scoring),
		WithClock(func() time.Time { return fixedTime }),
	)

	page := healthyPage("https://example.com/")
	page.Crawl.Document.H1 = nil

	report, err := a.Run(context.Background(), []*model.Page{page})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
	for _, issue := range report.Issues {
		if !issue.DetectedAt.Equal(report.GeneratedAt) {
			t.Errorf("%s detected at %v, report generated at %v", issue.Type, issue.DetectedAt, report.GeneratedAt)
		}
	}
}

func hasIssue(issues []model.Issue, url, issueType string) bool {
	for _, issue := range issues {
		if issue.URL == url && issue.Type == issueType {
			return true
		}
	}
	return false
}

// TestSortIssues tests the tie-breaking order of equal scores.
func TestSortIssues(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		{URL: "b", Type: "X", Severity: model.SeverityLow, ImpactScore: 10},
		{URL: "a", Type: "Y", Severity: model.SeverityLow, ImpactScore: 10},
		{URL: "a", Type: "X", Severity: model.SeverityLow, ImpactScore: 10},
		{URL: "z", Type: "X", Severity: model.SeverityCritical, ImpactScore: 10},
		{URL: "z", Type: "Z", Severity: model.SeverityLow, ImpactScore: 20},
	}
	SortIssues(issues)

	want := []string{"z/Z", "z/X", "a/X", "a/Y", "b/X"}
	for i, issue := range issues {
		if got := issue.URL + "/" + issue.Type; got != want[i] {
			t.Errorf("position %d = %s, want %s", i, got, want[i])
		}
	}
}
