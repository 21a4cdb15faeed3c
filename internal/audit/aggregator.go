package audit

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/seoaudit/internal/classify"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/detect"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/route"
	"github.com/nao1215/seoaudit/internal/score"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoPages is returned when Run is called without any page.
	ErrNoPages = errors.New("no pages to audit")

	// ErrNoUsablePages is returned when every input page was skipped.
	ErrNoUsablePages = errors.New("no usable pages to audit")
)

// Skip reasons recorded in the report.
const (
	ReasonNilPage      = "nil page"
	ReasonMissingURL   = "missing url"
	ReasonDuplicateURL = "duplicate url"
)

// highPriorityMultiplier is the page multiplier at which a page counts as business critical.
const highPriorityMultiplier = 4.0

// Aggregator runs the whole audit over a set of pages: classification,
// detection, scoring, routing, ranking and summarizing.
type Aggregator struct {
	scoring     config.ScoringConfig
	classifier  *classify.Classifier
	detector    *detect.Detector
	scorer      *score.Scorer
	logger      *slog.Logger
	now         func() time.Time
	concurrency int
	known       map[model.IssueKey]struct{}
	sites       []string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger for audit progress.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock sets the clock used for the report timestamp. Issues found
// during the run carry the same timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithConcurrency sets how many pages are analyzed at once.
// Default is 10 if not specified.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithKnownIssues marks issues found in a previous audit as existing.
func WithKnownIssues(known map[model.IssueKey]struct{}) Option {
	return func(a *Aggregator) {
		a.known = known
	}
}

// WithSites sets the site names recorded in the report.
// Without it, the distinct page domains are used.
func WithSites(sites ...string) Option {
	return func(a *Aggregator) {
		a.sites = sites
	}
}

// New creates an Aggregator from its collaborators.
func New(scoring config.ScoringConfig, classifier *classify.Classifier, detector *detect.Detector, scorer *score.Scorer, opts ...Option) *Aggregator {
	a := &Aggregator{
		scoring:     scoring,
		classifier:  classifier,
		detector:    detector,
		scorer:      scorer,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		concurrency: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits the pages and builds the report. The input pages are not modified.
// Cancellation is only checked before the run starts; once started, the
// run always completes.
func (a *Aggregator) Run(ctx context.Context, pages []*model.Page) (*model.AuditReport, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	usable, skipped := a.prepare(pages)
	if len(usable) == 0 {
		return nil, ErrNoUsablePages
	}

	a.logger.Info("starting audit",
		"pages", len(usable),
		"skipped", len(skipped),
		"concurrency", a.concurrency,
	)
	startTime := time.Now()
	runAt := a.now()

	for _, page := range usable {
		page.Type = a.classifier.Classify(page.URL)
	}
	detect.MarkDuplicates(usable, a.scoring.Detection)

	// Indexed by page so the result never depends on scheduling.
	results := make([][]model.Issue, len(usable))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, page := range usable {
		g.Go(func() error {
			results[i] = a.analyze(page, runAt)
			return nil
		})
	}
	_ = g.Wait()

	issues := make([]model.Issue, 0)
	for _, pageIssues := range results {
		issues = append(issues, pageIssues...)
	}
	SortIssues(issues)

	report := model.NewAuditReport(runAt)
	report.Sites = a.siteNames(usable)
	report.PagesAudited = len(usable)
	report.Issues = issues
	report.Skipped = skipped
	report.HealthScore = HealthScore(issues, a.scoring.Health)
	report.Grade = Grade(report.HealthScore)
	for _, issue := range issues {
		report.Summary.Add(issue)
	}
	report.Teams = GroupByTeam(issues)
	report.Insights = a.insights(usable, issues)

	a.logger.Info("audit complete",
		"issues", len(issues),
		"health_score", report.HealthScore,
		"grade", report.Grade,
		"elapsed", time.Since(startTime),
	)
	return report, nil
}

// prepare drops unusable records and copies the rest so that annotation
// and classification never touch the caller's pages.
func (a *Aggregator) prepare(pages []*model.Page) ([]*model.Page, []model.SkippedPage) {
	usable := make([]*model.Page, 0, len(pages))
	var skipped []model.SkippedPage
	seen := make(map[string]struct{}, len(pages))

	for i, page := range pages {
		switch {
		case page == nil:
			skipped = append(skipped, model.SkippedPage{Index: i, Reason: ReasonNilPage})
			continue
		case page.URL == "":
			skipped = append(skipped, model.SkippedPage{Index: i, Reason: ReasonMissingURL})
			continue
		}
		if _, dup := seen[page.URL]; dup {
			skipped = append(skipped, model.SkippedPage{Index: i, URL: page.URL, Reason: ReasonDuplicateURL})
			continue
		}
		seen[page.URL] = struct{}{}
		usable = append(usable, copyPage(page))
	}

	for _, s := range skipped {
		a.logger.Warn("skipping page", "index", s.Index, "url", s.URL, "reason", s.Reason)
	}
	return usable, skipped
}

func copyPage(page *model.Page) *model.Page {
	p := *page
	if page.Crawl != nil {
		crawl := *page.Crawl
		if crawl.Document != nil {
			doc := *crawl.Document
			crawl.Document = &doc
		}
		p.Crawl = &crawl
	}
	return &p
}

// analyze detects, scores and routes the issues of one page.
func (a *Aggregator) analyze(page *model.Page, at time.Time) []model.Issue {
	issues := a.detector.DetectAt(page, at)
	for i := range issues {
		issue := route.Assign(issues[i])
		issue.ImpactScore = a.scorer.Score(issue, page)
		if _, ok := a.known[issue.Key()]; ok {
			issue.Status = model.StatusExisting
		} else {
			issue.Status = model.StatusNew
		}
		issues[i] = issue
	}
	a.logger.Debug("page analyzed", "url", page.URL, "page_type", page.Type, "issues", len(issues))
	return issues
}

func (a *Aggregator) siteNames(pages []*model.Page) []string {
	if len(a.sites) > 0 {
		return slices.Clone(a.sites)
	}
	sites := make([]string, 0)
	for _, page := range pages {
		if page.Domain != "" && !slices.Contains(sites, page.Domain) {
			sites = append(sites, page.Domain)
		}
	}
	slices.Sort(sites)
	return sites
}

// SortIssues orders issues by impact score descending, then severity,
// URL and issue type, so equal scores still sort deterministically.
func SortIssues(issues []model.Issue) {
	slices.SortStableFunc(issues, func(x, y model.Issue) int {
		if c := cmp.Compare(y.ImpactScore, x.ImpactScore); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Severity.Rank(), y.Severity.Rank()); c != 0 {
			return c
		}
		if c := cmp.Compare(x.URL, y.URL); c != 0 {
			return c
		}
		return cmp.Compare(x.Type, y.Type)
	})
}

func (a *Aggregator) insights(pages []*model.Page, issues []model.Issue) model.Insights {
	var insights model.Insights

	byURL := make(map[string]*model.PageInsight)
	for _, issue := range issues {
		if detect.IsSearchIssue(issue.Type) {
			insights.SearchOpportunities++
		}
		if a.scoring.Multiplier(issue.PageType) < highPriorityMultiplier {
			continue
		}
		if issue.Severity == model.SeverityCritical {
			insights.CriticalBusinessImpact = append(insights.CriticalBusinessImpact, issue)
		}
		pi, ok := byURL[issue.URL]
		if !ok {
			pi = &model.PageInsight{URL: issue.URL, PageType: issue.PageType}
			byURL[issue.URL] = pi
		}
		pi.IssueCount++
		if issue.Severity == model.SeverityCritical {
			pi.CriticalCount++
		}
		pi.TopImpact = max(pi.TopImpact, issue.ImpactScore)
	}

	// Keep input order for pages, then rank.
	for _, page := range pages {
		if pi, ok := byURL[page.URL]; ok {
			insights.HighPriorityPages = append(insights.HighPriorityPages, *pi)
		}
	}
	slices.SortStableFunc(insights.HighPriorityPages, func(x, y model.PageInsight) int {
		if c := cmp.Compare(y.TopImpact, x.TopImpact); c != 0 {
			return c
		}
		return cmp.Compare(x.URL, y.URL)
	})
	return insights
}
