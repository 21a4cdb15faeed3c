package detect

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// Finding is what a rule reports before catalog metadata is attached.
type Finding struct {
	// Type is the catalog issue type.
	Type string

	// Severity overrides the catalog severity when non-zero.
	Severity model.Severity

	// Description explains the problem on this specific page.
	Description string
}

// Rule checks one condition on one page.
//
// Evaluate must return ok=false when the data the rule needs is absent.
// Rules must not modify the page.
type Rule interface {
	// Name returns the rule's name for logging.
	Name() string

	// Evaluate returns at most one finding for the page.
	Evaluate(page *model.Page) (Finding, bool)
}

type ruleFunc struct {
	name string
	fn   func(*model.Page) (Finding, bool)
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Evaluate(page *model.Page) (Finding, bool) { return r.fn(page) }

// NewRule wraps a function as a Rule.
func NewRule(name string, fn func(*model.Page) (Finding, bool)) Rule {
	return ruleFunc{name: name, fn: fn}
}

// Detector runs every registered rule against a page and turns the
// findings into issues. It is safe for concurrent use once constructed.
type Detector struct {
	rules  []Rule
	search config.SearchThresholds
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for unknown issue type warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithClock sets the clock used for the detected timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// WithRule registers an additional rule after the built-in rules.
func WithRule(rule Rule) Option {
	return func(d *Detector) {
		d.rules = append(d.rules, rule)
	}
}

// New creates a Detector with all built-in rules configured from scoring.
func New(scoring config.ScoringConfig, opts ...Option) *Detector {
	d := &Detector{
		search: scoring.Search,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	d.rules = builtinRules(scoring)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func builtinRules(scoring config.ScoringConfig) []Rule {
	th := scoring.Detection
	s := scoring.Search
	return []Rule{
		httpStatusRule(),
		responseTimeRule(th),
		pageSizeRule(th),
		noindexRule(),
		canonicalRule(),
		titleRule(),
		titleLengthRule(th),
		genericTitleRule(th),
		metaDescriptionRule(),
		metaLengthRule(th),
		h1Rule(),
		altTextRule(),
		thinContentRule(th),
		internalLinksRule(th),
		externalLinksRule(th),
		structuredDataRule(),
		schemaTypeRule(),
		mobileRule(),
		coreWebVitalsRule(th),
		searchClicksRule(s),
		searchPositionRule(s),
		searchOpportunityRule(s),
	}
}

// Rules returns the names of the registered rules in evaluation order.
func (d *Detector) Rules() []string {
	names := make([]string, len(d.rules))
	for i, r := range d.rules {
		names[i] = r.Name()
	}
	return names
}

// Detect returns the issues found on a page, at most one per issue type.
// A page without any data yields no issues.
func (d *Detector) Detect(page *model.Page) []model.Issue {
	return d.DetectAt(page, d.now())
}

// DetectAt is Detect with an explicit detection time.
func (d *Detector) DetectAt(page *model.Page, detectedAt time.Time) []model.Issue {
	if page == nil || !page.HasData() {
		return nil
	}

	seen := make(map[string]struct{})
	issues := make([]model.Issue, 0)

	add := func(f Finding) {
		if _, dup := seen[f.Type]; dup {
			return
		}
		seen[f.Type] = struct{}{}
		issues = append(issues, d.toIssue(page, f, detectedAt))
	}

	for _, rule := range d.rules {
		f, ok := rule.Evaluate(page)
		if !ok {
			continue
		}
		add(f)
	}

	if f, ok := d.highTrafficFinding(page, issues); ok {
		add(f)
	}

	return issues
}

func (d *Detector) toIssue(page *model.Page, f Finding, detectedAt time.Time) model.Issue {
	entry, ok := model.Lookup(f.Type)
	if !ok {
		d.logger.Warn("unknown issue type, using catalog defaults",
			"issue_type", f.Type,
			"url", page.URL,
		)
	}
	severity := entry.Severity
	if f.Severity != 0 {
		severity = f.Severity
	}
	return model.Issue{
		URL:            page.URL,
		Type:           f.Type,
		Severity:       severity,
		Category:       entry.Category,
		PageType:       page.Type,
		Description:    f.Description,
		Recommendation: entry.Recommendation,
		DetectedAt:     detectedAt,
		Status:         model.StatusNew,
	}
}

// searchIssueTypes are raised from search metrics alone.
var searchIssueTypes = map[string]struct{}{
	model.IssueZeroClicks:           {},
	model.IssueLowCTR:               {},
	model.IssuePoorPosition:         {},
	model.IssueHighValueOpportunity: {},
}

// IsSearchIssue reports whether the issue type is raised from search metrics alone.
func IsSearchIssue(issueType string) bool {
	_, ok := searchIssueTypes[issueType]
	return ok
}

// highTrafficFinding flags visible pages that also have crawl or performance issues.
func (d *Detector) highTrafficFinding(page *model.Page, issues []model.Issue) (Finding, bool) {
	if page.Search == nil || page.Search.Impressions < d.search.HighImpressions {
		return Finding{}, false
	}
	technical := 0
	for _, issue := range issues {
		if !IsSearchIssue(issue.Type) {
			technical++
		}
	}
	if technical == 0 {
		return Finding{}, false
	}
	return Finding{
		Type:        model.IssueHighTrafficTechnical,
		Description: fmt.Sprintf("Page with %d impressions has %d technical issues", page.Search.Impressions, technical),
	}, true
}
