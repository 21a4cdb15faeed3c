// Package score computes the business impact of an issue.
//
// The impact score is
//
//	catalog weight × page type multiplier × search adjustment
//
// where the search adjustment amplifies issues on pages that are seen in
// search but not clicked. Scoring is a pure function of its inputs.
package score

import (
	"math"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/model"
)

// Scorer computes impact scores from read-only scoring tables.
type Scorer struct {
	cfg config.ScoringConfig
}

// New creates a Scorer.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the impact score of an issue on a page. The result is
// non-negative and rounded to two decimals.
func (s *Scorer) Score(issue model.Issue, page *model.Page) float64 {
	pageType := issue.PageType
	var metrics *model.SearchMetrics
	if page != nil {
		pageType = page.Type
		metrics = page.Search
	}

	weight := float64(model.SeverityWeight(issue.Type))
	raw := weight * s.cfg.Multiplier(pageType) * s.Adjustment(metrics)
	return math.Max(0, math.Round(raw*100)/100)
}

// Adjustment returns the search amplifier for a page.
// Without search data, or below the visibility threshold, it is 1.
func (s *Scorer) Adjustment(m *model.SearchMetrics) float64 {
	th := s.cfg.Search
	switch {
	case th.HasZeroClicks(m):
		return th.ZeroClickBoost
	case th.HasLowCTR(m):
		return th.LowCTRBoost
	default:
		return 1.0
	}
}
