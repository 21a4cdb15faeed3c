package config

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// ScoringConfig holds every tunable number used by detection, scoring and
// health computation. The zero value is not useful; start from DefaultScoring.
type ScoringConfig struct {
	// Multipliers weights issues by the business value of the page type.
	Multipliers map[model.PageType]float64 `yaml:"multipliers,omitempty"`

	Search SearchThresholds `yaml:"search,omitempty"`

	Detection DetectionThresholds `yaml:"detection,omitempty"`

	Health HealthDeductions `yaml:"health,omitempty"`
}

// SearchThresholds decide when search-console metrics raise issues or amplify scores.
type SearchThresholds struct {
	// HighImpressions is the impression count at which a page counts as visible.
	HighImpressions int64 `yaml:"highImpressions,omitempty"`

	// NearZeroClicks is the click count at or below which a visible page
	// counts as earning no clicks.
	NearZeroClicks int64 `yaml:"nearZeroClicks"`

	// LowCTRRatio marks CTR as low when it is below
	// ExpectedCTRAt(position) * LowCTRRatio.
	LowCTRRatio float64 `yaml:"lowCTRRatio,omitempty"`

	// ExpectedCTR maps a rounded average position to its typical CTR.
	ExpectedCTR map[int]float64 `yaml:"expectedCTR,omitempty"`

	// ZeroClickBoost multiplies scores on visible pages without clicks.
	ZeroClickBoost float64 `yaml:"zeroClickBoost,omitempty"`

	// LowCTRBoost multiplies scores on visible pages with low CTR for their position.
	LowCTRBoost float64 `yaml:"lowCTRBoost,omitempty"`

	// PoorPositionImpressions and PoorPosition raise a poor-position issue when
	// impressions exceed the first and position exceeds the second.
	PoorPositionImpressions int64   `yaml:"poorPositionImpressions,omitempty"`
	PoorPosition            float64 `yaml:"poorPosition,omitempty"`

	// OpportunityImpressions is the impression count above which a page is a
	// high value opportunity.
	OpportunityImpressions int64 `yaml:"opportunityImpressions,omitempty"`
}

// Visible reports whether a page has enough impressions for its clicks to matter.
func (s SearchThresholds) Visible(m *model.SearchMetrics) bool {
	return m != nil && m.Impressions >= s.HighImpressions
}

// HasZeroClicks reports whether a visible page earns no clicks.
func (s SearchThresholds) HasZeroClicks(m *model.SearchMetrics) bool {
	return s.Visible(m) && m.Clicks <= s.NearZeroClicks
}

// HasLowCTR reports whether a visible page with clicks has a CTR below the
// expected CTR for its position scaled by LowCTRRatio.
func (s SearchThresholds) HasLowCTR(m *model.SearchMetrics) bool {
	if !s.Visible(m) || s.HasZeroClicks(m) {
		return false
	}
	return m.ClickThroughRate() < s.ExpectedCTRAt(m.Position)*s.LowCTRRatio
}

// ExpectedCTRAt returns the typical CTR for an average position.
// Positions past the table use the value of the last listed position.
func (s SearchThresholds) ExpectedCTRAt(position float64) float64 {
	if len(s.ExpectedCTR) == 0 {
		return 0
	}
	keys := slices.Sorted(maps.Keys(s.ExpectedCTR))
	pos := int(math.Round(position))
	if pos < keys[0] {
		pos = keys[0]
	}
	// Use the first listed position at or beyond pos.
	best := keys[len(keys)-1]
	for _, k := range keys {
		if k >= pos {
			best = k
			break
		}
	}
	return s.ExpectedCTR[best]
}

// DetectionThresholds are the cut-offs used by the on-page detection rules.
type DetectionThresholds struct {
	SlowResponse     time.Duration `yaml:"slowResponse,omitempty"`
	VerySlowResponse time.Duration `yaml:"verySlowResponse,omitempty"`

	TitleMinLength int `yaml:"titleMinLength,omitempty"`
	TitleMaxLength int `yaml:"titleMaxLength,omitempty"`
	MetaMinLength  int `yaml:"metaMinLength,omitempty"`
	MetaMaxLength  int `yaml:"metaMaxLength,omitempty"`

	// DuplicateTitleMinLength ignores very short titles when looking for duplicates.
	DuplicateTitleMinLength int `yaml:"duplicateTitleMinLength,omitempty"`
	DuplicateMetaMinLength  int `yaml:"duplicateMetaMinLength,omitempty"`

	// GenericTitles are placeholder titles, matched case-insensitively as substrings.
	GenericTitles []string `yaml:"genericTitles,omitempty"`

	ThinContentWords int   `yaml:"thinContentWords,omitempty"`
	MinInternalLinks int   `yaml:"minInternalLinks,omitempty"`
	MaxExternalLinks int   `yaml:"maxExternalLinks,omitempty"`
	LargePageBytes   int64 `yaml:"largePageBytes,omitempty"`

	// Core Web Vitals "poor" boundaries. Values between the good and poor
	// boundaries need improvement.
	PoorLCP  time.Duration `yaml:"poorLCP,omitempty"`
	PoorINP  time.Duration `yaml:"poorINP,omitempty"`
	PoorCLS  float64       `yaml:"poorCLS,omitempty"`
	GoodLCP  time.Duration `yaml:"goodLCP,omitempty"`
	GoodINP  time.Duration `yaml:"goodINP,omitempty"`
	GoodCLS  float64       `yaml:"goodCLS,omitempty"`
	PoorPerf float64       `yaml:"poorPerformanceScore,omitempty"`
}

// HealthDeductions are the points subtracted from 100 per issue of each severity.
type HealthDeductions struct {
	Critical int `yaml:"critical,omitempty"`
	High     int `yaml:"high,omitempty"`
	Medium   int `yaml:"medium,omitempty"`
	Low      int `yaml:"low,omitempty"`
}

// For returns the deduction for a severity. Unknown severities deduct Low.
func (h HealthDeductions) For(severity model.Severity) int {
	switch severity {
	case model.SeverityCritical:
		return h.Critical
	case model.SeverityHigh:
		return h.High
	case model.SeverityMedium:
		return h.Medium
	default:
		return h.Low
	}
}

// DefaultScoring returns the built-in scoring tables.
// Each call returns fresh maps, so callers may modify the result.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Multipliers: map[model.PageType]float64{
			model.PageTypeHomepage: 5.0,
			model.PageTypeCheckout: 4.8,
			model.PageTypeProduct:  4.5,
			model.PageTypeCategory: 4.0,
			model.PageTypeOther:    2.0,
		},
		Search: SearchThresholds{
			HighImpressions: 1000,
			NearZeroClicks:  0,
			LowCTRRatio:     0.5,
			ExpectedCTR: map[int]float64{
				1:  0.28,
				2:  0.15,
				3:  0.11,
				4:  0.08,
				5:  0.06,
				10: 0.025,
				20: 0.01,
			},
			ZeroClickBoost:          1.5,
			LowCTRBoost:             1.25,
			PoorPositionImpressions: 500,
			PoorPosition:            10,
			OpportunityImpressions:  10000,
		},
		Detection: DetectionThresholds{
			SlowResponse:            3 * time.Second,
			VerySlowResponse:        5 * time.Second,
			TitleMinLength:          30,
			TitleMaxLength:          70,
			MetaMinLength:           120,
			MetaMaxLength:           170,
			DuplicateTitleMinLength: 10,
			DuplicateMetaMinLength:  20,
			GenericTitles:           []string{"untitled", "new page", "home page", "welcome", "default"},
			ThinContentWords:        300,
			MinInternalLinks:        3,
			MaxExternalLinks:        50,
			LargePageBytes:          1024 * 1024,
			PoorLCP:                 4 * time.Second,
			PoorINP:                 500 * time.Millisecond,
			PoorCLS:                 0.25,
			GoodLCP:                 2500 * time.Millisecond,
			GoodINP:                 200 * time.Millisecond,
			GoodCLS:                 0.1,
			PoorPerf:                50,
		},
		Health: HealthDeductions{
			Critical: 10,
			High:     5,
			Medium:   2,
			Low:      1,
		},
	}
}

// Multiplier returns the multiplier for a page type, falling back to the
// "other" multiplier for types missing from the table.
func (s ScoringConfig) Multiplier(pageType model.PageType) float64 {
	if m, ok := s.Multipliers[pageType]; ok {
		return m
	}
	return s.Multipliers[model.PageTypeOther]
}

// Validate checks the tables for values that would break score invariants.
func (s ScoringConfig) Validate() error {
	for pageType, m := range s.Multipliers {
		if !pageType.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPageType, pageType)
		}
		if m <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidMultiplier, pageType, m)
		}
	}
	if _, ok := s.Multipliers[model.PageTypeOther]; !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidMultiplier, model.PageTypeOther)
	}
	if s.Search.ZeroClickBoost < 1 || s.Search.LowCTRBoost < 1 {
		return fmt.Errorf("invalid search boost: must be at least 1")
	}
	h := s.Health
	if h.Critical < 0 || h.High < 0 || h.Medium < 0 || h.Low < 0 {
		return fmt.Errorf("invalid health deduction: must be non-negative")
	}
	return nil
}
