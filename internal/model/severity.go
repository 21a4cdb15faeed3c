package model

import (
	"fmt"
	"strings"
)

// Severity represents how urgently an SEO issue needs attention.
// Values are ordered so that a greater Severity is more urgent.
type Severity int

const (
	// SeverityLow indicates cosmetic issues with limited ranking impact.
	// Examples: long meta descriptions, multiple H1 tags.
	SeverityLow Severity = iota + 1

	// SeverityMedium indicates issues that weaken a page's search appearance.
	// Examples: missing meta description, missing canonical tag.
	SeverityMedium

	// SeverityHigh indicates issues that actively cost traffic.
	// Examples: client errors, missing title, poor Core Web Vitals.
	SeverityHigh

	// SeverityCritical indicates issues that remove a page from search.
	// Examples: server errors, noindex directives.
	SeverityCritical
)

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Rank returns the sort rank of the severity. Lower ranks sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// ParseSeverity converts a case-insensitive severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so reports store names, not numbers.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
