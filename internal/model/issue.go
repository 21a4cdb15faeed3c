package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// IssueStatus tells whether an issue was already reported by a previous audit.
type IssueStatus string

const (
	StatusNew      IssueStatus = "New"
	StatusExisting IssueStatus = "Existing"
)

// Issue is one detected SEO problem on one page.
type Issue struct {
	URL            string      `json:"url"`
	Type           string      `json:"issue_type"`
	Severity       Severity    `json:"severity"`
	Category       Category    `json:"category"`
	Team           Team        `json:"team,omitempty"`
	PageType       PageType    `json:"page_type,omitempty"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	DetectedAt     time.Time   `json:"detected_at"`
	Status         IssueStatus `json:"status"`
	ImpactScore    float64     `json:"impact_score"`
}

// IssueKey identifies an issue across audit runs.
type IssueKey struct {
	URL  string
	Type string
}

// Key returns the (URL, type) pair that is unique within one audit.
func (i Issue) Key() IssueKey {
	return IssueKey{URL: i.URL, Type: i.Type}
}

// Fingerprint returns a stable hex digest of the key, used as a storage identifier.
func (k IssueKey) Fingerprint() string {
	sum := blake2b.Sum256([]byte(k.URL + "\x00" + k.Type))
	return hex.EncodeToString(sum[:16])
}
