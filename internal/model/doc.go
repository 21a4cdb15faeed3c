// Package model defines the core data structures used throughout seoaudit.
//
// This package contains the following main types:
//   - Page: the per-URL snapshot of crawl, search and performance data
//   - Issue: a single detected SEO problem
//   - AuditReport: the ranked, grouped result of one audit run
//
// It also holds the static issue catalog, which maps each issue type to its
// default severity, business weight, category and recommendation, and the
// category to team mapping used for routing.
//
// All types serialize to JSON for report output and database storage.
package model
