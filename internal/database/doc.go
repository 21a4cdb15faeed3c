// Package database provides SQLite-based audit history for seoaudit.
//
// Each audit run is stored as a JSON report plus one row per issue key and
// one row per covered site. The issue rows let the next audit mark issues
// as New or Existing; the report rows back the compare command and the
// read-only API.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
