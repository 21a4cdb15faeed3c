// Package searchconsole loads search performance exports and matches them to pages.
//
// Both the CSV "Pages" export of the performance report and JSON (either a
// plain array or a Search Analytics API response) are accepted. Rows with
// an unusable URL or number are skipped and counted, never fatal.
package searchconsole
