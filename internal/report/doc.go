// Package report renders audit reports and audit comparisons as plain text,
// JSON or Markdown.
package report
