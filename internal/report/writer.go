package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/seoaudit/internal/model"
)

// Writer renders audit reports and audit comparisons.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.AuditReport) (int, error)

	// WriteComparison outputs the difference between two audits.
	WriteComparison(c *Comparison) (int, error)
}

// MultiWriter writes to multiple Writers, stopping at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *model.AuditReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(c *Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(c)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// pageTypeLabel returns "Homepage" for "homepage". A Caser is stateful, so
// one is created per call.
func pageTypeLabel(t model.PageType) string {
	if t == "" {
		return "-"
	}
	return cases.Title(language.English).String(string(t))
}

func teamLabel(t model.Team) string {
	if t == "" {
		return "-"
	}
	return t.DisplayName()
}

func statusLabel(s model.IssueStatus) string {
	if s == "" {
		return string(model.StatusNew)
	}
	return string(s)
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
