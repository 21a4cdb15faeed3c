package searchconsole

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

var (
	// ErrUnknownFormat is returned for files that are neither CSV nor JSON.
	ErrUnknownFormat = errors.New("unknown search console export format")

	// ErrMissingColumn is returned when a CSV export lacks a required column.
	ErrMissingColumn = errors.New("missing column in search console export")
)

// Format is the encoding of an export file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// LoadFile reads a performance export from disk.
func LoadFile(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open search console export: %w", err)
	}
	defer f.Close()

	d, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return d, nil
}

// Parse reads an export in the given format.
func Parse(r io.Reader, format Format) (*Dataset, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON:
		return parseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Column names accepted in CSV headers, compared case-insensitively.
var columnAliases = map[string][]string{
	"url":         {"top pages", "page", "pages", "url", "landing page", "address"},
	"clicks":      {"clicks", "url clicks"},
	"impressions": {"impressions"},
	"ctr":         {"ctr", "url ctr"},
	"position":    {"position", "average position", "avg. position"},
}

func parseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewDataset(nil), nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		for key, aliases := range columnAliases {
			for _, alias := range aliases {
				if name == alias {
					if _, dup := columns[key]; !dup {
						columns[key] = i
					}
				}
			}
		}
	}
	for _, required := range []string{"url", "clicks", "impressions"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	d := NewDataset(nil)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		field := func(key string) string {
			i, ok := columns[key]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row, ok := buildRow(field("url"), field("clicks"), field("impressions"), field("ctr"), field("position"))
		if !ok {
			d.skipped++
			continue
		}
		d.add(row)
	}
	return d, nil
}

type jsonRow struct {
	Page        string   `json:"page"`
	URL         string   `json:"url"`
	Keys        []string `json:"keys"`
	Clicks      flexible `json:"clicks"`
	Impressions flexible `json:"impressions"`
	CTR         flexible `json:"ctr"`
	Position    flexible `json:"position"`
}

// flexible accepts a JSON number or string.
type flexible string

func (f *flexible) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexible(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexible(n.String())
	return nil
}

// parseJSON accepts either an array of rows or a Search Analytics API
// response with a "rows" array, where the page is the first key.
func parseJSON(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var rows []jsonRow
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapped struct {
			Rows []jsonRow `json:"rows"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to decode export: %w", err)
		}
		rows = wrapped.Rows
	}

	d := NewDataset(nil)
	for _, jr := range rows {
		page := jr.Page
		if page == "" {
			page = jr.URL
		}
		if page == "" && len(jr.Keys) > 0 {
			page = jr.Keys[0]
		}
		row, ok := buildRow(page, string(jr.Clicks), string(jr.Impressions), string(jr.CTR), string(jr.Position))
		if !ok {
			d.skipped++
			continue
		}
		d.add(row)
	}
	return d, nil
}

// buildRow converts raw export fields. Missing CTR is derived from clicks.
func buildRow(page, clicks, impressions, ctr, position string) (Row, bool) {
	if NormalizeURL(page) == "" {
		return Row{}, false
	}
	c, err := parseCount(clicks)
	if err != nil {
		return Row{}, false
	}
	imp, err := parseCount(impressions)
	if err != nil {
		return Row{}, false
	}

	m := model.SearchMetrics{Clicks: c, Impressions: imp}
	if ctr != "" {
		if m.CTR, err = ParseCTR(ctr); err != nil {
			return Row{}, false
		}
	} else if imp > 0 {
		m.CTR = float64(c) / float64(imp)
	}
	if position != "" {
		if m.Position, err = strconv.ParseFloat(strings.ReplaceAll(position, ",", "."), 64); err != nil {
			return Row{}, false
		}
	}
	return Row{URL: strings.TrimSpace(page), Metrics: m}, true
}

// parseCount parses an integer that may contain thousands separators.
func parseCount(s string) (int64, error) {
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}

// ParseCTR parses a click-through rate written as a percentage ("2.5%")
// or a fraction ("0.025"). Both return 0.025.
func ParseCTR(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid CTR %q: %w", s, err)
	}
	if percent {
		v /= 100
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("invalid CTR %q: out of range", s)
	}
	return v, nil
}
