package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrNoHistory is returned when a site has no stored audit.
	ErrNoHistory = errors.New("no audit history")

	// ErrNotEnoughAudits is returned when fewer than two audits can be compared.
	ErrNotEnoughAudits = errors.New("at least 2 audits are required for comparison")

	// ErrAuditNotFound is returned when the requested baseline does not exist.
	ErrAuditNotFound = errors.New("audit not found")

	// ErrSiteMismatch is returned when the requested baseline covers another site.
	ErrSiteMismatch = errors.New("audit does not cover site")
)

// ComparisonPair returns the audits to compare for site. The current audit
// is always the latest one. The baseline is the audit with ID withID when
// set, otherwise the oldest audit at or after since when set, otherwise the
// audit before the latest.
func (adb *AuditDB) ComparisonPair(ctx context.Context, site string, withID int64, since time.Time) (previous, current *StoredReport, err error) {
	history, err := adb.GetAuditHistory(ctx, site, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("%w for %s", ErrNoHistory, site)
	}

	var baselineID int64
	switch {
	case withID > 0:
		if withID == history[0].ID {
			return nil, nil, fmt.Errorf("%w: audit %d is the latest audit", ErrNotEnoughAudits, withID)
		}
		idx := slices.IndexFunc(history, func(m AuditMetadata) bool { return m.ID == withID })
		if idx < 0 {
			stored, err := adb.GetAuditReportByID(ctx, withID)
			if err != nil {
				return nil, nil, err
			}
			if stored == nil {
				return nil, nil, fmt.Errorf("%w: %d", ErrAuditNotFound, withID)
			}
			return nil, nil, fmt.Errorf("%w: audit %d does not cover %s", ErrSiteMismatch, withID, site)
		}
		baselineID = withID
	case !since.IsZero():
		// history is newest first; the last match is the oldest.
		for i := len(history) - 1; i >= 1; i-- {
			if !history[i].GeneratedAt.Before(since) {
				baselineID = history[i].ID
				break
			}
		}
		if baselineID == 0 {
			return nil, nil, fmt.Errorf("%w since %s", ErrNotEnoughAudits, since.Format("2006-01-02"))
		}
	default:
		if len(history) < 2 {
			return nil, nil, fmt.Errorf("%w (found %d)", ErrNotEnoughAudits, len(history))
		}
		baselineID = history[1].ID
	}

	if current, err = adb.GetAuditReportByID(ctx, history[0].ID); err != nil {
		return nil, nil, err
	}
	if previous, err = adb.GetAuditReportByID(ctx, baselineID); err != nil {
		return nil, nil, err
	}
	if current == nil || previous == nil {
		return nil, nil, ErrAuditNotFound
	}
	return previous, current, nil
}
