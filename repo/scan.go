package repo

import (
	"database/sql"

	"github.com/Skryldev/jobly/db"
)

// rowScanner is satisfied by *db.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

var (
	_ rowScanner = (*db.Row)(nil)
	_ rowScanner = (*sql.Rows)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Null helpers
// ─────────────────────────────────────────────────────────────────────────────

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func float64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

// nullable turns a nil pointer into an untyped nil so drivers bind NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
