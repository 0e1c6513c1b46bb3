// Package sqlbuild turns loosely-shaped request data into parameterized SQL
// fragments: the SET list of a partial UPDATE and the conjunctive WHERE
// clause of a filtered SELECT.
//
// Values are always bound through placeholders; only column names are
// interpolated into the fragment text, and those must look like plain
// identifiers.
package sqlbuild

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL flavour differences the builders care about.
type Dialect interface {
	// Placeholder returns the parameter marker for the 1-based index.
	Placeholder(index int) string
	// QuoteIdentifier wraps a column name in identifier quotes.
	QuoteIdentifier(name string) string
	// ILike returns the case-insensitive pattern-match operator.
	ILike() string
}

// PostgresDialect renders $1, $2 placeholders, "double quoted" identifiers
// and ILIKE.
type PostgresDialect struct{}

func (PostgresDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

func (PostgresDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (PostgresDialect) ILike() string { return "ILIKE" }

// SQLiteDialect keeps PostgreSQL-style $n markers, which SQLite binds in
// order of first appearance, and uses LIKE, which SQLite already matches
// case-insensitively for ASCII.
type SQLiteDialect struct{}

func (SQLiteDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

func (SQLiteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (SQLiteDialect) ILike() string { return "LIKE" }

// DialectFor returns the dialect matching a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "postgres", "pgx":
		return PostgresDialect{}, nil
	case "sqlite3", "sqlite":
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("sqlbuild: no dialect for driver %q", driverName)
}

// Builder binds the fragment builders to a dialect. The zero value uses
// PostgreSQL.
type Builder struct {
	Dialect Dialect
}

// New returns a Builder for d.
func New(d Dialect) Builder { return Builder{Dialect: d} }

func (b Builder) dialect() Dialect {
	if b.Dialect == nil {
		return PostgresDialect{}
	}
	return b.Dialect
}
