package sqlbuild

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Skryldev/jobly/apperr"
)

// Aliases maps a request field name to its storage column when the two
// differ, e.g. "numEmployees" → "num_employees". Fields without an entry use
// their own name as the column.
type Aliases map[string]string

// Column resolves the storage column for key.
func (a Aliases) Column(key string) string {
	if col, ok := a[key]; ok && col != "" {
		return col
	}
	return key
}

// Assignment is the SET list of a partial UPDATE. Fragment i (0-based)
// carries placeholder i+1 and binds Values[i].
type Assignment struct {
	Fragments []string
	Values    []any
}

// SetClause joins the fragments with ", ".
func (a Assignment) SetClause() string { return strings.Join(a.Fragments, ", ") }

// Next returns the placeholder that follows the last assignment, for the
// caller's row key. A nil d means PostgreSQL.
func (a Assignment) Next(d Dialect) string {
	return Builder{Dialect: d}.dialect().Placeholder(len(a.Values) + 1)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoData is returned for an update request with no fields.
var ErrNoData = apperr.BadRequest("No data")

// PartialUpdate builds the SET list for data using the PostgreSQL dialect.
func PartialUpdate(data Fields, aliases Aliases) (Assignment, error) {
	return Builder{}.PartialUpdate(data, aliases)
}

// PartialUpdate builds one `"column"=$n` fragment per field of data, in
// order, numbering placeholders from 1. It fails with a bad-request error
// when data is empty, when a resolved column is not a plain identifier, or
// when two fields resolve to the same column.
func (b Builder) PartialUpdate(data Fields, aliases Aliases) (Assignment, error) {
	if len(data) == 0 {
		return Assignment{}, ErrNoData
	}
	d := b.dialect()

	a := Assignment{
		Fragments: make([]string, 0, len(data)),
		Values:    make([]any, 0, len(data)),
	}
	seen := make(map[string]bool, len(data))
	for i, f := range data {
		col := aliases.Column(f.Key)
		if !identRe.MatchString(col) {
			return Assignment{}, apperr.BadRequest(fmt.Sprintf("invalid field name %q", f.Key))
		}
		if seen[col] {
			return Assignment{}, apperr.BadRequest(fmt.Sprintf("field %q given more than once", f.Key))
		}
		seen[col] = true

		a.Fragments = append(a.Fragments, d.QuoteIdentifier(col)+"="+d.Placeholder(i+1))
		a.Values = append(a.Values, f.Value)
	}
	return a, nil
}

// Allowlist is the set of request fields an entity accepts in an update.
type Allowlist []string

// Allows reports whether key may be updated.
func (l Allowlist) Allows(key string) bool { return slices.Contains(l, key) }

// PartialUpdateOnly is PartialUpdate limited to the fields in allowed. A
// field outside the list is a bad-request error, checked before anything
// is built.
func (b Builder) PartialUpdateOnly(data Fields, aliases Aliases, allowed Allowlist) (Assignment, error) {
	for _, key := range data.Keys() {
		if !allowed.Allows(key) {
			return Assignment{}, apperr.BadRequest(fmt.Sprintf("field %q cannot be updated", key))
		}
	}
	return b.PartialUpdate(data, aliases)
}
