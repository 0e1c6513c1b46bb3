package sqlbuild_test

import (
	"testing"

	"github.com/Skryldev/jobly/sqlbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere_Empty(t *testing.T) {
	w := sqlbuild.Builder{}.Where()
	assert.Equal(t, "", w.Clause())
	assert.Equal(t, []any{}, w.Args())
}

func TestWhere_NumbersByEmittedPredicate(t *testing.T) {
	w := sqlbuild.New(sqlbuild.PostgresDialect{}).Where()
	w.Cond("salary", ">=", 10).Cond("equity", ">", 0)

	assert.Equal(t, "WHERE salary >= $1 AND equity > $2", w.Clause())
	assert.Equal(t, []any{10, 0}, w.Args())
}

func TestWhere_ContainsUsesDialectOperator(t *testing.T) {
	pg := sqlbuild.New(sqlbuild.PostgresDialect{}).Where().Contains("title", "j1")
	assert.Equal(t, "WHERE title ILIKE $1", pg.Clause())
	assert.Equal(t, []any{"%j1%"}, pg.Args())

	lite := sqlbuild.New(sqlbuild.SQLiteDialect{}).Where().Contains("title", "j1")
	assert.Equal(t, "WHERE title LIKE $1", lite.Clause())
}

func TestDialectFor(t *testing.T) {
	d, err := sqlbuild.DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, sqlbuild.PostgresDialect{}, d)

	d, err = sqlbuild.DialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, sqlbuild.SQLiteDialect{}, d)

	_, err = sqlbuild.DialectFor("oracle")
	assert.Error(t, err)
}

func TestQuoteIdentifierEscapesQuotes(t *testing.T) {
	assert.Equal(t, `"a""b"`, sqlbuild.PostgresDialect{}.QuoteIdentifier(`a"b`))
}
