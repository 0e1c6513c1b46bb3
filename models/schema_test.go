package models_test

import (
	"testing"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, body string) sqlbuild.Fields {
	t.Helper()
	fs, err := sqlbuild.ParseFields([]byte(body))
	require.NoError(t, err)
	return fs
}

func TestSchema_JobNewValid(t *testing.T) {
	fs := parse(t, `{"title":"Dev","salary":1000,"equity":0.5,"companyHandle":"c1"}`)
	assert.NoError(t, models.JobNewSchema.Validate(fs))
}

func TestSchema_JobNewMissingRequired(t *testing.T) {
	err := models.JobNewSchema.Validate(parse(t, `{"salary":1000}`))
	require.True(t, apperr.IsBadRequest(err))

	_, details := apperr.Message(err)
	assert.Equal(t, []string{`"companyHandle" is required`, `"title" is required`}, details)
}

func TestSchema_WrongTypesAndRanges(t *testing.T) {
	err := models.JobUpdateSchema.Validate(parse(t, `{"salary":"lots","equity":1.5,"title":""}`))
	require.True(t, apperr.IsBadRequest(err))

	_, details := apperr.Message(err)
	assert.Equal(t, []string{
		`"salary" must be an integer`,
		`"equity" must be <= 1`,
		`"title" must be at least 1 characters`,
	}, details)
}

func TestSchema_UnknownField(t *testing.T) {
	err := models.JobUpdateSchema.Validate(parse(t, `{"id":5}`))
	_, details := apperr.Message(err)
	assert.Equal(t, []string{`"id" is not an allowed field`}, details)
}

func TestSchema_Nullable(t *testing.T) {
	assert.NoError(t, models.CompanyUpdateSchema.Validate(parse(t, `{"logoUrl":null,"numEmployees":null}`)))
	assert.Error(t, models.CompanyUpdateSchema.Validate(parse(t, `{"name":null}`)))
}

func TestSchema_Formats(t *testing.T) {
	assert.NoError(t, models.CompanyUpdateSchema.Validate(parse(t, `{"logoUrl":"http://new.img"}`)))
	assert.Error(t, models.CompanyUpdateSchema.Validate(parse(t, `{"logoUrl":"not a url"}`)))

	assert.NoError(t, models.UserUpdateSchema.Validate(parse(t, `{"email":"new@email.com"}`)))
	assert.Error(t, models.UserUpdateSchema.Validate(parse(t, `{"email":"not-an-email"}`)))
}

func TestSchema_UserNewAllowsIsAdmin(t *testing.T) {
	body := `{"username":"u-new","firstName":"F","lastName":"L","password":"password-new","email":"new@email.com","isAdmin":true}`
	assert.NoError(t, models.UserNewSchema.Validate(parse(t, body)))
	assert.Error(t, models.UserRegisterSchema.Validate(parse(t, body)))
}

func TestSchema_UserUpdateRejectsIsAdmin(t *testing.T) {
	assert.Error(t, models.UserUpdateSchema.Validate(parse(t, `{"isAdmin":true}`)))
}

func TestSchema_IntegerColumnBounds(t *testing.T) {
	assert.NoError(t, models.JobUpdateSchema.Validate(parse(t, `{"salary":2147483647}`)))

	err := models.JobUpdateSchema.Validate(parse(t, `{"salary":2147483648}`))
	_, details := apperr.Message(err)
	assert.Equal(t, []string{`"salary" must be <= 2147483647`}, details)

	assert.Error(t, models.CompanyNewSchema.Validate(parse(t,
		`{"handle":"h","name":"N","description":"D","numEmployees":9999999999}`)))
}

func TestSchema_Fields(t *testing.T) {
	assert.Equal(t, sqlbuild.Allowlist{"description", "logoUrl", "name", "numEmployees"}, models.CompanyUpdatable)
	assert.Equal(t, sqlbuild.Allowlist{"companyHandle", "equity", "salary", "title"}, models.JobUpdatable)
	assert.False(t, models.UserUpdatable.Allows("isAdmin"))
	assert.True(t, models.UserUpdatable.Allows("password"))
}
