package models

import (
	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/sqlbuild"
)

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company together with its jobs.
type CompanyDetail struct {
	Company
	Jobs []*CompanyJob `json:"jobs"`
}

// CreateCompanyParams holds the fields required to create a company.
type CreateCompanyParams struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int64  `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyAliases maps company request fields to their columns.
var CompanyAliases = sqlbuild.Aliases{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// CompanyFilter holds the optional search criteria for companies. Zero
// values mean "not given". Both employee bounds are exclusive.
type CompanyFilter struct {
	Name         string
	MinEmployees int64
	MaxEmployees int64
}

// Validate rejects a minimum above the maximum.
func (f CompanyFilter) Validate() error {
	if f.MinEmployees != 0 && f.MaxEmployees != 0 && f.MinEmployees > f.MaxEmployees {
		return apperr.BadRequest("minEmployees cannot be greater than maxEmployees")
	}
	return nil
}

// Where builds the WHERE clause for f, checking name, then minimum, then
// maximum employee count.
func (f CompanyFilter) Where(b sqlbuild.Builder) (string, []any) {
	w := b.Where()
	if f.Name != "" {
		w.Contains("name", f.Name)
	}
	if f.MinEmployees != 0 {
		w.Cond("num_employees", ">", f.MinEmployees)
	}
	if f.MaxEmployees != 0 {
		w.Cond("num_employees", "<", f.MaxEmployees)
	}
	return w.Clause(), w.Args()
}
