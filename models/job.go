package models

import "github.com/Skryldev/jobly/sqlbuild"

// Job represents a row in the "jobs" table.
type Job struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Salary        *int64   `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// CompanyJob is the job summary embedded in a company detail.
type CompanyJob struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Salary *int64   `json:"salary"`
	Equity *float64 `json:"equity"`
}

// DeletedJob is what remains of a job after removal.
type DeletedJob struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// CreateJobParams holds the fields required to create a job.
type CreateJobParams struct {
	Title         string   `json:"title"`
	Salary        *int64   `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// JobAliases maps job request fields to their columns.
var JobAliases = sqlbuild.Aliases{
	"companyHandle": "company_handle",
}

// JobFilter holds the optional search criteria for jobs. Zero values mean
// "not given".
type JobFilter struct {
	Title     string
	MinSalary int64
	HasEquity bool
}

// Where builds the WHERE clause for f. Predicates are checked in a fixed
// order (title, then minimum salary, then equity) and numbered by emission.
func (f JobFilter) Where(b sqlbuild.Builder) (string, []any) {
	w := b.Where()
	if f.Title != "" {
		w.Contains("title", f.Title)
	}
	if f.MinSalary != 0 {
		w.Cond("salary", ">=", f.MinSalary)
	}
	if f.HasEquity {
		w.Cond("equity", ">", 0)
	}
	return w.Clause(), w.Args()
}
