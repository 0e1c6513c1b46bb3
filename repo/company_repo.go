package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
)

// CompanyRepository is the persistence contract for companies.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.CompanyDetail, error)
	Update(ctx context.Context, handle string, data sqlbuild.Fields) (*models.Company, error)
	Remove(ctx context.Context, handle string) error
}

type companyRepo struct {
	q db.Querier
}

// NewCompanyRepo returns a CompanyRepository backed by q.
func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

const companyColumns = `handle, name, description, num_employees, logo_url`

const (
	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyColumns

	sqlGetCompany = `
		SELECT ` + companyColumns + `
		FROM   companies
		WHERE  handle = $1`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = $1 RETURNING handle`
)

// Create inserts a company. A taken handle or name is a BadRequest.
func (r *companyRepo) Create(ctx context.Context, p models.CreateCompanyParams) (*models.Company, error) {
	row := r.q.QueryRow(ctx, sqlInsertCompany,
		p.Handle, p.Name, p.Description, nullable(p.NumEmployees), nullable(p.LogoURL))
	c, err := scanCompany(row)
	if db.IsDuplicateKey(err) {
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, "Duplicate company: "+p.Handle)
	}
	return c, err
}

// FindAll returns the companies matching filter ordered by name.
func (r *companyRepo) FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	where, args := filter.Where(r.q.Builder())
	query := `SELECT ` + companyColumns + ` FROM companies ` + where + ` ORDER BY name`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Get returns a company and its jobs.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, sqlGetCompany, handle))
	if db.IsNotFound(err) {
		return nil, apperr.NotFound("No company: %s", handle)
	}
	if err != nil {
		return nil, err
	}

	jobs, err := listCompanyJobs(ctx, r.q, handle)
	if err != nil {
		return nil, err
	}
	return &models.CompanyDetail{Company: *c, Jobs: jobs}, nil
}

// Update applies data as a partial update of the company with handle.
func (r *companyRepo) Update(ctx context.Context, handle string, data sqlbuild.Fields) (*models.Company, error) {
	b := r.q.Builder()
	set, err := b.PartialUpdateOnly(data, models.CompanyAliases, models.CompanyUpdatable)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = %s
		RETURNING %s`,
		set.SetClause(), set.Next(b.Dialect), companyColumns)

	c, err := scanCompany(r.q.QueryRow(ctx, query, append(set.Values, handle)...))
	switch {
	case db.IsNotFound(err):
		return nil, apperr.NotFound("No company: %s", handle)
	case db.IsDuplicateKey(err):
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, "Duplicate company name")
	}
	return c, err
}

// Remove deletes a company and, through the foreign key, its jobs.
func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	var deleted string
	err := r.q.QueryRow(ctx, sqlDeleteCompany, handle).Scan(&deleted)
	if db.IsNotFound(err) {
		return apperr.NotFound("No company: %s", handle)
	}
	return err
}

func scanCompany(row rowScanner) (*models.Company, error) {
	var (
		c    models.Company
		num  sql.NullInt64
		logo sql.NullString
	)
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &num, &logo); err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	c.NumEmployees = int64Ptr(num)
	c.LogoURL = stringPtr(logo)
	return &c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
