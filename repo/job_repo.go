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

// JobRepository is the persistence contract for jobs.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	Update(ctx context.Context, id int64, data sqlbuild.Fields) (*models.Job, error)
	Remove(ctx context.Context, id int64) (*models.DeletedJob, error)
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q.
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

const jobColumns = `id, title, salary, equity, company_handle`

const (
	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	sqlGetJob = `
		SELECT ` + jobColumns + `
		FROM   jobs
		WHERE  id = $1`

	sqlDeleteJob = `
		DELETE FROM jobs WHERE id = $1 RETURNING id, title`

	sqlListCompanyJobs = `
		SELECT id, title, salary, equity
		FROM   jobs
		WHERE  company_handle = $1
		ORDER  BY id`
)

func noJob(id int64) error { return apperr.NotFound("No job with id = %d", id) }

// Create inserts a job. An unknown company handle is a BadRequest.
func (r *jobRepo) Create(ctx context.Context, p models.CreateJobParams) (*models.Job, error) {
	row := r.q.QueryRow(ctx, sqlInsertJob,
		p.Title, nullable(p.Salary), nullable(p.Equity), p.CompanyHandle)
	j, err := scanJob(row)
	if db.IsForeignKeyViolation(err) {
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, "No company: "+p.CompanyHandle)
	}
	return j, err
}

// FindAll returns the jobs matching filter ordered by id.
func (r *jobRepo) FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	where, args := filter.Where(r.q.Builder())
	query := `SELECT ` + jobColumns + ` FROM jobs ` + where + ` ORDER BY id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Get returns the job with id.
func (r *jobRepo) Get(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, sqlGetJob, id))
	if db.IsNotFound(err) {
		return nil, noJob(id)
	}
	return j, err
}

// Update applies data as a partial update of the job with id.
func (r *jobRepo) Update(ctx context.Context, id int64, data sqlbuild.Fields) (*models.Job, error) {
	b := r.q.Builder()
	set, err := b.PartialUpdateOnly(data, models.JobAliases, models.JobUpdatable)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = %s
		RETURNING %s`,
		set.SetClause(), set.Next(b.Dialect), jobColumns)

	j, err := scanJob(r.q.QueryRow(ctx, query, append(set.Values, id)...))
	switch {
	case db.IsNotFound(err):
		return nil, noJob(id)
	case db.IsForeignKeyViolation(err):
		handle, _ := data.Get("companyHandle")
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, fmt.Sprintf("No company: %v", handle))
	}
	return j, err
}

// Remove deletes the job with id and returns what identified it.
func (r *jobRepo) Remove(ctx context.Context, id int64) (*models.DeletedJob, error) {
	var d models.DeletedJob
	err := r.q.QueryRow(ctx, sqlDeleteJob, id).Scan(&d.ID, &d.Title)
	if db.IsNotFound(err) {
		return nil, noJob(id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// listCompanyJobs returns the jobs of one company ordered by id.
func listCompanyJobs(ctx context.Context, q db.Querier, handle string) ([]*models.CompanyJob, error) {
	rows, err := q.Query(ctx, sqlListCompanyJobs, handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*models.CompanyJob, 0)
	for rows.Next() {
		var (
			j      models.CompanyJob
			salary sql.NullInt64
			equity sql.NullFloat64
		)
		if err := rows.Scan(&j.ID, &j.Title, &salary, &equity); err != nil {
			return nil, fmt.Errorf("repo/job: scan: %w", err)
		}
		j.Salary = int64Ptr(salary)
		j.Equity = float64Ptr(equity)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		j      models.Job
		salary sql.NullInt64
		equity sql.NullFloat64
	)
	if err := row.Scan(&j.ID, &j.Title, &salary, &equity, &j.CompanyHandle); err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	j.Salary = int64Ptr(salary)
	j.Equity = float64Ptr(equity)
	return &j, nil
}

var _ JobRepository = (*jobRepo)(nil)
