package repo_test

import (
	"context"
	"testing"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/internal/testdb"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/sqlbuild"
)

func newJobRepo(t *testing.T) (repo.JobRepository, testdb.Fixture, *db.DB) {
	t.Helper()
	d := testdb.Open(t)
	fx := testdb.Seed(t, d)
	return repo.NewJobRepo(d), fx, d
}

func titles(js []*models.Job) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.Title
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_Create(t *testing.T) {
	r, _, _ := newJobRepo(t)
	salary, equity := int64(50000), 0.05

	j, err := r.Create(context.Background(), models.CreateJobParams{
		Title: "new", Salary: &salary, Equity: &equity, CompanyHandle: "c3",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.ID == 0 || j.Title != "new" || *j.Salary != 50000 || *j.Equity != 0.05 || j.CompanyHandle != "c3" {
		t.Fatalf("unexpected job: %+v", j)
	}
}

func TestJobRepo_Create_UnknownCompany(t *testing.T) {
	r, _, _ := newJobRepo(t)
	_, err := r.Create(context.Background(), models.CreateJobParams{Title: "x", CompanyHandle: "nope"})
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_FindAll(t *testing.T) {
	r, _, _ := newJobRepo(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter models.JobFilter
		want   []string
	}{
		{"no filter", models.JobFilter{}, []string{"j1", "j2", "j3", "j4"}},
		{"title", models.JobFilter{Title: "J1"}, []string{"j1"}},
		{"min salary is inclusive", models.JobFilter{MinSalary: 200000}, []string{"j2", "j3"}},
		{"has equity", models.JobFilter{HasEquity: true}, []string{"j1", "j2"}},
		{"all", models.JobFilter{Title: "j", MinSalary: 150000, HasEquity: true}, []string{"j2"}},
		{"no match", models.JobFilter{Title: "nope"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.FindAll(ctx, tc.filter)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if !equalStrings(titles(got), tc.want) {
				t.Fatalf("got %v, want %v", titles(got), tc.want)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_Get(t *testing.T) {
	r, fx, _ := newJobRepo(t)

	j, err := r.Get(context.Background(), fx.JobIDs[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.Title != "j1" || *j.Salary != 100000 || *j.Equity != 0.1 || j.CompanyHandle != "c1" {
		t.Fatalf("unexpected job: %+v", j)
	}

	j, err = r.Get(context.Background(), fx.JobIDs[3])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if j.Salary != nil || j.Equity != nil {
		t.Fatalf("expected null salary and equity, got %+v", j)
	}
}

func TestJobRepo_Get_NotFound(t *testing.T) {
	r, _, _ := newJobRepo(t)
	_, err := r.Get(context.Background(), 0)
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if msg, _ := apperr.Message(err); msg != "No job with id = 0" {
		t.Fatalf("unexpected message %q", msg)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_Update(t *testing.T) {
	r, fx, _ := newJobRepo(t)
	id := fx.JobIDs[0]

	j, err := r.Update(context.Background(), id, sqlbuild.F(
		"title", "New",
		"salary", int64(1),
		"equity", 0.5,
		"companyHandle", "c3",
	))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if j.ID != id || j.Title != "New" || *j.Salary != 1 || *j.Equity != 0.5 || j.CompanyHandle != "c3" {
		t.Fatalf("unexpected job: %+v", j)
	}
}

func TestJobRepo_Update_FromJSONBody(t *testing.T) {
	r, fx, _ := newJobRepo(t)

	data, err := sqlbuild.ParseFields([]byte(`{"salary": null, "title": "Renamed"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	j, err := r.Update(context.Background(), fx.JobIDs[1], data)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if j.Title != "Renamed" || j.Salary != nil || *j.Equity != 0.2 {
		t.Fatalf("unexpected job: %+v", j)
	}
}

func TestJobRepo_Update_Errors(t *testing.T) {
	r, fx, _ := newJobRepo(t)
	ctx := context.Background()

	if _, err := r.Update(ctx, 0, sqlbuild.F("title", "x")); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := r.Update(ctx, fx.JobIDs[0], sqlbuild.Fields{}); !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for empty data, got %v", err)
	}
	if _, err := r.Update(ctx, fx.JobIDs[0], sqlbuild.F("companyHandle", "nope")); !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for unknown company, got %v", err)
	}
	if _, err := r.Update(ctx, fx.JobIDs[0], sqlbuild.F("title; DROP TABLE jobs", "x")); !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for bad identifier, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_Remove(t *testing.T) {
	r, fx, _ := newJobRepo(t)
	ctx := context.Background()
	id := fx.JobIDs[0]

	deleted, err := r.Remove(ctx, id)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if deleted.ID != id || deleted.Title != "j1" {
		t.Fatalf("unexpected deleted job: %+v", deleted)
	}
	if _, err := r.Remove(ctx, id); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound on second remove, got %v", err)
	}
}

func TestJobRepo_CascadeOnCompanyRemove(t *testing.T) {
	r, fx, d := newJobRepo(t)
	ctx := context.Background()

	if err := repo.NewCompanyRepo(d).Remove(ctx, "c1"); err != nil {
		t.Fatalf("remove company: %v", err)
	}
	if _, err := r.Get(ctx, fx.JobIDs[0]); !apperr.IsNotFound(err) {
		t.Fatalf("expected job gone with its company, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactions
// ─────────────────────────────────────────────────────────────────────────────

func TestJobRepo_InsideTx(t *testing.T) {
	_, _, d := newJobRepo(t)
	ctx := context.Background()

	err := d.ExecTx(ctx, func(tx *db.Tx) error {
		_, err := repo.NewJobRepo(tx).Create(ctx, models.CreateJobParams{Title: "tx", CompanyHandle: "c1"})
		if err != nil {
			return err
		}
		return apperr.BadRequest("abort")
	})
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected abort error, got %v", err)
	}

	jobs, err := repo.NewJobRepo(d).FindAll(ctx, models.JobFilter{Title: "tx"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected rollback, got %v", titles(jobs))
	}
}
