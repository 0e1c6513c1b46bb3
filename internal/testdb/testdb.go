// Package testdb opens seeded in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Schema mirrors migrations/000001_create_tables.up.sql in SQLite syntax.
const Schema = `
CREATE TABLE companies (
	handle        VARCHAR(25) PRIMARY KEY CHECK (handle = lower(handle)),
	name          TEXT UNIQUE NOT NULL,
	num_employees INTEGER CHECK (num_employees >= 0),
	description   TEXT NOT NULL,
	logo_url      TEXT
);

CREATE TABLE jobs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT NOT NULL,
	salary         INTEGER CHECK (salary >= 0),
	equity         REAL CHECK (equity <= 1.0),
	company_handle VARCHAR(25) NOT NULL
		REFERENCES companies (handle) ON DELETE CASCADE
);

CREATE TABLE users (
	username   VARCHAR(25) PRIMARY KEY,
	password   TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	email      TEXT NOT NULL CHECK (instr(email, '@') > 1),
	is_admin   BOOLEAN NOT NULL DEFAULT FALSE
);`

// Password is the plain-text password of every seeded user.
const Password = "password1"

// Fixture describes the seeded rows.
type Fixture struct {
	// JobIDs holds the ids of j1..j4 in order.
	JobIDs []int64
}

// Open returns an empty database with Schema applied. A single connection
// keeps every statement on the same in-memory database.
func Open(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()

	d, err := db.Open(db.Config{
		DSN:          ":memory:?_foreign_keys=1",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
		Hooks:        hooks,
	})
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if _, err := d.Exec(context.Background(), Schema); err != nil {
		t.Fatalf("testdb: schema: %v", err)
	}
	return d
}

// Seed inserts three companies, four jobs and two users:
//
//	c1 "C1" (1 employee), c2 "C2" (2), c3 "C3" (3)
//	j1 100000/0.1 at c1, j2 200000/0.2 at c1, j3 300000/0 at c2, j4 no pay at c2
//	u1 (regular), u2 (admin)
func Seed(t testing.TB, d *db.DB) Fixture {
	t.Helper()
	ctx := context.Background()

	type company struct {
		handle, name string
		num          int64
	}
	err := db.BatchExec(d, ctx,
		`INSERT INTO companies (handle, name, num_employees, description, logo_url)
		 VALUES ($1, $2, $3, $4, $5)`,
		[]company{{"c1", "C1", 1}, {"c2", "C2", 2}, {"c3", "C3", 3}},
		func(c company) []any {
			return []any{c.handle, c.name, c.num, "Desc" + c.name[1:], "http://" + c.handle + ".img"}
		},
	)
	if err != nil {
		t.Fatalf("testdb: seed companies: %v", err)
	}

	type job struct {
		title  string
		salary any
		equity any
		handle string
	}
	err = db.BatchExec(d, ctx,
		`INSERT INTO jobs (title, salary, equity, company_handle) VALUES ($1, $2, $3, $4)`,
		[]job{
			{"j1", int64(100000), 0.1, "c1"},
			{"j2", int64(200000), 0.2, "c1"},
			{"j3", int64(300000), 0.0, "c2"},
			{"j4", nil, nil, "c2"},
		},
		func(j job) []any { return []any{j.title, j.salary, j.equity, j.handle} },
	)
	if err != nil {
		t.Fatalf("testdb: seed jobs: %v", err)
	}

	hash, err := auth.HashPassword(Password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("testdb: hash: %v", err)
	}
	err = db.BatchExec(d, ctx,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		[]string{"u1", "u2"},
		func(name string) []any {
			return []any{name, hash, name + "F", name + "L", name + "@email.com", name == "u2"}
		},
	)
	if err != nil {
		t.Fatalf("testdb: seed users: %v", err)
	}

	rows, err := d.Query(ctx, `SELECT id FROM jobs ORDER BY id`)
	if err != nil {
		t.Fatalf("testdb: job ids: %v", err)
	}
	defer rows.Close()

	var fx Fixture
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("testdb: job ids: %v", err)
		}
		fx.JobIDs = append(fx.JobIDs, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("testdb: job ids: %v", err)
	}
	return fx
}
