package repo_test

import (
	"context"
	"testing"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/internal/testdb"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/sqlbuild"
	"golang.org/x/crypto/bcrypt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

func newUserRepo(t *testing.T) repo.UserRepository {
	t.Helper()
	d := testdb.Open(t)
	testdb.Seed(t, d)
	return repo.NewUserRepo(d, bcrypt.MinCost)
}

// ─────────────────────────────────────────────────────────────────────────────
// Authenticate
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Authenticate(t *testing.T) {
	r := newUserRepo(t)

	u, err := r.Authenticate(context.Background(), "u2", testdb.Password)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Username != "u2" || !u.IsAdmin || u.Email != "u2@email.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_Authenticate_Failures(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	if _, err := r.Authenticate(ctx, "u1", "wrong"); !apperr.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for wrong password, got %v", err)
	}
	if _, err := r.Authenticate(ctx, "nope", testdb.Password); !apperr.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for unknown user, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Register
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Register(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Register(ctx, models.CreateUserParams{
		Username: "new", Password: "secret", FirstName: "N", LastName: "U", Email: "new@email.com",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "new" || u.IsAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := r.Authenticate(ctx, "new", "secret"); err != nil {
		t.Fatalf("stored password does not verify: %v", err)
	}
}

func TestUserRepo_Register_Duplicate(t *testing.T) {
	r := newUserRepo(t)
	_, err := r.Register(context.Background(), models.CreateUserParams{
		Username: "u1", Password: "secret", FirstName: "F", LastName: "L", Email: "x@email.com",
	})
	if !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll / Get
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_FindAll(t *testing.T) {
	r := newUserRepo(t)
	users, err := r.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(users) != 2 || users[0].Username != "u1" || users[1].Username != "u2" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserRepo_Get(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	u, err := r.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.FirstName != "u1F" || u.LastName != "u1L" || u.IsAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := r.Get(ctx, "nope"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Update(t *testing.T) {
	r := newUserRepo(t)

	u, err := r.Update(context.Background(), "u1", sqlbuild.F("firstName", "New", "email", "new@email.com"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.FirstName != "New" || u.Email != "new@email.com" || u.LastName != "u1L" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_Update_PasswordIsHashed(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	data := sqlbuild.F("password", "changed")

	if _, err := r.Update(ctx, "u1", data); err != nil {
		t.Fatalf("update: %v", err)
	}
	if v, _ := data.Get("password"); v != "changed" {
		t.Fatalf("caller's fields were modified: %v", v)
	}
	if _, err := r.Authenticate(ctx, "u1", "changed"); err != nil {
		t.Fatalf("new password does not verify: %v", err)
	}
	if _, err := r.Authenticate(ctx, "u1", testdb.Password); !apperr.IsUnauthorized(err) {
		t.Fatalf("old password still verifies: %v", err)
	}
}

func TestUserRepo_Update_Errors(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	if _, err := r.Update(ctx, "nope", sqlbuild.F("firstName", "x")); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := r.Update(ctx, "u1", nil); !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	if _, err := r.Update(ctx, "u1", sqlbuild.F("password", int64(5))); !apperr.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for non-string password, got %v", err)
	}
}

func TestUserRepo_Update_RejectsFieldsOutsideAllowlist(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	for _, data := range []sqlbuild.Fields{
		sqlbuild.F("isAdmin", true),
		sqlbuild.F("firstName", "x", "is_admin", true),
		sqlbuild.F("username", "renamed"),
	} {
		if _, err := r.Update(ctx, "u1", data); !apperr.IsBadRequest(err) {
			t.Fatalf("%v: expected BadRequest, got %v", data, err)
		}
	}

	u, err := r.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.IsAdmin || u.FirstName != "u1F" {
		t.Fatalf("user changed: %+v", u)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Remove
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepo_Remove(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	if err := r.Remove(ctx, "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := r.Get(ctx, "u1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound after remove, got %v", err)
	}
	if err := r.Remove(ctx, "u1"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound on second remove, got %v", err)
	}
}
