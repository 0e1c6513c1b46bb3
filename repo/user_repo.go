package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository is the persistence contract for users. Passwords go in as
// plain text and are stored as bcrypt hashes; hashes never come back out.
type UserRepository interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, data sqlbuild.Fields) (*models.User, error)
	Remove(ctx context.Context, username string) error
}

type userRepo struct {
	q          db.Querier
	bcryptCost int
}

// NewUserRepo returns a UserRepository backed by q that hashes passwords
// with the given bcrypt work factor.
func NewUserRepo(q db.Querier, bcryptCost int) UserRepository {
	return &userRepo{q: q, bcryptCost: bcryptCost}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

const userColumns = `username, first_name, last_name, email, is_admin`

const (
	sqlInsertUser = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	sqlGetUser = `
		SELECT ` + userColumns + `
		FROM   users
		WHERE  username = $1`

	sqlGetUserWithPassword = `
		SELECT password, ` + userColumns + `
		FROM   users
		WHERE  username = $1`

	sqlListUsers = `
		SELECT ` + userColumns + `
		FROM   users
		ORDER  BY username`

	sqlDeleteUser = `
		DELETE FROM users WHERE username = $1 RETURNING username`
)

var errBadCredentials = apperr.Unauthorized("Invalid username/password")

func noUser(username string) error { return apperr.NotFound("No user: %s", username) }

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords fail the same way.
func (r *userRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var (
		hash string
		u    models.User
	)
	err := r.q.QueryRow(ctx, sqlGetUserWithPassword, username).
		Scan(&hash, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if db.IsNotFound(err) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	if !auth.CheckPassword(hash, password) {
		return nil, errBadCredentials
	}
	return &u, nil
}

// Register inserts a user. A taken username is a BadRequest.
func (r *userRepo) Register(ctx context.Context, p models.CreateUserParams) (*models.User, error) {
	hash, err := auth.HashPassword(p.Password, r.bcryptCost)
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRow(ctx, sqlInsertUser,
		p.Username, hash, p.FirstName, p.LastName, p.Email, p.IsAdmin)
	u, err := scanUser(row)
	if db.IsDuplicateKey(err) {
		return nil, apperr.Wrap(apperr.ErrBadRequest, err, "Duplicate username: "+p.Username)
	}
	return u, err
}

// FindAll returns every user ordered by username.
func (r *userRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns the user called username.
func (r *userRepo) Get(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, sqlGetUser, username))
	if db.IsNotFound(err) {
		return nil, noUser(username)
	}
	return u, err
}

// Update applies data as a partial update. A password in data is hashed
// in place before the statement is built.
func (r *userRepo) Update(ctx context.Context, username string, data sqlbuild.Fields) (*models.User, error) {
	if v, ok := data.Get("password"); ok {
		plain, isString := v.(string)
		if !isString {
			return nil, apperr.BadRequest("password must be a string")
		}
		hash, err := auth.HashPassword(plain, r.bcryptCost)
		if err != nil {
			return nil, err
		}
		data = append(sqlbuild.Fields(nil), data...).Set("password", hash)
	}

	b := r.q.Builder()
	set, err := b.PartialUpdateOnly(data, models.UserAliases, models.UserUpdatable)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  username = %s
		RETURNING %s`,
		set.SetClause(), set.Next(b.Dialect), userColumns)

	u, err := scanUser(r.q.QueryRow(ctx, query, append(set.Values, username)...))
	if db.IsNotFound(err) {
		return nil, noUser(username)
	}
	return u, err
}

// Remove deletes the user called username.
func (r *userRepo) Remove(ctx context.Context, username string) error {
	var deleted string
	err := r.q.QueryRow(ctx, sqlDeleteUser, username).Scan(&deleted)
	if db.IsNotFound(err) {
		return noUser(username)
	}
	return err
}

// scanUser centralises the user column mapping.
func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
