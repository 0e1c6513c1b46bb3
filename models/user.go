package models

import "github.com/Skryldev/jobly/sqlbuild"

// User represents a row in the "users" table. The password hash never
// leaves the repository.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// CreateUserParams holds the fields required to create a user. Password is
// the plain text; the repository hashes it.
type CreateUserParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// LoginParams is the body of a token request.
type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserAliases maps user request fields to their columns.
var UserAliases = sqlbuild.Aliases{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}
