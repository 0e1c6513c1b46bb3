package models

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/sqlbuild"
)

// Kind is the JSON type a field must have.
type Kind int

const (
	String Kind = iota + 1
	Integer
	Number
	Boolean
)

func (k Kind) String() string {
	switch k {
	case String:
		return "a string"
	case Integer:
		return "an integer"
	case Number:
		return "a number"
	case Boolean:
		return "a boolean"
	}
	return "unknown"
}

// Rule constrains one request field.
type Rule struct {
	Kind     Kind
	Required bool
	Nullable bool

	MinLength int
	MaxLength int

	Min *float64
	Max *float64

	// Format is "email" or "uri".
	Format string
}

func bound(v float64) *float64 { return &v }

// MaxInt is the largest value an INTEGER column holds.
const MaxInt = math.MaxInt32

// Schema is the set of fields a request body may carry. Unknown fields are
// rejected.
type Schema map[string]Rule

// Fields returns the field names of s, sorted.
func (s Schema) Fields() sqlbuild.Allowlist {
	keys := make(sqlbuild.Allowlist, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks fs against s and returns a bad-request error listing every
// violation.
func (s Schema) Validate(fs sqlbuild.Fields) error {
	var problems []string

	for _, f := range fs {
		rule, ok := s[f.Key]
		if !ok {
			problems = append(problems, fmt.Sprintf("%q is not an allowed field", f.Key))
			continue
		}
		if msg := rule.check(f.Value); msg != "" {
			problems = append(problems, fmt.Sprintf("%q %s", f.Key, msg))
		}
	}

	required := make([]string, 0, len(s))
	for key, rule := range s {
		if rule.Required {
			required = append(required, key)
		}
	}
	sort.Strings(required)
	for _, key := range required {
		if _, ok := fs.Get(key); !ok {
			problems = append(problems, fmt.Sprintf("%q is required", key))
		}
	}

	if len(problems) > 0 {
		return apperr.BadRequest("invalid request body", problems...)
	}
	return nil
}

func (r Rule) check(v any) string {
	if v == nil {
		if r.Nullable {
			return ""
		}
		return "must not be null"
	}

	switch r.Kind {
	case String:
		s, ok := v.(string)
		if !ok {
			return "must be " + r.Kind.String()
		}
		n := utf8.RuneCountInString(s)
		if r.MinLength > 0 && n < r.MinLength {
			return fmt.Sprintf("must be at least %d characters", r.MinLength)
		}
		if r.MaxLength > 0 && n > r.MaxLength {
			return fmt.Sprintf("must be at most %d characters", r.MaxLength)
		}
		switch r.Format {
		case "email":
			if _, err := mail.ParseAddress(s); err != nil {
				return "must be an email address"
			}
		case "uri":
			u, err := url.ParseRequestURI(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return "must be an absolute URI"
			}
		}
	case Integer:
		i, ok := v.(int64)
		if !ok {
			return "must be " + r.Kind.String()
		}
		return r.checkRange(float64(i))
	case Number:
		switch n := v.(type) {
		case int64:
			return r.checkRange(float64(n))
		case float64:
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return "must be " + r.Kind.String()
			}
			return r.checkRange(n)
		}
		return "must be " + r.Kind.String()
	case Boolean:
		if _, ok := v.(bool); !ok {
			return "must be " + r.Kind.String()
		}
	}
	return ""
}

func (r Rule) checkRange(n float64) string {
	if r.Min != nil && n < *r.Min {
		return "must be >= " + strconv.FormatFloat(*r.Min, 'f', -1, 64)
	}
	if r.Max != nil && n > *r.Max {
		return "must be <= " + strconv.FormatFloat(*r.Max, 'f', -1, 64)
	}
	return ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Request schemas
// ─────────────────────────────────────────────────────────────────────────────

var (
	CompanyNewSchema = Schema{
		"handle":       {Kind: String, Required: true, MinLength: 1, MaxLength: 25},
		"name":         {Kind: String, Required: true, MinLength: 1},
		"description":  {Kind: String, Required: true},
		"numEmployees": {Kind: Integer, Nullable: true, Min: bound(0), Max: bound(MaxInt)},
		"logoUrl":      {Kind: String, Nullable: true, Format: "uri"},
	}

	CompanyUpdateSchema = Schema{
		"name":         {Kind: String, MinLength: 1},
		"description":  {Kind: String},
		"numEmployees": {Kind: Integer, Nullable: true, Min: bound(0), Max: bound(MaxInt)},
		"logoUrl":      {Kind: String, Nullable: true, Format: "uri"},
	}

	JobNewSchema = Schema{
		"title":         {Kind: String, Required: true, MinLength: 1},
		"salary":        {Kind: Integer, Nullable: true, Min: bound(0), Max: bound(MaxInt)},
		"equity":        {Kind: Number, Nullable: true, Min: bound(0), Max: bound(1)},
		"companyHandle": {Kind: String, Required: true, MinLength: 1, MaxLength: 25},
	}

	JobUpdateSchema = Schema{
		"title":         {Kind: String, MinLength: 1},
		"salary":        {Kind: Integer, Nullable: true, Min: bound(0), Max: bound(MaxInt)},
		"equity":        {Kind: Number, Nullable: true, Min: bound(0), Max: bound(1)},
		"companyHandle": {Kind: String, MinLength: 1, MaxLength: 25},
	}

	UserAuthSchema = Schema{
		"username": {Kind: String, Required: true, MinLength: 1},
		"password": {Kind: String, Required: true, MinLength: 1},
	}

	UserRegisterSchema = Schema{
		"username":  {Kind: String, Required: true, MinLength: 1, MaxLength: 30},
		"password":  {Kind: String, Required: true, MinLength: 5, MaxLength: 20},
		"firstName": {Kind: String, Required: true, MinLength: 1, MaxLength: 30},
		"lastName":  {Kind: String, Required: true, MinLength: 1, MaxLength: 30},
		"email":     {Kind: String, Required: true, MinLength: 6, MaxLength: 60, Format: "email"},
	}

	UserNewSchema = withRule(UserRegisterSchema, "isAdmin", Rule{Kind: Boolean})

	UserUpdateSchema = Schema{
		"password":  {Kind: String, MinLength: 5, MaxLength: 20},
		"firstName": {Kind: String, MinLength: 1, MaxLength: 30},
		"lastName":  {Kind: String, MinLength: 1, MaxLength: 30},
		"email":     {Kind: String, MinLength: 6, MaxLength: 60, Format: "email"},
	}
)

// Fields each entity accepts in a partial update.
var (
	CompanyUpdatable = CompanyUpdateSchema.Fields()
	JobUpdatable     = JobUpdateSchema.Fields()
	UserUpdatable    = UserUpdateSchema.Fields()
)

func withRule(s Schema, key string, r Rule) Schema {
	out := make(Schema, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[key] = r
	return out
}
