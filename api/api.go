// Package api exposes companies, jobs and users over HTTP with fiber.
package api

import (
	"context"
	"time"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolReporter is implemented by *db.DB.
type poolReporter interface {
	PoolStats() db.PoolStats
}

// Deps holds everything the handlers need.
type Deps struct {
	Companies repo.CompanyRepository
	Jobs      repo.JobRepository
	Users     repo.UserRepository
	Signer    *auth.Signer

	// DB and Stats feed the health endpoint. Stats may be nil.
	DB    Pinger
	Stats *db.QueryStats

	Logger *zap.Logger
	// QueryTimeout bounds the request context handed to repositories.
	// Zero disables it.
	QueryTimeout time.Duration
}

type server struct {
	Deps
}

// New builds the fiber application with every route mounted.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	s := &server{Deps: d}

	app := fiber.New(fiber.Config{
		AppName:               "jobly",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(d.Logger),
	})

	app.Use(requestLogger(d.Logger.Named("http")))
	app.Use(requestTimeout(d.QueryTimeout))
	app.Use(s.authenticateJWT)

	app.Get("/health", s.health)

	a := app.Group("/auth")
	a.Post("/token", s.token)
	a.Post("/register", s.register)

	c := app.Group("/companies")
	c.Post("/", ensureAdmin, s.createCompany)
	c.Get("/", s.listCompanies)
	c.Get("/:handle", s.getCompany)
	c.Patch("/:handle", ensureAdmin, s.updateCompany)
	c.Delete("/:handle", ensureAdmin, s.deleteCompany)

	j := app.Group("/jobs")
	j.Post("/", ensureAdmin, s.createJob)
	j.Get("/", s.listJobs)
	j.Get("/:id", s.getJob)
	j.Patch("/:id", ensureAdmin, s.updateJob)
	j.Delete("/:id", ensureAdmin, s.deleteJob)

	u := app.Group("/users", ensureLoggedIn)
	u.Post("/", ensureAdmin, s.createUser)
	u.Get("/", ensureAdmin, s.listUsers)
	u.Get("/:username", ensureCorrectUserOrAdmin, s.getUser)
	u.Patch("/:username", ensureCorrectUserOrAdmin, s.updateUser)
	u.Delete("/:username", ensureCorrectUserOrAdmin, s.deleteUser)

	return app
}

func (s *server) health(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if err := s.DB.Ping(c.UserContext()); err != nil {
		s.Logger.Warn("health: database ping failed", zap.Error(err))
		status, code = "unavailable", fiber.StatusServiceUnavailable
	}

	body := fiber.Map{"status": status}
	if s.Stats != nil {
		snap := s.Stats.Snapshot()
		body["queries"] = snap.Total
		body["failedQueries"] = snap.Failed
	}
	if p, ok := s.DB.(poolReporter); ok {
		body["pool"] = p.PoolStats()
	}
	return c.Status(code).JSON(body)
}
