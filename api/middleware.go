package api

import (
	"context"
	"strings"
	"time"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const (
	localUser      = "user"
	localRequestID = "requestID"
	headerReqID    = "X-Request-Id"
)

// requestLogger tags each request with an id and logs it once the response
// status is known. Errors are rendered here so the logged status matches
// what the client receives.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := c.Get(headerReqID)
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		c.Locals(localRequestID, id)
		c.Set(headerReqID, id)

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		}
		if claims := currentUser(c); claims != nil {
			fields = append(fields, zap.String("username", claims.Username))
		}
		log.Info("request handled", fields...)
		return nil
	}
}

// requestTimeout bounds the context handlers pass to the repositories.
func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// authenticateJWT stores the claims of a valid bearer token. A missing or
// invalid token is not an error here; the guards decide.
func (s *server) authenticateJWT(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Next()
	}
	claims, err := s.Signer.Parse(strings.TrimSpace(token))
	if err != nil {
		s.Logger.Debug("ignoring invalid token", zap.Error(err))
		return c.Next()
	}
	c.Locals(localUser, claims)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localUser).(*auth.Claims)
	return claims
}

func ensureLoggedIn(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return apperr.Unauthorized("Unauthorized")
	}
	return c.Next()
}

func ensureAdmin(c *fiber.Ctx) error {
	if u := currentUser(c); u == nil || !u.IsAdmin {
		return apperr.Unauthorized("Unauthorized")
	}
	return c.Next()
}

// ensureCorrectUserOrAdmin lets admins through, and users acting on
// their own :username.
func ensureCorrectUserOrAdmin(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil || !(u.IsAdmin || u.Username == c.Params("username")) {
		return apperr.Unauthorized("Unauthorized")
	}
	return c.Next()
}
