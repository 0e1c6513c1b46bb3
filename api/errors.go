package api

import (
	"errors"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/db"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string, []string) {
	var fe *fiber.Error
	switch {
	case apperr.IsBadRequest(err):
		msg, details := apperr.Message(err)
		return fiber.StatusBadRequest, msg, details
	case apperr.IsUnauthorized(err):
		msg, _ := apperr.Message(err)
		return fiber.StatusUnauthorized, msg, nil
	case apperr.IsForbidden(err):
		msg, _ := apperr.Message(err)
		return fiber.StatusForbidden, msg, nil
	case apperr.IsNotFound(err):
		msg, _ := apperr.Message(err)
		return fiber.StatusNotFound, msg, nil
	case errors.As(err, &fe):
		return fe.Code, fe.Message, nil
	case db.IsNotFound(err):
		return fiber.StatusNotFound, "Not Found", nil
	case db.IsDuplicateKey(err), db.IsForeignKeyViolation(err), db.IsCheckViolation(err):
		return fiber.StatusBadRequest, "Constraint violation", nil
	case db.IsOutOfRange(err):
		return fiber.StatusBadRequest, "Value out of range", nil
	case db.IsTimeout(err), db.IsConnectionFailed(err):
		return fiber.StatusServiceUnavailable, "Service Unavailable", nil
	}
	return fiber.StatusInternalServerError, "Internal Server Error", nil
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, msg, details := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.Any("request_id", c.Locals(localRequestID)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(errorBody{Error: errorDetail{
			Message: msg,
			Status:  status,
			Details: details,
		}})
	}
}
