// path: controllers/helpers.go
package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/apperr"
	"github.com/AWS-First-Cloud-Journey/Disaster-Rescue-Relief-Platform/models"
)

func sendOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(models.Envelope{Success: true, Data: data})
}

func badReq(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.Envelope{
		Success: false,
		Error:   string(apperr.Validation),
		Message: msg,
	})
}

// fail renders err as an envelope. Unclassified errors become a 500 with
// a generic message; their detail only goes to the log.
func fail(c *fiber.Ctx, log *zap.Logger, err error, fallback string) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= fiber.StatusInternalServerError {
		log.Error(fallback,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(models.Envelope{
		Success: false,
		Error:   string(kind),
		Message: apperr.Message(err, fallback),
	})
}

// ErrorHandler renders errors that escape handlers (unknown routes, panics
// caught by recover) in the same envelope.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := apperr.Unknown
			switch fe.Code {
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				kind = apperr.Validation
			case fiber.StatusUnauthorized:
				kind = apperr.Authentication
			case fiber.StatusForbidden:
				kind = apperr.Permission
			case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
				kind = apperr.NotFound
			}
			return c.Status(fe.Code).JSON(models.Envelope{Success: false, Error: string(kind), Message: fe.Message})
		}
		return fail(c, log, err, "internal error")
	}
}

// parseBool understands common truthy strings.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// parseLimit clamps ?limit to [1, 100]; junk falls back to def.
func parseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}
