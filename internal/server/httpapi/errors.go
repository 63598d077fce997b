package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a workflow error onto an HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrorInvalidInput),
		errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	msg := err.Error()
	if code >= fiber.StatusInternalServerError {
		msg = "internal error"
		s.logger.Error(c.UserContext(), "Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		s.logger.Info(c.UserContext(), "Request rejected", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
	}

	return c.Status(code).JSON(errorResponse{Error: msg})
}
