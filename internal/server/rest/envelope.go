package rest

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/flashdeck/internal/common"
)

// envelope is the body of every response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}

func respondList(c *fiber.Ctx, count int, data any) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Count: &count, Data: data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Success: false, Message: message})
}

var errInvalidBody = common.NewValidationError("invalid request body")

// parseBody decodes a JSON request body into v. An empty body leaves v
// untouched.
func parseBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidBody
	}
	return nil
}

// statusOf maps a service error to an HTTP status and a message that is safe
// to show to clients.
func statusOf(err error) (int, string) {
	var ve *common.ValidationError
	var fe *fiber.Error

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		return fiber.StatusBadRequest, "user already exists with this email"
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorImmutableDefault):
		return fiber.StatusForbidden, "default decks are read-only"
	case errors.Is(err, common.ErrorForbidden):
		return fiber.StatusForbidden, "not authorized"
	case errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorUnavailable):
		return fiber.StatusServiceUnavailable, "service unavailable"
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "internal error"
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, message := statusOf(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return fail(c, status, message)
}
