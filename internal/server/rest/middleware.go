package rest

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/flashdeck/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// authenticate resolves the bearer token into the actor id stored in the
// request locals.
func (s *Server) authenticate(c *fiber.Ctx) error {

	header := c.Get(common.AuthorizationHeaderName)
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return fail(c, fiber.StatusUnauthorized, "not authorized, no token")
	}

	userID, err := s.users.Authenticate(c.UserContext(), token)
	if err != nil {
		s.logger.Debug(c.UserContext(), "token rejected", "error", err)
		status, message := statusOf(err)
		if status != fiber.StatusUnauthorized {
			return err
		}
		return fail(c, status, message)
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func actor(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// requestLogger writes one line per request through the server logger.
// Handler errors are rendered here so the logged status is the final one.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String())
	return nil
}
