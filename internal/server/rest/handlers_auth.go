package rest

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := s.users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", user.ID)
	return respond(c, fiber.StatusCreated, "user registered successfully", fiber.Map{
		"user":  toUserDTO(user),
		"token": token,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "login successful", fiber.Map{
		"user":  toUserDTO(user),
		"token": token,
	})
}

func (s *Server) me(c *fiber.Ctx) error {
	user, err := s.users.Me(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"user": toUserDTO(user)})
}
