package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

func (s *Server) listDecks(c *fiber.Ctx) error {
	decks, err := s.decks.List(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return respondList(c, len(decks), fiber.Map{"decks": toDeckDTOs(decks)})
}

func (s *Server) getDeck(c *fiber.Ctx) error {
	deck, err := s.decks.Get(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"deck": toDeckDetailDTO(deck)})
}

func (s *Server) createDeck(c *fiber.Ctx) error {
	var req deckRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	deck, err := s.decks.Create(c.UserContext(), actor(c), services.DeckInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "deck created successfully", fiber.Map{"deck": toDeckDTO(deck)})
}

func (s *Server) updateDeck(c *fiber.Ctx) error {
	var req deckPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	deck, err := s.decks.Update(c.UserContext(), c.Params("id"), actor(c), services.DeckPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "deck updated successfully", fiber.Map{"deck": toDeckDTO(deck)})
}

func (s *Server) deleteDeck(c *fiber.Ctx) error {
	if err := s.decks.Delete(c.UserContext(), c.Params("id"), actor(c)); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "deck deleted successfully", nil)
}
