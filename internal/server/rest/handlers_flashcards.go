package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

// listFlashcards returns the cards of ?deckId, or the caller's own cards
// when no deck is given.
func (s *Server) listFlashcards(c *fiber.Ctx) error {
	var (
		cards []*models.Flashcard
		err   error
	)
	if deckID := c.Query("deckId"); deckID != "" {
		cards, err = s.cards.ListByDeck(c.UserContext(), deckID, actor(c))
	} else {
		cards, err = s.cards.ListByOwner(c.UserContext(), actor(c))
	}
	if err != nil {
		return err
	}
	return respondList(c, len(cards), fiber.Map{"flashcards": toFlashcardDTOs(cards)})
}

func (s *Server) getFlashcard(c *fiber.Ctx) error {
	card, err := s.cards.Get(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"flashcard": toFlashcardDTO(card)})
}

func (s *Server) createFlashcard(c *fiber.Ctx) error {
	var req flashcardRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	card, err := s.cards.Create(c.UserContext(), actor(c), services.FlashcardInput{
		DeckID:     req.DeckID,
		Question:   req.Question,
		Answer:     req.Answer,
		Details:    req.Details,
		Images:     req.Images,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "flashcard created successfully", fiber.Map{"flashcard": toFlashcardDTO(card)})
}

func (s *Server) updateFlashcard(c *fiber.Ctx) error {
	var req flashcardPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	card, err := s.cards.Update(c.UserContext(), c.Params("id"), actor(c), services.FlashcardPatch{
		Question:   req.Question,
		Answer:     req.Answer,
		Details:    req.Details,
		Images:     req.Images,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "flashcard updated successfully", fiber.Map{"flashcard": toFlashcardDTO(card)})
}

func (s *Server) deleteFlashcard(c *fiber.Ctx) error {
	if err := s.cards.Delete(c.UserContext(), c.Params("id"), actor(c)); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "flashcard deleted successfully", nil)
}

func (s *Server) imageUploadURL(c *fiber.Ctx) error {
	key, url, err := s.images.UploadURL(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"key": key, "url": url})
}
