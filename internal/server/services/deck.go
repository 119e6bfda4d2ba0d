package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/authz"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

const (
	maxDeckNameLen        = 100
	maxDeckDescriptionLen = 500
)

// DeckInput holds the fields of a new deck.
type DeckInput struct {
	Name        string
	Description string
}

// DeckPatch holds the deck fields to change; nil fields are left alone.
type DeckPatch struct {
	Name        *string
	Description *string
}

// DeckWithCards is a deck together with the cards that reference it.
type DeckWithCards struct {
	Deck  *models.Deck
	Cards []*models.Flashcard
}

type DeckService struct {
	repomanager repomanager.RepositoryManager
	coordinator *Coordinator
	logger      logging.Logger
}

func NewDeckService(m repomanager.RepositoryManager, c *Coordinator, logger logging.Logger) *DeckService {
	return &DeckService{repomanager: m, coordinator: c, logger: logger.With("module", "decks")}
}

// List returns every default deck plus the actor's own decks.
func (s *DeckService) List(ctx context.Context, actor string) ([]*models.Deck, error) {
	decks, err := s.repomanager.Repositories().Decks.ListVisible(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("error listing decks: %w", err)
	}
	return decks, nil
}

// load fetches a deck and checks op against it. A missing deck is reported
// before any authorization decision.
func (s *DeckService) load(ctx context.Context, id, actor string, op authz.Operation) (*models.Deck, error) {
	deck, err := s.repomanager.Repositories().Decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(actor, op, authz.Target{Deck: deck}).Err(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Get returns a readable deck with its cards.
func (s *DeckService) Get(ctx context.Context, id, actor string) (*DeckWithCards, error) {
	deck, err := s.load(ctx, id, actor, authz.ReadDeck)
	if err != nil {
		return nil, err
	}

	cards, err := s.repomanager.Repositories().Flashcards.ListByDeck(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}

	return &DeckWithCards{Deck: deck, Cards: cards}, nil
}

// Create makes a new user deck owned by actor with an empty card set.
func (s *DeckService) Create(ctx context.Context, actor string, in DeckInput) (*models.Deck, error) {
	name, err := normalizeDeckName(in.Name)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDeckDescription(in.Description)
	if err != nil {
		return nil, err
	}

	if err := authz.Decide(actor, authz.CreateDeck, authz.Target{}).Err(); err != nil {
		return nil, err
	}

	deck, err := s.repomanager.Repositories().Decks.Create(ctx, &models.Deck{
		Name:        name,
		Description: description,
		Owner:       models.OwnedBy(actor),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating deck: %w", err)
	}

	s.logger.Info(ctx, "deck created", "deck_id", deck.ID, "user_id", actor)
	return deck, nil
}

// Update renames or re-describes a deck the actor owns. Default decks are
// refused even for empty patches.
func (s *DeckService) Update(ctx context.Context, id, actor string, patch DeckPatch) (*models.Deck, error) {
	deck, err := s.load(ctx, id, actor, authz.UpdateDeck)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := normalizeDeckName(*patch.Name)
		if err != nil {
			return nil, err
		}
		deck.Name = name
	}
	if patch.Description != nil {
		description, err := normalizeDeckDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		deck.Description = description
	}

	updated, err := s.repomanager.Repositories().Decks.Update(ctx, deck)
	if err != nil {
		return nil, fmt.Errorf("error updating deck: %w", err)
	}
	return updated, nil
}

// Delete removes a deck the actor owns together with all of its cards.
func (s *DeckService) Delete(ctx context.Context, id, actor string) error {
	deck, err := s.load(ctx, id, actor, authz.DeleteDeck)
	if err != nil {
		return err
	}

	if _, err := s.coordinator.DeleteDeck(ctx, deck); err != nil {
		return fmt.Errorf("error deleting deck: %w", err)
	}
	return nil
}

func normalizeDeckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("please provide a deck name", "name")
	}
	if utf8.RuneCountInString(name) > maxDeckNameLen {
		return "", common.NewValidationError(fmt.Sprintf("deck name must be at most %d characters", maxDeckNameLen), "name")
	}
	return name, nil
}

func normalizeDeckDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDeckDescriptionLen {
		return "", common.NewValidationError(fmt.Sprintf("description must be at most %d characters", maxDeckDescriptionLen), "description")
	}
	return description, nil
}
