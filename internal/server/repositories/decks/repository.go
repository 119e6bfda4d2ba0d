package decks

import (
	"context"

	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Repository stores decks together with their card sets.
//
// AddCard and RemoveCard only change the set; they are meant to be called by
// the consistency coordinator, never by request handlers directly. AddCard on
// a missing deck is common.ErrorNotFound. RemoveCard is idempotent and a
// missing deck is a no-op.
type Repository interface {
	Create(ctx context.Context, deck *models.Deck) (*models.Deck, error)
	GetByID(ctx context.Context, id string) (*models.Deck, error)
	// ListVisible returns all default decks plus the decks owned by userID.
	ListVisible(ctx context.Context, userID string) ([]*models.Deck, error)
	ListDefault(ctx context.Context) ([]*models.Deck, error)
	ListAll(ctx context.Context) ([]*models.Deck, error)
	// Update persists Name and Description.
	Update(ctx context.Context, deck *models.Deck) (*models.Deck, error)
	Delete(ctx context.Context, id string) error
	AddCard(ctx context.Context, deckID, cardID string) error
	RemoveCard(ctx context.Context, deckID, cardID string) error
}
