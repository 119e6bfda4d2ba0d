package decks

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// deckPrefix keys hold JSON models.Deck, card set included.
const deckPrefix = "deck:"

type BadgerRepository struct {
	store *kvx.Store
	now   func() time.Time
}

func NewBadgerRepository(store *kvx.Store) *BadgerRepository {
	return &BadgerRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (r *BadgerRepository) Create(ctx context.Context, deck *models.Deck) (*models.Deck, error) {
	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}
	now := r.now()
	deck.CreatedAt, deck.UpdatedAt = now, now
	deck.CardIDs = []string{}

	err := r.store.Update(func(txn *badger.Txn) error {
		return kvx.SetJSON(txn, deckPrefix+deck.ID, deck)
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	var deck *models.Deck
	err := r.store.View(func(txn *badger.Txn) error {
		var err error
		deck, err = get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

func get(txn *badger.Txn, id string) (*models.Deck, error) {
	deck := &models.Deck{}
	if err := kvx.GetJSON(txn, deckPrefix+id, deck); err != nil {
		return nil, err
	}
	if deck.CardIDs == nil {
		deck.CardIDs = []string{}
	}
	return deck, nil
}

func (r *BadgerRepository) ListVisible(ctx context.Context, userID string) ([]*models.Deck, error) {
	return r.list(func(d *models.Deck) bool {
		return d.Owner.IsSystem() || d.Owner.IsOwnedBy(userID)
	})
}

func (r *BadgerRepository) ListDefault(ctx context.Context) ([]*models.Deck, error) {
	return r.list(func(d *models.Deck) bool { return d.Owner.IsSystem() })
}

func (r *BadgerRepository) ListAll(ctx context.Context) ([]*models.Deck, error) {
	return r.list(func(*models.Deck) bool { return true })
}

func (r *BadgerRepository) list(keep func(*models.Deck) bool) ([]*models.Deck, error) {
	var all []*models.Deck
	err := r.store.View(func(txn *badger.Txn) error {
		var err error
		all, err = kvx.Scan[*models.Deck](txn, deckPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]*models.Deck, 0, len(all))
	for _, d := range all {
		if !keep(d) {
			continue
		}
		if d.CardIDs == nil {
			d.CardIDs = []string{}
		}
		result = append(result, d)
	}
	slices.SortStableFunc(result, func(a, b *models.Deck) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *BadgerRepository) Update(ctx context.Context, deck *models.Deck) (*models.Deck, error) {
	var updated *models.Deck
	err := r.store.Update(func(txn *badger.Txn) error {
		stored, err := get(txn, deck.ID)
		if err != nil {
			return err
		}
		stored.Name = deck.Name
		stored.Description = deck.Description
		stored.UpdatedAt = r.now()
		updated = stored
		return kvx.SetJSON(txn, deckPrefix+stored.ID, stored)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return r.store.Update(func(txn *badger.Txn) error {
		ok, err := kvx.Exists(txn, deckPrefix+id)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrorNotFound
		}
		return kvx.Delete(txn, deckPrefix+id)
	})
}

func (r *BadgerRepository) AddCard(ctx context.Context, deckID, cardID string) error {
	return r.store.Update(func(txn *badger.Txn) error {
		deck, err := get(txn, deckID)
		if err != nil {
			return err
		}
		if !deck.AddCard(cardID) {
			return nil
		}
		return kvx.SetJSON(txn, deckPrefix+deckID, deck)
	})
}

func (r *BadgerRepository) RemoveCard(ctx context.Context, deckID, cardID string) error {
	return r.store.Update(func(txn *badger.Txn) error {
		deck, err := get(txn, deckID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !deck.RemoveCard(cardID) {
			return nil
		}
		return kvx.SetJSON(txn, deckPrefix+deckID, deck)
	})
}
