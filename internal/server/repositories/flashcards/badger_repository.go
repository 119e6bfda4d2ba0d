package flashcards

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Key layout:
//
//	card:<id>                    JSON models.Flashcard
//	card-deck:<deckID>:<cardID>  empty, secondary index by deck
const (
	cardPrefix     = "card:"
	cardDeckPrefix = "card-deck:"
)

func deckIndexKey(deckID, cardID string) string {
	return cardDeckPrefix + deckID + ":" + cardID
}

type BadgerRepository struct {
	store *kvx.Store
	now   func() time.Time
}

func NewBadgerRepository(store *kvx.Store) *BadgerRepository {
	return &BadgerRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (r *BadgerRepository) Create(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	now := r.now()
	card.CreatedAt, card.UpdatedAt = now, now

	err := r.store.Update(func(txn *badger.Txn) error {
		if err := kvx.SetJSON(txn, cardPrefix+card.ID, card); err != nil {
			return err
		}
		return kvx.SetRaw(txn, deckIndexKey(card.DeckID, card.ID), nil)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.Flashcard, error) {
	card := &models.Flashcard{}
	err := r.store.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, cardPrefix+id, card)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *BadgerRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.Flashcard, error) {
	result := make([]*models.Flashcard, 0)
	err := r.store.View(func(txn *badger.Txn) error {
		keys, err := kvx.Keys(txn, cardDeckPrefix+deckID+":")
		if err != nil {
			return err
		}
		for _, k := range keys {
			id := k[strings.LastIndex(k, ":")+1:]
			card := &models.Flashcard{}
			if err := kvx.GetJSON(txn, cardPrefix+id, card); err != nil {
				return err
			}
			result = append(result, card)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortCards(result)
	return result, nil
}

func (r *BadgerRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Flashcard, error) {
	return r.scan(func(c *models.Flashcard) bool { return c.Owner.IsOwnedBy(userID) })
}

func (r *BadgerRepository) ListAll(ctx context.Context) ([]*models.Flashcard, error) {
	return r.scan(func(*models.Flashcard) bool { return true })
}

func (r *BadgerRepository) scan(keep func(*models.Flashcard) bool) ([]*models.Flashcard, error) {
	var all []*models.Flashcard
	err := r.store.View(func(txn *badger.Txn) error {
		var err error
		all, err = kvx.Scan[*models.Flashcard](txn, cardPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	result := slices.DeleteFunc(all, func(c *models.Flashcard) bool { return !keep(c) })
	sortCards(result)
	return result, nil
}

func sortCards(cards []*models.Flashcard) {
	slices.SortStableFunc(cards, func(a, b *models.Flashcard) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func (r *BadgerRepository) Update(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {
	var updated *models.Flashcard
	err := r.store.Update(func(txn *badger.Txn) error {
		stored := &models.Flashcard{}
		if err := kvx.GetJSON(txn, cardPrefix+card.ID, stored); err != nil {
			return err
		}
		stored.Question = card.Question
		stored.Answer = card.Answer
		stored.Details = card.Details
		stored.Images = card.Images
		stored.Difficulty = card.Difficulty
		stored.Tags = card.Tags
		stored.UpdatedAt = r.now()
		updated = stored
		return kvx.SetJSON(txn, cardPrefix+stored.ID, stored)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	return r.store.Update(func(txn *badger.Txn) error {
		card := &models.Flashcard{}
		if err := kvx.GetJSON(txn, cardPrefix+id, card); err != nil {
			return err
		}
		if err := kvx.Delete(txn, deckIndexKey(card.DeckID, id)); err != nil {
			return err
		}
		return kvx.Delete(txn, cardPrefix+id)
	})
}

func (r *BadgerRepository) DeleteByDeck(ctx context.Context, deckID string) (int64, error) {
	var n int64
	err := r.store.Update(func(txn *badger.Txn) error {
		keys, err := kvx.Keys(txn, cardDeckPrefix+deckID+":")
		if err != nil {
			return err
		}
		for _, k := range keys {
			id := k[strings.LastIndex(k, ":")+1:]
			if err := kvx.Delete(txn, cardPrefix+id); err != nil {
				return err
			}
			if err := kvx.Delete(txn, k); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

var (
	_ Repository = (*BadgerRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
