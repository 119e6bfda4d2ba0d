package models

import (
	"slices"
	"time"
)

// DeckKind distinguishes seeded default decks from user decks.
type DeckKind string

const (
	DeckKindDefault DeckKind = "default"
	DeckKindUser    DeckKind = "user"
)

// Deck is a named set of flashcards. CardIDs has set semantics; order is
// not meaningful.
type Deck struct {
	ID          string
	Name        string
	Description string
	Owner       Ownership
	CardIDs     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Kind is derived from ownership: system-owned decks are default decks.
func (d *Deck) Kind() DeckKind {
	if d.Owner.IsSystem() {
		return DeckKindDefault
	}
	return DeckKindUser
}

// HasCard reports whether id is in the deck's card set.
func (d *Deck) HasCard(id string) bool {
	return slices.Contains(d.CardIDs, id)
}

// AddCard inserts id into the card set and reports whether it was absent.
func (d *Deck) AddCard(id string) bool {
	if d.HasCard(id) {
		return false
	}
	d.CardIDs = append(d.CardIDs, id)
	return true
}

// RemoveCard drops id from the card set and reports whether it was present.
func (d *Deck) RemoveCard(id string) bool {
	i := slices.Index(d.CardIDs, id)
	if i < 0 {
		return false
	}
	d.CardIDs = slices.Delete(d.CardIDs, i, i+1)
	return true
}
