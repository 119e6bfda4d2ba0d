// Package authz decides whether an actor may perform an operation on a deck
// or a flashcard. Decisions are pure: callers fetch the entities first and
// pass snapshots in.
package authz

import (
	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Operation is an action on a deck or a flashcard.
type Operation int

const (
	ReadDeck Operation = iota
	CreateDeck
	UpdateDeck
	DeleteDeck
	ReadCard
	CreateCard
	UpdateCard
	DeleteCard
)

var operationNames = map[Operation]string{
	ReadDeck:   "read_deck",
	CreateDeck: "create_deck",
	UpdateDeck: "update_deck",
	DeleteDeck: "delete_deck",
	ReadCard:   "read_card",
	CreateCard: "create_card",
	UpdateCard: "update_card",
	DeleteCard: "delete_card",
}

func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}
	return "unknown"
}

// Reason is the generic token attached to a denial.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotAuthorized    Reason = "not_authorized"
	ReasonImmutableDefault Reason = "immutable_default"
	ReasonDeckNotFound     Reason = "deck_not_found"
)

// Target carries the entity snapshots a decision needs. Deck operations use
// Deck. Card reads use Card and, for system-owned cards, the parent Deck.
// Card creation uses Deck only. Card updates and deletes use Card only.
type Target struct {
	Deck *models.Deck
	Card *models.Flashcard
}

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision {
	return Decision{Reason: r}
}

// Err converts a denial into the matching sentinel error; it returns nil
// when the decision allows the operation.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonImmutableDefault:
		return common.ErrorImmutableDefault
	case ReasonDeckNotFound:
		return common.ErrorNotFound
	default:
		return common.ErrorForbidden
	}
}

// Decide applies the ownership rules for op. Missing snapshots deny.
func Decide(actor string, op Operation, t Target) Decision {
	switch op {
	case ReadDeck:
		return readDeck(actor, t.Deck)
	case CreateDeck:
		return allow
	case UpdateDeck, DeleteDeck:
		return mutateDeck(actor, t.Deck)
	case ReadCard:
		return readCard(actor, t.Card, t.Deck)
	case CreateCard:
		return createCard(actor, t.Deck)
	case UpdateCard, DeleteCard:
		return mutateCard(actor, t.Card)
	}
	return deny(ReasonNotAuthorized)
}

func readDeck(actor string, d *models.Deck) Decision {
	if d == nil {
		return deny(ReasonNotAuthorized)
	}
	if d.Owner.IsSystem() || d.Owner.IsOwnedBy(actor) {
		return allow
	}
	return deny(ReasonNotAuthorized)
}

// Default decks are frozen after seeding, even for no-op edits.
func mutateDeck(actor string, d *models.Deck) Decision {
	if d == nil {
		return deny(ReasonNotAuthorized)
	}
	if d.Owner.IsSystem() {
		return deny(ReasonImmutableDefault)
	}
	if d.Owner.IsOwnedBy(actor) {
		return allow
	}
	return deny(ReasonNotAuthorized)
}

func readCard(actor string, c *models.Flashcard, parent *models.Deck) Decision {
	if c == nil {
		return deny(ReasonNotAuthorized)
	}
	if c.Owner.IsOwnedBy(actor) {
		return allow
	}
	if !c.Owner.IsSystem() {
		return deny(ReasonNotAuthorized)
	}
	if parent != nil && parent.ID == c.DeckID && parent.Kind() == models.DeckKindDefault {
		return allow
	}
	return deny(ReasonNotAuthorized)
}

func createCard(actor string, d *models.Deck) Decision {
	if d == nil {
		return deny(ReasonDeckNotFound)
	}
	if d.Owner.IsSystem() || d.Owner.IsOwnedBy(actor) {
		return allow
	}
	return deny(ReasonNotAuthorized)
}

// Ownership alone decides card mutability: a system-owned card is frozen no
// matter who asks.
func mutateCard(actor string, c *models.Flashcard) Decision {
	if c == nil {
		return deny(ReasonNotAuthorized)
	}
	if c.Owner.IsSystem() {
		return deny(ReasonImmutableDefault)
	}
	if c.Owner.IsOwnedBy(actor) {
		return allow
	}
	return deny(ReasonNotAuthorized)
}

// CardOwnerFor returns the owner a new card in deck d gets when created by
// actor: nobody for default decks, the actor otherwise.
func CardOwnerFor(actor string, d *models.Deck) models.Ownership {
	if d.Owner.IsSystem() {
		return models.SystemOwned()
	}
	return models.OwnedBy(actor)
}
