// Package models defines the server-side entities: users, decks and
// flashcards, plus the ownership variant shared by decks and cards.
package models

import (
	"encoding/json"
	"errors"
)

// Ownership says who owns a deck or a flashcard. The zero value is
// system-owned (seeded default content); OwnedBy builds a user-owned value.
type Ownership struct {
	userID string
}

// SystemOwned returns the ownership of seeded default content.
func SystemOwned() Ownership {
	return Ownership{}
}

// OwnedBy returns a user ownership. An empty id is rejected by callers
// before reaching here; OwnedBy("") is indistinguishable from SystemOwned.
func OwnedBy(userID string) Ownership {
	return Ownership{userID: userID}
}

// IsSystem reports whether no user owns the entity.
func (o Ownership) IsSystem() bool {
	return o.userID == ""
}

// UserID returns the owning user, if any.
func (o Ownership) UserID() (string, bool) {
	return o.userID, o.userID != ""
}

// IsOwnedBy reports whether actor is the owning user. System-owned
// entities are owned by nobody.
func (o Ownership) IsOwnedBy(actor string) bool {
	return o.userID != "" && o.userID == actor
}

// MarshalJSON encodes system ownership as null and user ownership as the id.
func (o Ownership) MarshalJSON() ([]byte, error) {
	if o.IsSystem() {
		return []byte("null"), nil
	}
	return json.Marshal(o.userID)
}

func (o *Ownership) UnmarshalJSON(b []byte) error {
	var id *string
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	if id == nil {
		*o = SystemOwned()
		return nil
	}
	if *id == "" {
		return errors.New("ownership: empty user id")
	}
	*o = OwnedBy(*id)
	return nil
}
