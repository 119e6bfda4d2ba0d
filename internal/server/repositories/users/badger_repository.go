package users

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Key layout:
//
//	user:<id>               JSON models.User
//	user-email:<lower(email)>  raw user id
const (
	userPrefix  = "user:"
	emailPrefix = "user-email:"
)

type BadgerRepository struct {
	store *kvx.Store
}

func NewBadgerRepository(store *kvx.Store) *BadgerRepository {
	return &BadgerRepository{store: store}
}

func emailKey(email string) string {
	return emailPrefix + strings.ToLower(email)
}

func (r *BadgerRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := r.store.Update(func(txn *badger.Txn) error {
		taken, err := kvx.Exists(txn, emailKey(user.Email))
		if err != nil {
			return err
		}
		if taken {
			return common.ErrorAlreadyExists
		}
		if err := kvx.SetJSON(txn, userPrefix+user.ID, user); err != nil {
			return err
		}
		return kvx.SetRaw(txn, emailKey(user.Email), []byte(user.ID))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *BadgerRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.store.View(func(txn *badger.Txn) error {
		id, err := kvx.GetRaw(txn, emailKey(email))
		if err != nil {
			return err
		}
		return kvx.GetJSON(txn, userPrefix+string(id), user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := r.store.View(func(txn *badger.Txn) error {
		return kvx.GetJSON(txn, userPrefix+id, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
