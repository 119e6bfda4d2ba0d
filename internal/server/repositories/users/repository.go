package users

import (
	"context"

	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Repository stores user identities. Emails are compared case-insensitively;
// Create reports a collision as common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
