// Package users declares the storage contract for dev server accounts and
// provides Postgres and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

// Repository stores accounts. Lookups that match nothing return
// common.ErrorNotFound; a duplicate email returns common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
