// Package posts declares the storage contract for posts and provides
// Postgres and in-memory implementations.
package posts

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

// Repository stores posts. Listings are ordered newest first.
type Repository interface {
	Create(ctx context.Context, post *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID string) error

	// List returns one page of the posts matching f and the total number of matches.
	List(ctx context.Context, f models.PostFilter, page models.PageRequest) ([]models.Post, int, error)
}
