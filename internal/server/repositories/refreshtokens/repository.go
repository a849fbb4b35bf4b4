// Package refreshtokens declares the storage contract for opaque refresh
// tokens and provides Postgres and in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, valid until now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Take removes the token and returns what was stored, expired or not.
	// Of two concurrent callers only one gets the row; the other gets
	// common.ErrorNotFound.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired drops tokens that expired before t and reports how many.
	DeleteExpired(ctx context.Context, t time.Time) (int64, error)
}
