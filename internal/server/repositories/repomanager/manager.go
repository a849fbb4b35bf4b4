// Package repomanager hands out the dev server's repositories, either all
// backed by one Postgres database or all kept in memory, and runs groups of
// repository calls atomically.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/server/repositories/posts"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Posts() posts.Repository
	RefreshTokens() refreshtokens.Repository

	// WithTx runs fn with a manager whose repositories share one transaction.
	// Calls are not nestable.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error

	Close() error
}
