package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/starterkit/internal/server/repositories/posts"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. WithTx
// serializes transactions against each other but does not roll back.
type MemoryRepositoryManager struct {
	txMu          *sync.Mutex
	users         *users.MemoryRepository
	posts         *posts.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		txMu:          &sync.Mutex{},
		users:         users.NewMemoryRepository(),
		posts:         posts.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Posts() posts.Repository { return m.posts }

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.refreshTokens }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
