package resettokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
)

type entry struct {
	userID  string
	expires time.Time
}

type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]entry
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = entry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	delete(s.tokens, token)
	if !s.now().Before(e.expires) {
		return "", common.ErrInvalidToken
	}
	return e.userID, nil
}
