// Package resettokens keeps single-use password-reset tokens with a TTL,
// in Redis or in process memory.
package resettokens

import (
	"context"
	"time"
)

// Store maps a reset token to the user it was issued for. Consume returns
// common.ErrInvalidToken for unknown, used or expired tokens.
type Store interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}
