package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
)

const (
	insertTokenSQL = `INSERT INTO refresh_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token) DO NOTHING`

	selectTokenSQL = `SELECT user_id, expires_at FROM refresh_tokens WHERE token = $1`

	takeTokenSQL = `DELETE FROM refresh_tokens WHERE token = $1
RETURNING user_id, expires_at`

	deleteUserTokensSQL = `DELETE FROM refresh_tokens WHERE user_id = $1`

	deleteExpiredSQL = `DELETE FROM refresh_tokens WHERE expires_at < $1`
)

// PostgresRepository keeps refresh tokens in the refresh_tokens table. It
// runs on whatever dbx.DBTX it is given, so it joins the caller's transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	res, err := r.db.ExecContext(ctx, insertTokenSQL, token, userID, time.Now().Add(validity))
	if err != nil {
		return fmt.Errorf("refresh token insert: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.scanOne(ctx, selectTokenSQL, token)
}

func (r *PostgresRepository) Take(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.scanOne(ctx, takeTokenSQL, token)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query, token string) (*models.RefreshToken, error) {
	rt := models.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.UserID, &rt.Expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, common.ErrorNotFound
	case err != nil:
		return nil, fmt.Errorf("refresh token lookup: %w", err)
	}
	return &rt, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, deleteUserTokensSQL, userID); err != nil {
		return fmt.Errorf("refresh token revoke: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSQL, t)
	if err != nil {
		return 0, fmt.Errorf("refresh token purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("refresh token purge: %w", err)
	}
	return n, nil
}
