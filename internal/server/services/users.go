// Package services implements the dev server's account, session and post
// operations on top of the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/dmitrijs2005/starterkit/internal/server/avatars"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/starterkit/internal/server/resettokens"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is what login and registration hand back to the client.
type Session struct {
	TokenPair
	User *models.User
}

type UserService struct {
	repos                        repomanager.RepositoryManager
	resets                       resettokens.Store
	avatars                      avatars.Storage
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
}

func NewUserService(repos repomanager.RepositoryManager, resets resettokens.Store, av avatars.Storage,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		repos:                        repos,
		resets:                       resets,
		avatars:                      av,
		logger:                       logger.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var session *Session
	err = s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if _, err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		pair, err := s.generateTokenPair(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		session = &Session{TokenPair: *pair, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return session, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repos.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, s.repos, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{TokenPair: *pair, User: user}, nil
}

// RefreshToken rotates refreshToken: the old token is taken out of storage
// and a new pair is issued in the same transaction, so a token can be
// redeemed only once. An expired token is still consumed.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		tokenPair *TokenPair
		expired   bool
	)

	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		token, err := tx.RefreshTokens().Take(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error redeeming refresh token: %w", err)
		}

		if token.Expires.Before(time.Now()) {
			expired = true
			return nil
		}

		tokenPair, err = s.generateTokenPair(ctx, tx, token.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return tokenPair, nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be redeemed.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repos.RefreshTokens().DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	return n, nil
}

// Logout revokes every refresh token of the user.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.repos.RefreshTokens().DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}

// Authenticate verifies an access token and returns its user ID.
func (s *UserService) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users().GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	upd.PasswordHash = nil
	return s.repos.Users().Update(ctx, id, upd)
}

// DeleteAccount removes the user together with their posts and sessions.
func (s *UserService) DeleteAccount(ctx context.Context, id string) error {
	return s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if err := tx.RefreshTokens().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Posts().DeleteByAuthor(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
}

// UploadAvatar stores the image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, id, contentType string, data []byte) (*models.User, error) {
	url, err := s.avatars.Put(ctx, avatars.NewKey(id, contentType), contentType, data)
	if err != nil {
		return nil, fmt.Errorf("error storing avatar: %w", err)
	}
	return s.repos.Users().Update(ctx, id, models.UserUpdate{Avatar: &url})
}

// ForgotPassword issues a reset token when the account exists. Unknown emails
// succeed silently so the endpoint cannot be used to probe for accounts.
// The dev server has no mailer, so the token is logged.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repos.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := common.MakeRandHexString(16)
	if err != nil {
		return err
	}
	if err := s.resets.Save(ctx, token, user.ID, s.resetTokenValidityDuration); err != nil {
		return fmt.Errorf("error saving reset token: %w", err)
	}

	s.logger.Info(ctx, "password reset token issued", "user_id", user.ID, "token", token)
	return nil
}

// ResetPassword redeems a reset token, sets the new password and signs the
// user out everywhere.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if _, err := tx.Users().Update(ctx, userID, models.UserUpdate{PasswordHash: &hash}); err != nil {
			return err
		}
		return tx.RefreshTokens().DeleteByUser(ctx, userID)
	})
}

func (s *UserService) generateTokenPair(ctx context.Context, repos repomanager.RepositoryManager, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	if err := repos.RefreshTokens().Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
