package store

import (
	"context"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/repositories/kv"
)

// Credentials is the session as persisted: three independent slots.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func (c Credentials) IsAuthenticated() bool {
	return c.User != nil
}

func (s *Store) getString(ctx context.Context, repo kv.Repository, key Key) (string, error) {
	var v string
	if _, err := s.get(ctx, repo, key, &v); err != nil {
		return "", err
	}
	return v, nil
}

// AccessToken returns the stored access token or "" when there is none.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, s.repo, KeyAccessToken)
}

// RefreshToken returns the stored refresh token or "" when there is none.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, s.repo, KeyRefreshToken)
}

// User returns the cached profile, nil when none is stored.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	return s.user(ctx, s.repo)
}

func (s *Store) user(ctx context.Context, repo kv.Repository) (*models.User, error) {
	var u models.User
	found, err := s.get(ctx, repo, KeyUser, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// Credentials reads all three session slots in one transaction.
func (s *Store) Credentials(ctx context.Context) (Credentials, error) {
	var c Credentials
	err := s.inTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		var err error
		if c.AccessToken, err = s.getString(ctx, repo, KeyAccessToken); err != nil {
			return err
		}
		if c.RefreshToken, err = s.getString(ctx, repo, KeyRefreshToken); err != nil {
			return err
		}
		c.User, err = s.user(ctx, repo)
		return err
	})
	if err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (s *Store) IsAuthenticated(ctx context.Context) (bool, error) {
	u, err := s.User(ctx)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// SaveSession writes the three slots of a fresh login atomically.
func (s *Store) SaveSession(ctx context.Context, accessToken, refreshToken string, user *models.User) error {
	return s.inTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		if err := s.set(ctx, repo, KeyAccessToken, accessToken); err != nil {
			return err
		}
		if err := s.set(ctx, repo, KeyRefreshToken, refreshToken); err != nil {
			return err
		}
		return s.setUser(ctx, repo, user)
	})
}

// SaveTokens stores a refreshed access token. An empty refreshToken keeps
// the one already stored.
func (s *Store) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	return s.inTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		if err := s.set(ctx, repo, KeyAccessToken, accessToken); err != nil {
			return err
		}
		if refreshToken == "" {
			return nil
		}
		return s.set(ctx, repo, KeyRefreshToken, refreshToken)
	})
}

// SaveUser caches the profile; a nil user removes it, which signs the
// session out as far as IsAuthenticated is concerned.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	return s.setUser(ctx, s.repo, user)
}

func (s *Store) setUser(ctx context.Context, repo kv.Repository, user *models.User) error {
	if user == nil {
		return s.remove(ctx, repo, KeyUser)
	}
	return s.set(ctx, repo, KeyUser, user)
}

// ClearSession removes the access token, the refresh token and the user.
// Preferences and the onboarding flag survive.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.inTx(ctx, func(ctx context.Context, repo kv.Repository) error {
		for _, k := range []Key{KeyAccessToken, KeyRefreshToken, KeyUser} {
			if err := s.remove(ctx, repo, k); err != nil {
				return err
			}
		}
		return nil
	})
}
