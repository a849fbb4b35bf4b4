// Package services contains the session and settings services used by the
// CLI. They sit between the commands and the api/store packages and own the
// rules for when a session is written or wiped.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/starterkit/internal/client/api"
	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/store"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

// AuthEndpoints is the subset of *api.AuthAPI the session service calls.
type AuthEndpoints interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

// ProfileEndpoints is the subset of *api.UsersAPI the session service calls.
type ProfileEndpoints interface {
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, fileName, contentType string, data []byte) (*models.AvatarResponse, error)
}

// AuthService manages the stored session.
//
// Contract:
//   - SignIn/SignUp: authenticate and store token, refresh token and user together.
//   - SignOut: tell the server (best effort) and always clear the stored session.
//   - CheckAuth: on start, verify a stored session with /auth/me; an auth
//     failure clears it, a network failure keeps the cached user.
//   - RefreshAuth: re-fetch the current user and cache it.
//   - UpdateUser: replace the cached user without a server call.
//   - UpdateProfile/UploadAvatar: change the profile on the server and cache the result.
//   - Close: release the session database.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignUp(ctx context.Context, name, email, password string) (*models.User, error)
	SignOut(ctx context.Context) error
	CheckAuth(ctx context.Context) (*models.User, error)
	RefreshAuth(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, fileName, contentType string, data []byte) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	Close(ctx context.Context) error
}

type authService struct {
	auth   AuthEndpoints
	users  ProfileEndpoints
	store  *store.Store
	logger logging.Logger
}

// NewAuthService wires the service to the API endpoint groups and the store.
func NewAuthService(a *api.API, st *store.Store, logger logging.Logger) AuthService {
	return newAuthService(a.Auth, a.Users, st, logger)
}

func newAuthService(auth AuthEndpoints, users ProfileEndpoints, st *store.Store, logger logging.Logger) *authService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &authService{auth: auth, users: users, store: st, logger: logger}
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

func (s *authService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	resp, err := s.auth.Register(ctx, models.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, resp)
}

func (s *authService) startSession(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if err := s.store.SaveSession(ctx, resp.Token, resp.RefreshToken, resp.User); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info(ctx, "signed in", "user", resp.User.ID)
	return resp.User, nil
}

func (s *authService) SignOut(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn(ctx, "logout call failed", "error", err)
	}
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *authService) CheckAuth(ctx context.Context) (*models.User, error) {
	creds, err := s.store.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" || creds.User == nil {
		return nil, nil
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			s.logger.Info(ctx, "stored session rejected, clearing", "error", err)
			if cerr := s.store.ClearSession(ctx); cerr != nil {
				return nil, fmt.Errorf("failed to clear session: %w", cerr)
			}
			return nil, nil
		}
		s.logger.Warn(ctx, "could not verify session, using cached user", "error", err)
		return creds.User, nil
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) RefreshAuth(ctx context.Context) (*models.User, error) {
	token, err := s.store.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			if cerr := s.store.ClearSession(ctx); cerr != nil {
				s.logger.Error(ctx, "failed to clear session", "error", cerr)
			}
		}
		return nil, err
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateUser(ctx context.Context, user *models.User) error {
	return s.store.SaveUser(ctx, user)
}

func (s *authService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar uploads the image and stores the returned URL on the cached user.
func (s *authService) UploadAvatar(ctx context.Context, fileName, contentType string, data []byte) (*models.User, error) {
	resp, err := s.users.UploadAvatar(ctx, fileName, contentType, data)
	if err != nil {
		return nil, err
	}

	user, err := s.store.User(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	user.Avatar = resp.AvatarURL
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.store.User(ctx)
}

func (s *authService) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.store.IsAuthenticated(ctx)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.auth.ForgotPassword(ctx, email)
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return s.auth.ResetPassword(ctx, token, newPassword)
}

func (s *authService) Close(ctx context.Context) error {
	return s.store.Close()
}
