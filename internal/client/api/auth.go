package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
)

// AuthAPI wraps the /auth endpoints. It does not touch the credential
// store; persisting a session is the caller's job.
type AuthAPI struct {
	c *Client
}

func (a *AuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return Call[models.AuthResponse](ctx, a.c, &Request{
		Method: http.MethodPost, Path: "/auth/login", Body: req, SkipRefresh: true,
	})
}

func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return Call[models.AuthResponse](ctx, a.c, &Request{
		Method: http.MethodPost, Path: "/auth/register", Body: req, SkipRefresh: true,
	})
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.c.Do(ctx, &Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
	return err
}

func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	return Call[models.User](ctx, a.c, &Request{Method: http.MethodGet, Path: "/auth/me"})
}

// Refresh exchanges a refresh token directly. The pipeline refreshes on its
// own; this is for callers that manage tokens themselves.
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	return Call[models.RefreshResponse](ctx, a.c, &Request{
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Body:        models.RefreshRequest{RefreshToken: refreshToken},
		SkipRefresh: true,
		anonymous:   true,
	})
}

// ForgotPassword asks the server to send a reset token and returns the
// server's message.
func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := a.c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        "/auth/forgot-password",
		Body:        models.ForgotPasswordRequest{Email: email},
		SkipRefresh: true,
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *AuthAPI) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	resp, err := a.c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        "/auth/reset-password",
		Body:        models.ResetPasswordRequest{Token: token, Password: newPassword},
		SkipRefresh: true,
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
