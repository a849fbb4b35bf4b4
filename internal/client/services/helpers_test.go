package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/store"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	st := store.New(db, logging.NewDiscardLogger())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// fakeAuth implements AuthEndpoints and ProfileEndpoints.
type fakeAuth struct {
	LoginRet    *models.AuthResponse
	LoginErr    error
	RegisterRet *models.AuthResponse
	RegisterErr error
	LogoutErr   error
	MeRet       *models.User
	MeErr       error
	ForgotRet   string
	ForgotErr   error
	ResetRet    string
	ResetErr    error
	UpdateRet   *models.User
	UpdateErr   error
	AvatarRet   *models.AvatarResponse
	AvatarErr   error

	LastLogin    models.LoginRequest
	LastRegister models.RegisterRequest
	LastForgot   string
	LastReset    [2]string
	LastUpdate   models.UpdateProfileRequest
	LastAvatar   string
	LogoutCalls  int
	MeCalls      int
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.LastLogin = req
	return f.LoginRet, f.LoginErr
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.LastRegister = req
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeAuth) Me(context.Context) (*models.User, error) {
	f.MeCalls++
	return f.MeRet, f.MeErr
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) (string, error) {
	f.LastForgot = email
	return f.ForgotRet, f.ForgotErr
}

func (f *fakeAuth) ResetPassword(_ context.Context, token, pw string) (string, error) {
	f.LastReset = [2]string{token, pw}
	return f.ResetRet, f.ResetErr
}

func (f *fakeAuth) UpdateProfile(_ context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	f.LastUpdate = req
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeAuth) UploadAvatar(_ context.Context, name, _ string, _ []byte) (*models.AvatarResponse, error) {
	f.LastAvatar = name
	return f.AvatarRet, f.AvatarErr
}
