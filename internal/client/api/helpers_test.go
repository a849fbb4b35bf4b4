package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeTokens is an in-memory TokenStore that records what the client did.
type fakeTokens struct {
	mu sync.Mutex

	access  string
	refresh string
	user    bool

	readErr error
	saveErr error

	saves       int
	clears      int
	lastAccess  string
	lastRefresh string
}

func (f *fakeTokens) AccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.readErr
}

func (f *fakeTokens) RefreshToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh, f.readErr
}

func (f *fakeTokens) SaveTokens(_ context.Context, access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.lastAccess, f.lastRefresh = access, refresh
	if f.saveErr != nil {
		return f.saveErr
	}
	f.access = access
	if refresh != "" {
		f.refresh = refresh
	}
	return nil
}

func (f *fakeTokens) ClearSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.access, f.refresh, f.user = "", "", false
	return nil
}

func (f *fakeTokens) snapshot() (access, refresh string, user bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh, f.user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "success": true})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "success": false})
}

func newTestClient(t *testing.T, h http.Handler, tokens *fakeTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, tokens, WithHTTPClient(srv.Client()), WithLogger(logging.NewDiscardLogger()))
	require.NoError(t, err)
	return c
}

func requireAPIError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "expected *api.Error, got %T: %v", err, err)
	return e
}
