package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/avatars"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/starterkit/internal/server/resettokens"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// issuedResets remembers reset tokens, which the server only logs.
type issuedResets struct {
	resettokens.Store
	mu     sync.Mutex
	tokens map[string]string
}

func (s *issuedResets) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return s.Store.Save(ctx, token, userID, ttl)
}

func (s *issuedResets) tokenFor(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID]
}

type testEnv struct {
	ts     *httptest.Server
	repos  *repomanager.MemoryRepositoryManager
	resets *issuedResets
	files  *avatars.MemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		ResetTokenValidityDuration:   time.Hour,
	}
	env := &testEnv{
		repos:  repomanager.NewMemoryRepositoryManager(),
		resets: &issuedResets{Store: resettokens.NewMemoryStore(), tokens: map[string]string{}},
		files:  avatars.NewMemoryStorage(),
	}
	l := logging.NewDiscardLogger()
	us := services.NewUserService(env.repos, env.resets, env.files, l, cfg)
	ps := services.NewPostService(env.repos, l)

	env.ts = httptest.NewServer(NewServer("", l, us, ps, env.files).Handler())
	t.Cleanup(env.ts.Close)
	return env
}

type apiResult struct {
	Status  int                 `json:"-"`
	Header  http.Header         `json:"-"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors"`
	Success bool                `json:"success"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *apiResult {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) *apiResult {
	t.Helper()

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	res := &apiResult{Status: resp.StatusCode, Header: resp.Header}
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(raw, res), string(raw))
	}
	return res
}

func decodeData[T any](t *testing.T, res *apiResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v), string(res.Data))
	return v
}

// registerUser signs up a fresh account and returns its session.
func (e *testEnv) registerUser(t *testing.T, email, name string) authResponse {
	t.Helper()
	res := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": name,
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	return decodeData[authResponse](t, res)
}
