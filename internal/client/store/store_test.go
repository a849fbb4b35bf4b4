package store

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/repositories/kv"
	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, logging.NewDiscardLogger()), db
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	user := &models.User{ID: "u1", Email: "a@b.c", Name: "Ann", CreatedAt: "2024-01-01T00:00:00Z"}
	require.NoError(t, s.Set(ctx, KeyUser, user))
	require.NoError(t, s.Set(ctx, KeyOnboardingComplete, true))
	require.NoError(t, s.Set(ctx, KeyAccessToken, "T1"))

	var gotUser models.User
	found, err := s.Get(ctx, KeyUser, &gotUser)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *user, gotUser)

	var done bool
	found, err = s.Get(ctx, KeyOnboardingComplete, &done)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, done)

	var tok string
	found, err = s.Get(ctx, KeyAccessToken, &tok)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "T1", tok)
}

func TestStore_NeverWrittenKeyIsAbsent(t *testing.T) {
	s, _ := newTestStore(t)

	for _, k := range Keys() {
		var v any
		found, err := s.Get(context.Background(), k, &v)
		require.NoError(t, err, k)
		assert.False(t, found, k)
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "T1"))
	require.NoError(t, s.Set(ctx, KeyAccessToken, "T2"))

	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", tok)
}

func TestStore_RemoveMakesAbsent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyRefreshToken, "R1"))
	require.NoError(t, s.Remove(ctx, KeyRefreshToken))
	require.NoError(t, s.Remove(ctx, KeyRefreshToken))

	var v string
	found, err := s.Get(ctx, KeyRefreshToken, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_UnknownKey(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var v string
	_, err := s.Get(ctx, Key("@nope"), &v)
	require.ErrorIs(t, err, ErrUnknownKey)
	require.ErrorIs(t, s.Set(ctx, Key("@nope"), "x"), ErrUnknownKey)
	require.ErrorIs(t, s.Remove(ctx, Key("@nope")), ErrUnknownKey)
}

func TestStore_UndecodableValueIsAbsent(t *testing.T) {
	var logs bytes.Buffer
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := New(db, logging.NewTextLogger(&logs, "debug"))
	ctx := context.Background()

	require.NoError(t, kv.NewSQLiteRepository(db).Set(ctx, string(KeyUser), []byte("{not json")))

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Contains(t, logs.String(), "discarding unreadable stored value")

	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NilUserSignsOut(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "T1", "R1", &models.User{ID: "u1"}))
	require.NoError(t, s.SaveUser(ctx, nil))

	u, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := kv.NewSQLiteRepository(db).Get(ctx, string(KeyUser))
	require.NoError(t, err)
	assert.Nil(t, raw, "slot is removed, not written as null")

	require.NoError(t, s.SaveSession(ctx, "T2", "R2", nil))
	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", c.AccessToken)
	assert.False(t, c.IsAuthenticated())
}

func TestStore_StoredNullIsAbsent(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.NewSQLiteRepository(db).Set(ctx, string(KeyUser), []byte(" null ")))
	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyPreferences, nil))
	var prefs map[string]any
	found, err := s.Get(ctx, KeyPreferences, &prefs)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_UnencodableValue(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Set(context.Background(), KeyPreferences, make(chan int))
	require.ErrorContains(t, err, "failed to encode @preferences")
}

func TestStore_BackendFailureIsReturned(t *testing.T) {
	s, db := newTestStore(t)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := s.AccessToken(ctx)
	require.Error(t, err)
	require.Error(t, s.Set(ctx, KeyAccessToken, "T"))
	require.Error(t, s.ClearSession(ctx))
	_, err = s.Credentials(ctx)
	require.Error(t, err)
}

func TestStore_SaveSessionAndCredentials(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, empty)
	assert.False(t, empty.IsAuthenticated())

	user := &models.User{ID: "u1", Email: "a@b.c", Name: "Ann"}
	require.NoError(t, s.SaveSession(ctx, "T1", "R1", user))

	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{AccessToken: "T1", RefreshToken: "R1", User: user}, c)
	assert.True(t, c.IsAuthenticated())

	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_SaveTokens(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, "T1", "R1", &models.User{ID: "u1"}))

	require.NoError(t, s.SaveTokens(ctx, "T2", ""))
	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", c.AccessToken)
	assert.Equal(t, "R1", c.RefreshToken)

	require.NoError(t, s.SaveTokens(ctx, "T3", "R2"))
	c, err = s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T3", c.AccessToken)
	assert.Equal(t, "R2", c.RefreshToken)
	assert.Equal(t, "u1", c.User.ID)
}

func TestStore_ClearSessionKeepsPreferences(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "T1", "R1", &models.User{ID: "u1"}))
	require.NoError(t, s.Set(ctx, KeyPreferences, models.DefaultSettings()))
	require.NoError(t, s.Set(ctx, KeyOnboardingComplete, true))

	require.NoError(t, s.ClearSession(ctx))

	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, c)

	var prefs models.Settings
	found, err := s.Get(ctx, KeyPreferences, &prefs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.DefaultSettings(), prefs)
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "T1", "R1", &models.User{ID: "u1"}))
	require.NoError(t, s.Set(ctx, KeyOnboardingComplete, true))
	require.NoError(t, s.Clear(ctx))

	var done bool
	found, err := s.Get(ctx, KeyOnboardingComplete, &done)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.SaveTokens(ctx, "T", "R"))
			_, err := s.Credentials(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := s.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T", c.AccessToken)
}
