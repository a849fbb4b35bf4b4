package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndSecureHeaders(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeData[map[string]string](t, res))

	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_FOUND", res.Code)
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	reg := env.registerUser(t, "ann@example.com", "Ann")
	require.NotNil(t, reg.User)
	assert.Equal(t, "ann@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.User.CreatedAt)
	assert.NotEmpty(t, reg.Token)
	assert.NotEmpty(t, reg.RefreshToken)

	res := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ANN@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, res.Status)
	login := decodeData[authResponse](t, res)
	assert.Equal(t, reg.User.ID, login.User.ID)

	res = env.do(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Ann", decodeData[userResponse](t, res).Name)

	res = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "UNAUTHORIZED", res.Code)
}

func TestRegister_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ann@example.com", "Ann")

	res := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "ann@example.com", "password": "password1", "name": "Again",
	})
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, "ALREADY_EXISTS", res.Code)

	res = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short", "name": strings.Repeat("x", 31),
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "VALIDATION_ERROR", res.Code)
	assert.Contains(t, res.Errors, "email")
	assert.Contains(t, res.Errors, "password")
	assert.Contains(t, res.Errors, "name")

	req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/auth/register", strings.NewReader("{"))
	require.NoError(t, err)
	res = env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "BAD_REQUEST", res.Code)
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	reg := env.registerUser(t, "ann@example.com", "Ann")

	expired, err := auth.GenerateToken(reg.User.ID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name, token, code string
	}{
		{"missing", "", "UNAUTHORIZED"},
		{"garbage", "garbage", "INVALID_TOKEN"},
		{"expired", expired, "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(t, http.MethodGet, "/auth/me", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, res.Status)
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	reg := env.registerUser(t, "ann@example.com", "Ann")

	res := env.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": reg.RefreshToken})
	require.Equal(t, http.StatusOK, res.Status)
	pair := decodeData[refreshResponse](t, res)
	assert.NotEqual(t, reg.RefreshToken, pair.RefreshToken)

	res = env.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "INVALID_TOKEN", res.Code)

	res = env.do(t, http.MethodPost, "/auth/logout", pair.Token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Logged out", res.Message)

	res = env.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	reg := env.registerUser(t, "ann@example.com", "Ann")

	res := env.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.NotEmpty(t, res.Message)

	res = env.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "ann@example.com"})
	require.Equal(t, http.StatusOK, res.Status)
	token := env.resets.tokenFor(reg.User.ID)
	require.NotEmpty(t, token)

	res = env.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"token": token, "password": "brand-new-pw"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Password has been reset", res.Message)

	res = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "brand-new-pw"})
	assert.Equal(t, http.StatusOK, res.Status)

	res = env.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"token": token, "password": "another-pw"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "INVALID_TOKEN", res.Code)
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t)

	var last *apiResult
	for i := 0; i <= authRequestsPerMinute; i++ {
		last = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.com", "password": "x"})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Status)
	assert.Equal(t, "RATE_LIMITED", last.Code)

	res := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Status, "only /auth is limited")
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	reg := env.registerUser(t, "ann@example.com", "Ann")

	res := env.do(t, http.MethodPatch, "/users/me", reg.Token, map[string]string{"name": "Annie", "bio": "hi"})
	require.Equal(t, http.StatusOK, res.Status)
	u := decodeData[userResponse](t, res)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, "hi", u.Bio)

	res = env.do(t, http.MethodPatch, "/users/me", reg.Token, map[string]string{"bio": strings.Repeat("b", 501)})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "bio")

	res = env.do(t, http.MethodGet, "/users/"+reg.User.ID, "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Annie", decodeData[userResponse](t, res).Name)

	res = env.do(t, http.MethodGet, "/users/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = env.do(t, http.MethodPatch, "/users/me", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func avatarRequest(t *testing.T, url, token, field, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="a.png"`, field))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	reg := env.registerUser(t, "ann@example.com", "Ann")
	png := []byte("\x89PNG\r\n\x1a\n-fake-image")

	res := env.send(t, avatarRequest(t, env.ts.URL+"/users/me/avatar", reg.Token, "avatar", "image/png", png))
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	avatarURL := decodeData[avatarResponse](t, res).AvatarURL
	require.True(t, strings.HasPrefix(avatarURL, env.ts.URL+"/avatars/"), avatarURL)

	resp, err := env.ts.Client().Get(avatarURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, png, body)

	res = env.do(t, http.MethodGet, "/auth/me", reg.Token, nil)
	assert.Equal(t, avatarURL, decodeData[userResponse](t, res).Avatar)

	t.Run("sniffed content type", func(t *testing.T) {
		res := env.send(t, avatarRequest(t, env.ts.URL+"/users/me/avatar", reg.Token, "avatar", "application/octet-stream", png))
		assert.Equal(t, http.StatusOK, res.Status)
	})
	t.Run("not an image", func(t *testing.T) {
		res := env.send(t, avatarRequest(t, env.ts.URL+"/users/me/avatar", reg.Token, "avatar", "text/plain", []byte("hello")))
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Contains(t, res.Errors, "avatar")
	})
	t.Run("wrong field", func(t *testing.T) {
		res := env.send(t, avatarRequest(t, env.ts.URL+"/users/me/avatar", reg.Token, "file", "image/png", png))
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Contains(t, res.Errors, "avatar")
	})
	t.Run("unknown avatar", func(t *testing.T) {
		res := env.do(t, http.MethodGet, "/avatars/nope.png", "", nil)
		assert.Equal(t, http.StatusNotFound, res.Status)
	})
}

func TestPostsCRUD(t *testing.T) {
	env := newTestEnv(t)
	ann := env.registerUser(t, "ann@example.com", "Ann")
	bob := env.registerUser(t, "bob@example.com", "Bob")

	res := env.do(t, http.MethodPost, "/posts", ann.Token, map[string]string{"title": "Hello", "content": "World"})
	require.Equal(t, http.StatusCreated, res.Status)
	post := decodeData[postResponse](t, res)
	assert.Equal(t, ann.User.ID, post.AuthorID)

	res = env.do(t, http.MethodPost, "/posts", ann.Token, map[string]string{"title": "", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "title")

	res = env.do(t, http.MethodGet, "/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Hello", decodeData[postResponse](t, res).Title)

	res = env.do(t, http.MethodPatch, "/posts/"+post.ID, bob.Token, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = env.do(t, http.MethodPatch, "/posts/"+post.ID, ann.Token, map[string]string{"title": "Hello again"})
	require.Equal(t, http.StatusOK, res.Status)
	updated := decodeData[postResponse](t, res)
	assert.Equal(t, "Hello again", updated.Title)
	assert.Equal(t, "World", updated.Content)

	res = env.do(t, http.MethodDelete, "/posts/"+post.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = env.do(t, http.MethodDelete, "/posts/"+post.ID, ann.Token, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = env.do(t, http.MethodGet, "/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestPostListings(t *testing.T) {
	env := newTestEnv(t)
	ann := env.registerUser(t, "ann@example.com", "Ann")
	bob := env.registerUser(t, "bob@example.com", "Bob")

	for i := 0; i < 5; i++ {
		res := env.do(t, http.MethodPost, "/posts", ann.Token, map[string]string{
			"title": fmt.Sprintf("Gopher %d", i), "content": "body",
		})
		require.Equal(t, http.StatusCreated, res.Status)
	}
	res := env.do(t, http.MethodPost, "/posts", bob.Token, map[string]string{"title": "Recipes", "content": "soup"})
	require.Equal(t, http.StatusCreated, res.Status)

	res = env.do(t, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	page := decodeData[pageResponse](t, res)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, pagination{Page: 1, PageSize: 4, Total: 6, TotalPages: 2}, page.Pagination)

	res = env.do(t, http.MethodGet, "/posts?page=2&pageSize=4", "", nil)
	page = decodeData[pageResponse](t, res)
	assert.Len(t, page.Items, 2)

	res = env.do(t, http.MethodGet, "/users/"+bob.User.ID+"/posts", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	page = decodeData[pageResponse](t, res)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Recipes", page.Items[0].Title)

	res = env.do(t, http.MethodGet, "/users/missing/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = env.do(t, http.MethodGet, "/search?q=gopher&pageSize=10", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	page = decodeData[pageResponse](t, res)
	assert.Equal(t, 5, page.Pagination.Total)

	res = env.do(t, http.MethodGet, "/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Errors, "q")
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ann := env.registerUser(t, "ann@example.com", "Ann")

	res := env.do(t, http.MethodPost, "/posts", ann.Token, map[string]string{"title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, res.Status)

	res = env.do(t, http.MethodDelete, "/users/me", ann.Token, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = env.do(t, http.MethodGet, "/auth/me", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = env.do(t, http.MethodGet, "/posts", "", nil)
	assert.Empty(t, decodeData[pageResponse](t, res).Items)

	res = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}
