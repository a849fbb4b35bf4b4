package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

type fakeAuth struct {
	user *models.User

	signInErr, signUpErr, signOutErr error
	lastEmail, lastPassword, lastName string
	signOutCalls                      int

	refreshRet *models.User
	refreshErr error

	updateRet *models.User
	updateErr error
	lastReq   models.UpdateProfileRequest

	avatarRet  *models.User
	avatarErr  error
	lastAvatar string
	lastCT     string
	lastData   []byte

	forgotMsg  string
	resetMsg   string
	lastToken  string
	closeCalls int
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*models.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.user = &models.User{ID: "1", Name: "Ann", Email: email}
	return f.user, nil
}

func (f *fakeAuth) SignUp(_ context.Context, name, email, password string) (*models.User, error) {
	f.lastName, f.lastEmail, f.lastPassword = name, email, password
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.user = &models.User{ID: "1", Name: name, Email: email}
	return f.user, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOutCalls++
	f.user = nil
	return f.signOutErr
}

func (f *fakeAuth) CheckAuth(context.Context) (*models.User, error) { return f.user, nil }

func (f *fakeAuth) RefreshAuth(context.Context) (*models.User, error) {
	return f.refreshRet, f.refreshErr
}

func (f *fakeAuth) UpdateUser(_ context.Context, u *models.User) error {
	f.user = u
	return nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	f.lastReq = req
	return f.updateRet, f.updateErr
}

func (f *fakeAuth) UploadAvatar(_ context.Context, name, ct string, data []byte) (*models.User, error) {
	f.lastAvatar, f.lastCT, f.lastData = name, ct, data
	return f.avatarRet, f.avatarErr
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.User, error) { return f.user, nil }

func (f *fakeAuth) IsAuthenticated(context.Context) (bool, error) { return f.user != nil, nil }

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) (string, error) {
	f.lastEmail = email
	return f.forgotMsg, nil
}

func (f *fakeAuth) ResetPassword(_ context.Context, token, pw string) (string, error) {
	f.lastToken, f.lastPassword = token, pw
	return f.resetMsg, nil
}

func (f *fakeAuth) Close(context.Context) error {
	f.closeCalls++
	return nil
}

type fakeSettings struct {
	current    models.Settings
	onboarded  bool
	lastPatch  models.SettingsPatch
	updateErr  error
	onboardSet bool
}

func (f *fakeSettings) Load(context.Context) (models.Settings, error) { return f.current, nil }

func (f *fakeSettings) Update(_ context.Context, p models.SettingsPatch) (models.Settings, error) {
	f.lastPatch = p
	if f.updateErr != nil {
		return f.current, f.updateErr
	}
	f.current = f.current.Apply(p)
	return f.current, nil
}

func (f *fakeSettings) SetTheme(ctx context.Context, theme models.ThemeMode) (models.Settings, error) {
	return f.Update(ctx, models.SettingsPatch{Theme: &theme})
}

func (f *fakeSettings) OnboardingComplete(context.Context) (bool, error) { return f.onboarded, nil }

func (f *fakeSettings) CompleteOnboarding(context.Context) error {
	f.onboarded, f.onboardSet = true, true
	return nil
}

type fakePosts struct {
	page       *models.Page[models.Post]
	post       *models.Post
	err        error
	lastParams models.PageParams
	lastID     string
	lastCreate models.CreatePostRequest
	lastUpdate models.UpdatePostRequest
	deleted    []string
}

func (f *fakePosts) List(_ context.Context, p models.PageParams) (*models.Page[models.Post], error) {
	f.lastParams = p
	return f.page, f.err
}

func (f *fakePosts) Get(_ context.Context, id string) (*models.Post, error) {
	f.lastID = id
	return f.post, f.err
}

func (f *fakePosts) Create(_ context.Context, req models.CreatePostRequest) (*models.Post, error) {
	f.lastCreate = req
	return f.post, f.err
}

func (f *fakePosts) Update(_ context.Context, id string, req models.UpdatePostRequest) (*models.Post, error) {
	f.lastID, f.lastUpdate = id, req
	return f.post, f.err
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeUsers struct {
	user        *models.User
	page        *models.Page[models.Post]
	lastID      string
	deleteCalls int
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	f.lastID = id
	return f.user, nil
}

func (f *fakeUsers) Posts(_ context.Context, id string, _ models.PageParams) (*models.Page[models.Post], error) {
	return f.page, nil
}

func (f *fakeUsers) DeleteAccount(context.Context) error {
	f.deleteCalls++
	return nil
}

type fakeSearch struct {
	page  *models.Page[models.Post]
	lastQ string
}

func (f *fakeSearch) Search(_ context.Context, q string, _ models.PageParams) (*models.Page[models.Post], error) {
	f.lastQ = q
	return f.page, nil
}

type testApp struct {
	*App
	auth     *fakeAuth
	settings *fakeSettings
	posts    *fakePosts
	users    *fakeUsers
	search   *fakeSearch
	out      *bytes.Buffer
}

// newTestApp builds an App over fakes; input feeds the interactive prompts.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	ta := &testApp{
		auth:     &fakeAuth{},
		settings: &fakeSettings{current: models.DefaultSettings()},
		posts:    &fakePosts{},
		users:    &fakeUsers{},
		search:   &fakeSearch{},
		out:      &bytes.Buffer{},
	}
	ta.App = &App{
		logger:   logging.NewDiscardLogger(),
		auth:     ta.auth,
		settings: ta.settings,
		posts:    ta.posts,
		users:    ta.users,
		search:   ta.search,
		reader:   bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n")),
		out:      ta.out,
	}
	return ta
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := promptSecret
	promptSecret = func(io.Writer, string) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { promptSecret = orig })
}
