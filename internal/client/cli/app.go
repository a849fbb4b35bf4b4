package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/starterkit/internal/client/api"
	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/config"
	"github.com/dmitrijs2005/starterkit/internal/client/models"
	"github.com/dmitrijs2005/starterkit/internal/client/services"
	"github.com/dmitrijs2005/starterkit/internal/client/store"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

// postsClient, usersClient and searchClient are the endpoint groups the
// commands call directly. *api.PostsAPI, *api.UsersAPI and *api.SearchAPI
// implement them.
type postsClient interface {
	List(ctx context.Context, page models.PageParams) (*models.Page[models.Post], error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, req models.CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, id string, req models.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

type usersClient interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Posts(ctx context.Context, userID string, page models.PageParams) (*models.Page[models.Post], error)
	DeleteAccount(ctx context.Context) error
}

type searchClient interface {
	Search(ctx context.Context, q string, page models.PageParams) (*models.Page[models.Post], error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	auth     services.AuthService
	settings services.SettingsService
	posts    postsClient
	users    usersClient
	search   searchClient
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the session database and wires the API client and services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	st := store.New(db, logger)

	apiClient, err := api.NewClient(c.BaseURL, st, api.WithTimeout(c.RequestTimeout), api.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	endpoints := api.New(apiClient)

	return &App{
		config:   c,
		logger:   logger,
		auth:     services.NewAuthService(endpoints, st, logger),
		settings: services.NewSettingsService(st),
		posts:    endpoints.Posts,
		users:    endpoints.Users,
		search:   endpoints.Search,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.auth.Close(ctx); err != nil {
			a.logger.Error(ctx, "failed to close session store", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) currentUser() *models.User {
	u, err := a.auth.CurrentUser(context.Background())
	if err != nil {
		a.logger.Warn(context.Background(), "failed to read stored user", "error", err)
		return nil
	}
	return u
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
