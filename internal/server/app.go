// Package server wires the dev API server together: it picks the storage
// backends named by the configuration, runs migrations, serves HTTP and
// shuts everything down on a signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/avatars"
	"github.com/dmitrijs2005/starterkit/internal/server/config"
	"github.com/dmitrijs2005/starterkit/internal/server/httpapi"
	"github.com/dmitrijs2005/starterkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/starterkit/internal/server/resettokens"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	server      *httpapi.Server
	userService *services.UserService
	postService *services.PostService
	closers     []func() error

	purgeInterval time.Duration
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger, purgeInterval: tokenPurgeInterval}

	repos, err := app.initRepositories(ctx)
	if err != nil {
		return nil, err
	}

	resets, err := app.initResetTokens(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	store, files, err := app.initAvatars(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	app.userService = services.NewUserService(repos, resets, store, logger, c)
	app.postService = services.NewPostService(repos, logger)
	app.server = httpapi.NewServer(c.EndpointAddr, logger, app.userService, app.postService, files)

	return app, nil
}

func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	if !app.config.UsePostgres() {
		app.logger.Warn(ctx, "no database DSN configured, keeping users and posts in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	um := repomanager.NewPostgresRepositoryManager(db)
	app.closers = append(app.closers, um.Close)

	if err := um.RunMigrations(ctx); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app.logger.Info(ctx, "using postgres storage")
	return um, nil
}

func (app *App) initResetTokens(ctx context.Context) (resettokens.Store, error) {
	if !app.config.UseRedis() {
		return resettokens.NewMemoryStore(), nil
	}

	client, err := resettokens.Connect(ctx, app.config.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client.Close)

	app.logger.Info(ctx, "using redis for reset tokens", "address", app.config.RedisAddr)
	return resettokens.NewRedisStore(client), nil
}

// initAvatars returns the avatar storage and, when it is kept in memory, the
// same storage for the HTTP server to serve from.
func (app *App) initAvatars(ctx context.Context) (avatars.Storage, *avatars.MemoryStorage, error) {
	if !app.config.UseS3() {
		files := avatars.NewMemoryStorage()
		return files, files, nil
	}

	s3, err := avatars.NewS3Storage(ctx, avatars.S3Config{
		Region:       app.config.S3Region,
		AccessKey:    app.config.S3RootUser,
		SecretKey:    app.config.S3RootPassword,
		BaseEndpoint: app.config.S3BaseEndpoint,
		Bucket:       app.config.S3Bucket,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("s3 init error: %w", err)
	}

	app.logger.Info(ctx, "using s3 for avatars", "bucket", app.config.S3Bucket)
	return s3, nil, nil
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(ctx, "error closing resource", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startTokenJanitor drops expired refresh tokens every purgeInterval until
// ctx is done.
func (app *App) startTokenJanitor(ctx context.Context) {
	ticker := time.NewTicker(app.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "token purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage backends.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startTokenJanitor(ctx)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}
