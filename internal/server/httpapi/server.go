// Package httpapi exposes the dev server's services over HTTP with the JSON
// envelope the client expects.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/logging"
	"github.com/dmitrijs2005/starterkit/internal/server/avatars"
	"github.com/dmitrijs2005/starterkit/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	// authRequestsPerMinute limits /auth/* calls per client IP.
	authRequestsPerMinute = 60

	maxAvatarSize = 5 << 20
	maxBodySize   = 1 << 20
)

type Server struct {
	address string
	users   *services.UserService
	posts   *services.PostService
	files   *avatars.MemoryStorage
	logger  logging.Logger
}

// NewServer builds a server listening on address. files is the in-memory
// avatar storage to serve under avatars.PathPrefix; nil when avatars live in
// object storage.
func NewServer(address string, l logging.Logger, us *services.UserService, ps *services.PostService,
	files *avatars.MemoryStorage) *Server {
	return &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   us,
		posts:   ps,
		files:   files,
	}
}

// Handler returns the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		secureHeaders(s.logger),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", "NOT_FOUND", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED", nil)
	})

	r.Get("/health", s.health)

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.Limit(authRequestsPerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusTooManyRequests, "Too many requests", "RATE_LIMITED", nil)
			}),
		))

		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.logout)
			r.Get("/me", s.me)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Patch("/me", s.updateProfile)
			r.Delete("/me", s.deleteAccount)
			r.Post("/me/avatar", s.uploadAvatar)
		})
		r.Get("/{id}", s.getUser)
		r.Get("/{id}/posts", s.userPosts)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.listPosts)
		r.Get("/{id}", s.getPost)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.createPost)
			r.Patch("/{id}", s.updatePost)
			r.Delete("/{id}", s.deletePost)
		})
	})

	r.Get("/search", s.search)

	if s.files != nil {
		r.Get(avatars.PathPrefix+"*", s.serveAvatar)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
