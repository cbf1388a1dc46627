package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/charstorm/toposphere/internal/logging"
	"github.com/charstorm/toposphere/internal/server/config"
	"github.com/charstorm/toposphere/internal/server/services"
)

// RESTServer serves the HTTP API.
type RESTServer struct {
	addr      string
	jwtSecret []byte
	logger    logging.Logger
	limiter   *ipLimiter

	users *services.UserService
	notes *services.NoteService
	todos *services.TodoService
}

func NewRESTServer(cfg *config.Config, logger logging.Logger,
	users *services.UserService, notes *services.NoteService, todos *services.TodoService) *RESTServer {
	return &RESTServer{
		addr:      cfg.EndpointAddrHTTP,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger,
		limiter:   newIPLimiter(float64(cfg.AuthRateLimitRPS), cfg.AuthRateLimitBurst),
		users:     users,
		notes:     notes,
		todos:     todos,
	}
}

// Router builds the chi router with the full API surface mounted under /api.
func (s *RESTServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitMiddleware).Post("/register", s.handleRegister)
			r.With(s.rateLimitMiddleware).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Get("/profile", s.handleProfile)
				r.Put("/profile", s.handleUpdateProfile)
				r.Patch("/profile", s.handlePatchProfile)
				r.Post("/change-password", s.handleChangePassword)
				r.Post("/delete-account", s.handleDeleteAccount)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.handleListNotes)
				r.Post("/", s.handleCreateNote)
				r.Get("/{noteID}", s.handleGetNote)
				r.Put("/{noteID}", s.handleUpdateNote)
				r.Patch("/{noteID}", s.handlePatchNote)
				r.Delete("/{noteID}", s.handleDeleteNote)
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", s.handleListTodoLists)
				r.Post("/", s.handleCreateTodoList)

				// static segment, so "items" never collides with a list id
				r.Route("/items", func(r chi.Router) {
					r.Get("/{itemID}", s.handleGetTodoItem)
					r.Put("/{itemID}", s.handleUpdateTodoItem)
					r.Patch("/{itemID}", s.handlePatchTodoItem)
					r.Delete("/{itemID}", s.handleDeleteTodoItem)
				})

				r.Route("/{listID}", func(r chi.Router) {
					r.Get("/", s.handleGetTodoList)
					r.Put("/", s.handleUpdateTodoList)
					r.Patch("/", s.handlePatchTodoList)
					r.Delete("/", s.handleDeleteTodoList)
					r.Get("/items", s.handleListTodoItems)
					r.Post("/items", s.handleCreateTodoItem)
				})
			})
		})
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *RESTServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info(ctx, "shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
