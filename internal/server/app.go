// Package server initializes and runs the application server: it opens
// the database, applies migrations, wires services, and starts the HTTP
// endpoint with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/charstorm/toposphere/internal/logging"
	"github.com/charstorm/toposphere/internal/server/config"
	"github.com/charstorm/toposphere/internal/server/repositories/repomanager"
	"github.com/charstorm/toposphere/internal/server/rest"
	"github.com/charstorm/toposphere/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	rest   *rest.RESTServer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, m, cfg)
	ns := services.NewNoteService(db, m)
	ts := services.NewTodoService(db, m)

	srv := rest.NewRESTServer(cfg, logger, us, ns, ts)

	return &App{config: cfg, logger: logger, db: db, rest: srv}, nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

// Run serves the API until the context is cancelled or an OS signal
// arrives, then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "starting app")
	app.initSignalHandler(cancel)

	err := app.rest.Run(ctx)

	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Error(ctx, "db close error", "error", closeErr.Error())
	}
	return err
}
