// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/migrations"
	"github.com/charstorm/toposphere/internal/server/repositories/notes"
	"github.com/charstorm/toposphere/internal/server/repositories/refreshtokens"
	"github.com/charstorm/toposphere/internal/server/repositories/todoitems"
	"github.com/charstorm/toposphere/internal/server/repositories/todolists"
	"github.com/charstorm/toposphere/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Notes returns a notes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}

// TodoLists returns a todolists.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TodoLists(db dbx.DBTX) todolists.Repository {
	return todolists.NewPostgresRepository(db)
}

// TodoItems returns a todoitems.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) TodoItems(db dbx.DBTX) todoitems.Repository {
	return todoitems.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
