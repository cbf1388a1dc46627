package repomanager

import (
	"context"
	"database/sql"

	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/repositories/notes"
	"github.com/charstorm/toposphere/internal/server/repositories/refreshtokens"
	"github.com/charstorm/toposphere/internal/server/repositories/todoitems"
	"github.com/charstorm/toposphere/internal/server/repositories/todolists"
	"github.com/charstorm/toposphere/internal/server/repositories/users"
)

// RepositoryManager vends repository instances bound to an arbitrary DBTX,
// letting services compose repositories inside a shared transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
	TodoLists(db dbx.DBTX) todolists.Repository
	TodoItems(db dbx.DBTX) todoitems.Repository
}
