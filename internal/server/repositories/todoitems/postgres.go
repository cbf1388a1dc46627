// Package todoitems provides a PostgreSQL-backed repository for todo item
// rows. Items are owned transitively: item operations addressed by item ID
// join todo_lists and filter on the list's owner, so an item under a
// foreign list behaves as if it does not exist.
package todoitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charstorm/toposphere/internal/common"
	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgInvalidTextRepresentation = "22P02"

// invalidID reports whether err is Postgres rejecting a malformed id
// literal. A caller-supplied id that cannot be a uuid matches no row.
func invalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// PostgresRepository implements todo item storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListForList returns the items of a list newest-first. The caller must
// have already resolved the list under the requester's ownership scope.
func (r *PostgresRepository) ListForList(ctx context.Context, listID string) ([]models.TodoItem, error) {
	query := `
		SELECT id, list_id, title, description, is_completed, completed_at, created_at, updated_at
		FROM todo_items
		WHERE list_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryItems(ctx, query, listID)
}

// ListForUser returns every item of every list the user owns,
// newest-first. Used to attach items when listing todo lists.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]models.TodoItem, error) {
	query := `
		SELECT i.id, i.list_id, i.title, i.description, i.is_completed, i.completed_at, i.created_at, i.updated_at
		FROM todo_items i
		JOIN todo_lists l ON l.id = i.list_id
		WHERE l.user_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`
	return r.queryItems(ctx, query, userID)
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, itemID string) (*models.TodoItem, error) {
	query := `
		SELECT i.id, i.list_id, i.title, i.description, i.is_completed, i.completed_at, i.created_at, i.updated_at
		FROM todo_items i
		JOIN todo_lists l ON l.id = i.list_id
		WHERE i.id = $1 AND l.user_id = $2
	`
	item := &models.TodoItem{}
	err := r.db.QueryRowContext(ctx, query, itemID, userID).Scan(
		&item.ID, &item.ListID, &item.Title, &item.Description,
		&item.IsCompleted, &item.CompletedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || invalidID(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Create inserts an item. The parent list must already be resolved under
// the requester's scope; ListID is trusted here.
func (r *PostgresRepository) Create(ctx context.Context, item *models.TodoItem) error {
	query := `
		INSERT INTO todo_items (id, list_id, title, description, is_completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.ListID, item.Title, item.Description,
		item.IsCompleted, item.CompletedAt, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields. The transitive ownership check and
// the mutation are one atomic statement; a miss is NotFound even when the
// item ID exists under another user's list.
func (r *PostgresRepository) Update(ctx context.Context, userID string, item *models.TodoItem) error {
	query := `
		UPDATE todo_items AS i
		SET title = $3, description = $4, is_completed = $5, completed_at = $6, updated_at = $7
		FROM todo_lists AS l
		WHERE i.id = $1 AND i.list_id = l.id AND l.user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, item.ID, userID,
		item.Title, item.Description, item.IsCompleted, item.CompletedAt, item.UpdatedAt)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, itemID string) error {
	query := `
		DELETE FROM todo_items AS i
		USING todo_lists AS l
		WHERE i.id = $1 AND i.list_id = l.id AND l.user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteAllForList removes every item of a list. Called inside the list
// deletion transaction.
func (r *PostgresRepository) DeleteAllForList(ctx context.Context, listID string) error {
	query := `
		DELETE FROM todo_items WHERE list_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, listID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every item under every list the user owns.
// Called inside the account deletion transaction, before the lists go.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM todo_items
		WHERE list_id IN (SELECT id FROM todo_lists WHERE user_id = $1)
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryItems(ctx context.Context, query string, arg any) ([]models.TodoItem, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.TodoItem
	for rows.Next() {
		var item models.TodoItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.Title, &item.Description,
			&item.IsCompleted, &item.CompletedAt, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
