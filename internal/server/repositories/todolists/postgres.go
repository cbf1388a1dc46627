// Package todolists provides a PostgreSQL-backed repository for todo list
// rows, scoped to the owning user on every query.
package todolists

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

// PostgresRepository implements todo list storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the user's todo lists newest-first, optionally filtered by
// a case-insensitive substring search over title and description. Items
// are not loaded here; the service attaches them.
func (r *PostgresRepository) List(ctx context.Context, userID string, search string, limit, offset int) ([]*models.TodoList, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM todo_lists
		WHERE user_id = $1
		  AND ($2 = '' OR title ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, query, userID, search, dbx.LikePattern(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TodoList
	for rows.Next() {
		list := &models.TodoList{}
		if err := rows.Scan(&list.ID, &list.UserID, &list.Title, &list.Description,
			&list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Count returns the number of lists List would match before pagination.
func (r *PostgresRepository) Count(ctx context.Context, userID string, search string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM todo_lists
		WHERE user_id = $1
		  AND ($2 = '' OR title ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, search, dbx.LikePattern(search)).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, listID string) (*models.TodoList, error) {
	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM todo_lists
		WHERE id = $1 AND user_id = $2
	`
	list := &models.TodoList{}
	err := r.db.QueryRowContext(ctx, query, listID, userID).Scan(
		&list.ID, &list.UserID, &list.Title, &list.Description, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || invalidID(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) Create(ctx context.Context, list *models.TodoList) error {
	query := `
		INSERT INTO todo_lists (id, user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		list.ID, list.UserID, list.Title, list.Description, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields; ownership lives in the WHERE clause
// so check and mutation are one atomic statement.
func (r *PostgresRepository) Update(ctx context.Context, userID string, list *models.TodoList) error {
	query := `
		UPDATE todo_lists
		SET title = $3, description = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, list.ID, userID, list.Title, list.Description, list.UpdatedAt)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, listID string) error {
	query := `
		DELETE FROM todo_lists WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, listID, userID)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteAllForUser removes every list the user owns. Items must be
// removed first (same transaction) since the FK is not cascading.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM todo_lists WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
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
