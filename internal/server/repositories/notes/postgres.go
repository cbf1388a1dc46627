// Package notes provides a PostgreSQL-backed repository for note rows.
// Every query is scoped to the owning user; rows outside that scope
// behave as if they do not exist.
package notes

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

// PostgresRepository implements note storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the user's notes newest-first. A non-empty search term
// restricts the result to notes whose title or content contains the term,
// case-insensitively.
func (r *PostgresRepository) List(ctx context.Context, userID string, search string, limit, offset int) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		  AND ($2 = '' OR title ILIKE $3 ESCAPE '\' OR content ILIKE $3 ESCAPE '\')
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.QueryContext(ctx, query, userID, search, dbx.LikePattern(search), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content,
			&note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Count returns the number of notes List would match before pagination.
func (r *PostgresRepository) Count(ctx context.Context, userID string, search string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notes
		WHERE user_id = $1
		  AND ($2 = '' OR title ILIKE $3 ESCAPE '\' OR content ILIKE $3 ESCAPE '\')
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, search, dbx.LikePattern(search)).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string, noteID string) (*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`
	note := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, noteID, userID).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || invalidID(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.UserID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields. Ownership sits in the WHERE clause
// so the check and the mutation are a single atomic statement; a miss
// (absent or foreign row) is NotFound.
func (r *PostgresRepository) Update(ctx context.Context, userID string, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, note.ID, userID, note.Title, note.Content, note.UpdatedAt)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, noteID string) error {
	query := `
		DELETE FROM notes WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, noteID, userID)
	if err != nil {
		if invalidID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRowAffected(res)
}

// DeleteAllForUser removes every note the user owns. Used by the account
// deletion cascade inside a transaction.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM notes WHERE user_id = $1
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
