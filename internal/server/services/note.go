package services

import (
	"context"
	"database/sql"

	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/charstorm/toposphere/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NoteService is the lifecycle controller for notes. Every operation is
// scoped to the requesting user; rows outside that scope are NotFound.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewNoteService constructs a NoteService over the shared repositories.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

// List returns the user's notes newest-first together with the total
// count before pagination. search filters case-insensitively over title
// and content; it never widens the scope beyond the user's own rows.
func (s *NoteService) List(ctx context.Context, userID string, search string, limit, offset int) ([]*models.Note, int, error) {
	repo := s.repomanager.Notes(s.db)
	count, err := repo.Count(ctx, userID, search)
	if err != nil {
		return nil, 0, err
	}
	result, err := repo.List(ctx, userID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return result, count, nil
}

// Create validates the input and stores a new note owned by userID. The
// owner comes from the request context, never from the payload.
func (s *NoteService) Create(ctx context.Context, userID string, in NoteInput) (*models.Note, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	now := timeNow().UTC()
	note := &models.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     *in.Title,
		Content:   stringOrEmpty(in.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repomanager.Notes(s.db).Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get returns one note, or NotFound when it is absent or foreign.
func (s *NoteService) Get(ctx context.Context, userID string, noteID string) (*models.Note, error) {
	return s.repomanager.Notes(s.db).Get(ctx, userID, noteID)
}

// Update applies a full (PUT) or partial (PATCH) update. A full update
// resets omitted content to empty. The repository re-checks ownership in
// the same statement that mutates, so a concurrent revocation cannot
// produce a stale write.
func (s *NoteService) Update(ctx context.Context, userID string, noteID string, in NoteInput, partial bool) (*models.Note, error) {
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	repo := s.repomanager.Notes(s.db)
	note, err := repo.Get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		note.Title = *in.Title
	}
	if partial {
		if in.Content != nil {
			note.Content = *in.Content
		}
	} else {
		note.Content = stringOrEmpty(in.Content)
	}
	note.UpdatedAt = timeNow().UTC()

	if err := repo.Update(ctx, userID, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes one note. A repeated delete is NotFound, not a no-op.
func (s *NoteService) Delete(ctx context.Context, userID string, noteID string) error {
	return s.repomanager.Notes(s.db).Delete(ctx, userID, noteID)
}
