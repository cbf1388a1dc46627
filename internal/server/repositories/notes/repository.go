package notes

import (
	"context"

	"github.com/charstorm/toposphere/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string, search string, limit, offset int) ([]*models.Note, error)
	Count(ctx context.Context, userID string, search string) (int, error)
	Get(ctx context.Context, userID string, noteID string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, userID string, note *models.Note) error
	Delete(ctx context.Context, userID string, noteID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
