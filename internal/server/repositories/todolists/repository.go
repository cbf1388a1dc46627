package todolists

import (
	"context"

	"github.com/charstorm/toposphere/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string, search string, limit, offset int) ([]*models.TodoList, error)
	Count(ctx context.Context, userID string, search string) (int, error)
	Get(ctx context.Context, userID string, listID string) (*models.TodoList, error)
	Create(ctx context.Context, list *models.TodoList) error
	Update(ctx context.Context, userID string, list *models.TodoList) error
	Delete(ctx context.Context, userID string, listID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
