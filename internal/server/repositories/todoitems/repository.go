package todoitems

import (
	"context"

	"github.com/charstorm/toposphere/internal/server/models"
)

type Repository interface {
	ListForList(ctx context.Context, listID string) ([]models.TodoItem, error)
	ListForUser(ctx context.Context, userID string) ([]models.TodoItem, error)
	Get(ctx context.Context, userID string, itemID string) (*models.TodoItem, error)
	Create(ctx context.Context, item *models.TodoItem) error
	Update(ctx context.Context, userID string, item *models.TodoItem) error
	Delete(ctx context.Context, userID string, itemID string) error
	DeleteAllForList(ctx context.Context, listID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
