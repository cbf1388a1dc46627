package users

import (
	"context"

	"github.com/charstorm/toposphere/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeUserID string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	Delete(ctx context.Context, userID string) error
}
