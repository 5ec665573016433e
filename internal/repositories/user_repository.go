package repositories

import (
	"context"
	"errors"

	"atlasbank/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)

// UserRepository is keyed storage for users and their credentials.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetTokenVersion(ctx context.Context, id uint) (int, error)
	IncrementTokenVersion(ctx context.Context, id uint) error
}
