package repository

import (
	"context"

	"github.com/harxxhilgg/univent/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteByEmail(ctx context.Context, email string) error
}
