package repository

import (
	"context"

	"github.com/harxxhilgg/univent/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	GetAll(ctx context.Context) ([]models.Event, error)
	GetByCreator(ctx context.Context, email string) ([]models.Event, error)
}
