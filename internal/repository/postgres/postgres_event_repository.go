package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harxxhilgg/univent/internal/models"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", pkgerrors.ErrInvalidInput)
	}
	if event.Title == "" || event.Organizer == "" || event.EventDate == "" ||
		event.EventTime == "" || event.Location == "" {
		return fmt.Errorf("%w: missing required event fields", pkgerrors.ErrInvalidInput)
	}

	query := `
	INSERT INTO events (title, organizer, event_date, event_time, location, image_url, is_paid, created_by_email)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		event.Title,
		event.Organizer,
		event.EventDate,
		event.EventTime,
		event.Location,
		event.ImageURL,
		event.IsPaid,
		event.CreatedByEmail,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE title = $1`, title).Scan(&exists)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return true, nil
}

func (r *PostgresEventRepository) GetAll(ctx context.Context) ([]models.Event, error) {
	query := `
	SELECT id, title, organizer, event_date, event_time, location, image_url, is_paid, created_by_email, created_at
	FROM events
	ORDER BY event_date ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *PostgresEventRepository) GetByCreator(ctx context.Context, email string) ([]models.Event, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrInvalidInput)
	}

	query := `
	SELECT id, title, organizer, event_date, event_time, location, image_url, is_paid, created_by_email, created_at
	FROM events
	WHERE created_by_email = $1
	ORDER BY event_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by creator: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var imageURL sql.NullString
		if err := rows.Scan(
			&ev.ID,
			&ev.Title,
			&ev.Organizer,
			&ev.EventDate,
			&ev.EventTime,
			&ev.Location,
			&imageURL,
			&ev.IsPaid,
			&ev.CreatedByEmail,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.ImageURL = imageURL.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
