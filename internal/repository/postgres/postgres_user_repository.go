package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harxxhilgg/univent/internal/models"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
	"github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: user is nil", pkgerrors.ErrInvalidInput)
	}
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: username, email and password are required", pkgerrors.ErrInvalidInput)
	}

	query := `
	INSERT INTO users (username, email, password)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pkgerrors.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrInvalidInput)
	}

	query := `SELECT id, username, email, password, created_at FROM users WHERE email = $1`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *PostgresUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", pkgerrors.ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return pkgerrors.ErrUserNotFound
	}
	return nil
}
