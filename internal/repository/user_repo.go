package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// UserRepository handles user account lookups for authentication. Account
// management (creation, role changes) belongs to the admin surface and is not
// exposed through the workflow API.
type UserRepository struct {
	db database.Querier
}

// NewUserRepository creates a new repository over db.
func NewUserRepository(db database.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail retrieves a user by email address for login validation.
// Returns pgx.ErrNoRows when no account exists for the address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}
