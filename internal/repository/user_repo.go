package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"buildhub/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns one user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `
        SELECT id, name, email, role, disabled, COALESCE(device_token, ''), created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.Disabled,
		&u.DeviceToken,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByRole returns all users holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	query := `
        SELECT id, name, email, role, disabled, COALESCE(device_token, ''), created_at
        FROM users
        WHERE role = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.Disabled,
			&u.DeviceToken,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// DeviceTokens returns the registered device token per user, omitting users
// without one.
func (r *UserRepository) DeviceTokens(ctx context.Context, userIDs []string) (map[string]string, error) {
	query := `
        SELECT id, device_token
        FROM users
        WHERE id = ANY($1) AND device_token IS NOT NULL AND device_token != ''
    `
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := map[string]string{}
	for rows.Next() {
		var id, token string
		if err := rows.Scan(&id, &token); err != nil {
			return nil, err
		}
		tokens[id] = token
	}

	return tokens, rows.Err()
}
