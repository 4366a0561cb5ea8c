package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Insert creates a new user row.
func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, auth_id, name, email, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query, u.ID, u.AuthID, u.Name, u.Email, u.Role, u.CreatedAt)
	return err
}

// FindByAuthID returns the user linked to an external auth subject.
func (r *UserRepository) FindByAuthID(ctx context.Context, authID string) (*model.User, error) {
	query := `
        SELECT id, COALESCE(auth_id, ''), name, email, role, created_at
        FROM users
        WHERE auth_id = $1
    `
	return r.scanOne(ctx, query, authID)
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, COALESCE(auth_id, ''), name, email, role, created_at
        FROM users
        WHERE email = $1
    `
	return r.scanOne(ctx, query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `
        SELECT id, COALESCE(auth_id, ''), name, email, role, created_at
        FROM users
        WHERE id = $1
    `
	return r.scanOne(ctx, query, id)
}

// Relink points an existing user at a new external auth subject. Covers
// the path where a user re-registers under a different identity provider.
func (r *UserRepository) Relink(ctx context.Context, id, authID, name string) (*model.User, error) {
	query := `
        UPDATE users
        SET auth_id = $2, name = $3, role = 'user'
        WHERE id = $1
        RETURNING id, COALESCE(auth_id, ''), name, email, role, created_at
    `
	return r.scanOne(ctx, query, id, authID, name)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.AuthID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
