package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	query := `
        INSERT INTO projects (id, name, client_name, client_token, created_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5)
    `
	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.ClientName, p.ClientToken, p.CreatedAt)
	return err
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
        SELECT id, name, COALESCE(client_name, ''), client_token, created_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.ClientName, &p.ClientToken, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns the projects the user is a member of.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]model.Project, error) {
	query := `
        SELECT p.id, p.name, COALESCE(p.client_name, ''), p.client_token, p.created_at
        FROM projects p
        JOIN project_members m ON m.project_id = p.id
        WHERE m.user_id = $1
        ORDER BY p.created_at
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.ClientToken, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListByClient returns projects matching a client capability pair.
func (r *ProjectRepository) ListByClient(ctx context.Context, clientName, clientToken string) ([]model.Project, error) {
	query := `
        SELECT id, name, COALESCE(client_name, ''), client_token, created_at
        FROM projects
        WHERE client_name = $1 AND client_token = $2
    `
	rows, err := r.db.Query(ctx, query, clientName, clientToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.ClientToken, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
