package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type StatusWebhookRepository struct {
	db *pgxpool.Pool
}

func NewStatusWebhookRepository(db *pgxpool.Pool) *StatusWebhookRepository {
	return &StatusWebhookRepository{db: db}
}

// Upsert registers a URL for a (project, status) pair, replacing any
// previous registration for the same pair.
func (r *StatusWebhookRepository) Upsert(ctx context.Context, w *model.StatusWebhook) (*model.StatusWebhook, error) {
	query := `
        INSERT INTO status_webhooks (id, project_id, status, url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (project_id, status) DO UPDATE SET url = EXCLUDED.url
        RETURNING id, project_id, status, url
    `
	var out model.StatusWebhook
	err := r.db.QueryRow(ctx, query, w.ID, w.ProjectID, w.Status, w.URL).Scan(
		&out.ID, &out.ProjectID, &out.Status, &out.URL,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StatusWebhookRepository) FindByProjectAndStatus(ctx context.Context, projectID, status string) (*model.StatusWebhook, error) {
	query := `
        SELECT id, project_id, status, url
        FROM status_webhooks
        WHERE project_id = $1 AND status = $2
    `
	var w model.StatusWebhook
	err := r.db.QueryRow(ctx, query, projectID, status).Scan(
		&w.ID, &w.ProjectID, &w.Status, &w.URL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *StatusWebhookRepository) ListByProject(ctx context.Context, projectID string) ([]model.StatusWebhook, error) {
	query := `
        SELECT id, project_id, status, url
        FROM status_webhooks
        WHERE project_id = $1
        ORDER BY status
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	webhooks := []model.StatusWebhook{}
	for rows.Next() {
		var w model.StatusWebhook
		if err := rows.Scan(&w.ID, &w.ProjectID, &w.Status, &w.URL); err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}
