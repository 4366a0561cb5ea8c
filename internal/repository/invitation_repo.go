package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type InvitationRepository struct {
	db *pgxpool.Pool
}

func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Insert(ctx context.Context, inv *model.ProjectInvitation) error {
	query := `
        INSERT INTO project_invitations (id, project_id, email, role, token, expires_at, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query,
		inv.ID, inv.ProjectID, inv.Email, inv.Role, inv.Token, inv.ExpiresAt, inv.CreatedBy, inv.CreatedAt,
	)
	return err
}

func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*model.ProjectInvitation, error) {
	query := `
        SELECT id, project_id, email, role, token, expires_at, created_by, created_at
        FROM project_invitations
        WHERE token = $1
    `
	return r.scanOne(ctx, query, token)
}

// FindByProjectAndEmail returns the pending invitation for an email in a
// project, if any. Emails compare case-insensitively.
func (r *InvitationRepository) FindByProjectAndEmail(ctx context.Context, projectID, email string) (*model.ProjectInvitation, error) {
	query := `
        SELECT id, project_id, email, role, token, expires_at, created_by, created_at
        FROM project_invitations
        WHERE project_id = $1 AND LOWER(email) = LOWER($2)
    `
	return r.scanOne(ctx, query, projectID, email)
}

func (r *InvitationRepository) ListByProject(ctx context.Context, projectID string) ([]model.ProjectInvitation, error) {
	query := `
        SELECT id, project_id, email, role, token, expires_at, created_by, created_at
        FROM project_invitations
        WHERE project_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := []model.ProjectInvitation{}
	for rows.Next() {
		var inv model.ProjectInvitation
		if err := rows.Scan(
			&inv.ID, &inv.ProjectID, &inv.Email, &inv.Role, &inv.Token,
			&inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM project_invitations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *InvitationRepository) scanOne(ctx context.Context, query string, args ...any) (*model.ProjectInvitation, error) {
	var inv model.ProjectInvitation
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&inv.ID, &inv.ProjectID, &inv.Email, &inv.Role, &inv.Token,
		&inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
