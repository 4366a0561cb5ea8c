package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Insert(ctx context.Context, m *model.ProjectMember) error {
	query := `
        INSERT INTO project_members (id, project_id, user_id, role, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, m.ID, m.ProjectID, m.UserID, m.Role, m.CreatedAt)
	return err
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, role, created_at
        FROM project_members
        WHERE id = $1
    `
	var m model.ProjectMember
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByProjectAndUser returns the user's membership in a project, if any.
func (r *MemberRepository) FindByProjectAndUser(ctx context.Context, projectID, userID string) (*model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, role, created_at
        FROM project_members
        WHERE project_id = $1 AND user_id = $2
    `
	var m model.ProjectMember
	err := r.db.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByProject returns memberships with the member's name and email joined.
func (r *MemberRepository) ListByProject(ctx context.Context, projectID string) ([]model.ProjectMember, error) {
	query := `
        SELECT m.id, m.project_id, m.user_id, m.role, m.created_at,
               u.id, u.name, u.email, u.role
        FROM project_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.project_id = $1
        ORDER BY m.created_at
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []model.ProjectMember{}
	for rows.Next() {
		var m model.ProjectMember
		var u model.User
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
			&u.ID, &u.Name, &u.Email, &u.Role,
		); err != nil {
			return nil, err
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

// EmailIsMember reports whether an email already belongs to a member of
// the project.
func (r *MemberRepository) EmailIsMember(ctx context.Context, projectID, email string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM project_members m
            JOIN users u ON u.id = m.user_id
            WHERE m.project_id = $1 AND LOWER(u.email) = LOWER($2)
        )
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *MemberRepository) UpdateRole(ctx context.Context, id, role string) (*model.ProjectMember, error) {
	query := `
        UPDATE project_members
        SET role = $2
        WHERE id = $1
        RETURNING id, project_id, user_id, role, created_at
    `
	var m model.ProjectMember
	err := r.db.QueryRow(ctx, query, id, role).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM project_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
