package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Insert(ctx context.Context, entry *model.ActivityLog) error {
	query := `
        INSERT INTO activity_logs (id, project_id, task_id, user_id, action_type, details, visibility, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.ProjectID, entry.TaskID, entry.UserID,
		entry.ActionType, entry.Details, entry.Visibility, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert activity log",
			zap.Error(err),
			zap.String("project_id", entry.ProjectID),
			zap.String("action_type", entry.ActionType),
		)
		return err
	}
	return nil
}

// QueryOptions bounds and filters an activity query.
type QueryOptions struct {
	Visibility  string // empty means no filter
	Limit       int    // <= 0 means the default of 50
	IncludeUser bool
	IncludeTask bool
}

// Query returns a project's activity newest-first. User and task joins
// are LEFT joins: entries must render even after the referenced user or
// task row is gone.
func (r *ActivityRepository) Query(ctx context.Context, projectID string, opts QueryOptions) ([]model.ActivityLog, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT a.id, a.project_id, a.task_id, a.user_id, a.action_type, a.details, a.visibility, a.created_at,
               u.id, u.name, u.email, u.role,
               t.id, t.title, t.status, t.priority, t.visibility
        FROM activity_logs a
        LEFT JOIN users u ON u.id = a.user_id
        LEFT JOIN tasks t ON t.id = a.task_id
        WHERE a.project_id = $1
    `
	args := []any{projectID}
	if opts.Visibility != "" {
		args = append(args, opts.Visibility)
		query += fmt.Sprintf(" AND a.visibility = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query activity logs",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	entries := []model.ActivityLog{}
	for rows.Next() {
		var entry model.ActivityLog
		var uID, uName, uEmail, uRole *string
		var tID, tTitle, tStatus, tPriority, tVisibility *string
		if err := rows.Scan(
			&entry.ID, &entry.ProjectID, &entry.TaskID, &entry.UserID,
			&entry.ActionType, &entry.Details, &entry.Visibility, &entry.CreatedAt,
			&uID, &uName, &uEmail, &uRole,
			&tID, &tTitle, &tStatus, &tPriority, &tVisibility,
		); err != nil {
			return nil, err
		}
		if opts.IncludeUser && uID != nil {
			entry.User = &model.User{ID: *uID, Name: *uName, Email: *uEmail, Role: *uRole}
		}
		if opts.IncludeTask && tID != nil {
			entry.Task = &model.Task{
				ID:         *tID,
				Title:      *tTitle,
				Status:     *tStatus,
				Priority:   *tPriority,
				Visibility: *tVisibility,
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
