package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

const taskColumns = `id, title, COALESCE(description, ''), status, priority, assignee_id,
               visibility, project_id, created_at, estimated_time, completion_time,
               external_id, due_date, tags`

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.String("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	query := `
        INSERT INTO tasks (id, title, description, status, priority, assignee_id,
                           visibility, project_id, created_at, estimated_time,
                           completion_time, external_id, due_date, tags)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID,
		t.Visibility, t.ProjectID, t.CreatedAt, t.EstimatedTime,
		t.CompletionTime, t.ExternalID, t.DueDate, t.Tags,
	)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("project_id", t.ProjectID),
		)
		return err
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssigneeID,
		&t.Visibility, &t.ProjectID, &t.CreatedAt, &t.EstimatedTime,
		&t.CompletionTime, &t.ExternalID, &t.DueDate, &t.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE project_id = $1
        ORDER BY created_at
    `
	return r.list(ctx, query, projectID)
}

// ListPublicByProjects returns public-visibility tasks across a set of
// projects. Used by the token-gated client view.
func (r *TaskRepository) ListPublicByProjects(ctx context.Context, projectIDs []string) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE project_id = ANY($1) AND visibility = 'public'
        ORDER BY created_at
    `
	return r.list(ctx, query, projectIDs)
}

// ListForPlanner returns tasks assigned to the user plus tasks in
// projects the user is a member of.
func (r *TaskRepository) ListForPlanner(ctx context.Context, userID string) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE assignee_id = $1
           OR project_id IN (SELECT project_id FROM project_members WHERE user_id = $1)
        ORDER BY created_at
    `
	return r.list(ctx, query, userID)
}

// buildTaskUpdate renders the SET list for a partial update. An empty
// query means the patch changes nothing. Empty descriptions become NULL
// at rest, matching Insert.
func buildTaskUpdate(id string, patch model.TaskPatch) (string, []any) {
	sets := []string{}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = NULLIF($%d, '')", len(args)))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.AssigneeSet {
		add("assignee_id", patch.AssigneeID)
	}
	if patch.Visibility != nil {
		add("visibility", *patch.Visibility)
	}
	if patch.EstimatedTime != nil {
		add("estimated_time", *patch.EstimatedTime)
	}
	if patch.CompletionTime != nil {
		add("completion_time", *patch.CompletionTime)
	}
	if patch.ExternalID != nil {
		add("external_id", *patch.ExternalID)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.Tags != nil {
		add("tags", patch.Tags)
	}

	if len(sets) == 0 {
		return "", nil
	}

	query := `
        UPDATE tasks
        SET ` + strings.Join(sets, ", ") + `
        WHERE id = $1
        RETURNING ` + taskColumns + `
    `
	return query, args
}

// Update applies a partial update and returns the updated row.
func (r *TaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	query, args := buildTaskUpdate(id, patch)
	if query == "" {
		return r.FindByID(ctx, id)
	}

	var t model.Task
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssigneeID,
		&t.Visibility, &t.ProjectID, &t.CreatedAt, &t.EstimatedTime,
		&t.CompletionTime, &t.ExternalID, &t.DueDate, &t.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update task", zap.Error(err), zap.String("task_id", id))
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.String("task_id", id))
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssigneeID,
			&t.Visibility, &t.ProjectID, &t.CreatedAt, &t.EstimatedTime,
			&t.CompletionTime, &t.ExternalID, &t.DueDate, &t.Tags,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
