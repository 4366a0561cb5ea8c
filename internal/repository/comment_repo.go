package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/model"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Insert(ctx context.Context, c *model.Comment) error {
	query := `
        INSERT INTO comments (id, task_id, user_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.Exec(ctx, query, c.ID, c.TaskID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	return err
}

// ListByTask returns a task's comments newest-first with the author joined.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	query := `
        SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, c.updated_at,
               u.id, u.name, u.email, u.role
        FROM comments c
        LEFT JOIN users u ON u.id = c.user_id
        WHERE c.task_id = $1
        ORDER BY c.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var uID, uName, uEmail, uRole *string
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&uID, &uName, &uEmail, &uRole,
		); err != nil {
			return nil, err
		}
		if uID != nil {
			c.User = &model.User{ID: *uID, Name: *uName, Email: *uEmail, Role: *uRole}
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
