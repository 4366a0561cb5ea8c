package model

import "time"

type ActivityLog struct {
	ID         string  `json:"id"`
	ProjectID  string  `json:"project_id"`
	TaskID     *string `json:"task_id,omitempty"`
	UserID     string  `json:"user_id"`
	ActionType string  `json:"action_type"`
	// Details carries a snapshot sufficient to render the entry without
	// re-reading current state; for task_deleted the task row is gone.
	Details    map[string]any `json:"details"`
	Visibility string         `json:"visibility"`
	CreatedAt  time.Time      `json:"created_at"`
	// Joined data; nil when the referenced row no longer exists.
	User *User `json:"user,omitempty"`
	Task *Task `json:"task,omitempty"`
}

const (
	ActionTaskCreated     = "task_created"
	ActionTaskUpdated     = "task_updated"
	ActionTaskDeleted     = "task_deleted"
	ActionCommentAdded    = "comment_added"
	ActionStatusChanged   = "status_changed"
	ActionAssigneeChanged = "assignee_changed"
)
