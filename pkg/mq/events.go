package mq

import "taskboard/internal/model"

// Routing keys on the taskboard.events exchange.
const (
	RoutingKeyTaskCreated       = "task.created"
	RoutingKeyTaskUpdated       = "task.updated"
	RoutingKeyTaskDeleted       = "task.deleted"
	RoutingKeyTaskStatusChanged = "task.status_changed"
)

// TaskEventPayload carries a task snapshot for lifecycle events.
type TaskEventPayload struct {
	EventID   string     `json:"event_id"`
	ProjectID string     `json:"project_id"`
	UserID    string     `json:"user_id"`
	Task      model.Task `json:"task"`
}

// TaskStatusChangedPayload is emitted after an update sets a task status.
// EventID is the dedup key: the worker must dispatch the registered status
// webhook at most once per event.
type TaskStatusChangedPayload struct {
	EventID   string     `json:"event_id"`
	ProjectID string     `json:"project_id"`
	Status    string     `json:"status"`
	Task      model.Task `json:"task"`
}
