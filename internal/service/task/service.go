package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/pkg/metrics"
	"taskboard/pkg/mq"
)

// Store is the slice of the task repository the service needs.
type Store interface {
	Insert(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

// ActivityAppender records audit entries. Appends are best-effort and
// must never fail the mutation.
type ActivityAppender interface {
	Append(ctx context.Context, entry *model.ActivityLog)
}

// EventPublisher fans mutations out to the event bus. Publishing is
// best-effort: a failure is logged here and never propagated.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ValidationError marks a user-correctable missing field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

type Service struct {
	store    Store
	activity ActivityAppender
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, activity ActivityAppender, events EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		activity: activity,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInput is the caller-supplied part of a new task. Zero values for
// status, priority and visibility take the documented defaults.
type CreateInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssigneeID     *string    `json:"assignee_id"`
	Visibility     string     `json:"visibility"`
	ProjectID      string     `json:"project_id"`
	EstimatedTime  *int       `json:"estimated_time"`
	CompletionTime *int       `json:"completion_time"`
	ExternalID     *string    `json:"external_id"`
	DueDate        *time.Time `json:"due_date"`
	Tags           []string   `json:"tags"`
}

// Create inserts a task with server-generated id and timestamp, then
// appends a task_created activity entry and publishes task.created.
// Side-effect failures do not roll the creation back.
func (s *Service) Create(ctx context.Context, input CreateInput, actingUserID string) (*model.Task, error) {
	if input.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if input.ProjectID == "" {
		return nil, &ValidationError{Field: "project_id"}
	}
	if actingUserID == "" {
		return nil, &ValidationError{Field: "userId"}
	}

	t := &model.Task{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		AssigneeID:     input.AssigneeID,
		Visibility:     input.Visibility,
		ProjectID:      input.ProjectID,
		CreatedAt:      s.now(),
		EstimatedTime:  input.EstimatedTime,
		CompletionTime: input.CompletionTime,
		ExternalID:     input.ExternalID,
		DueDate:        input.DueDate,
		Tags:           input.Tags,
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Visibility == "" {
		t.Visibility = model.VisibilityPublic
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}
	metrics.IncrementTaskMutation("created")

	s.activity.Append(ctx, &model.ActivityLog{
		ProjectID:  t.ProjectID,
		TaskID:     &t.ID,
		UserID:     actingUserID,
		ActionType: model.ActionTaskCreated,
		Details:    map[string]any{"task": t},
		Visibility: t.Visibility,
	})
	s.publish(mq.RoutingKeyTaskCreated, mq.TaskEventPayload{
		EventID:   uuid.NewString(),
		ProjectID: t.ProjectID,
		UserID:    actingUserID,
		Task:      *t,
	})

	return t, nil
}

// Update applies a partial update. The activity action type is inferred
// from the patch: a status change wins over an assignee change, which
// wins over a plain update. Setting status also publishes
// task.status_changed for the webhook dispatcher.
func (s *Service) Update(ctx context.Context, id string, patch model.TaskPatch, actingUserID string) (*model.Task, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id"}
	}
	if actingUserID == "" {
		return nil, &ValidationError{Field: "userId"}
	}

	if patch.Empty() {
		// Nothing changes, so no mutation, no audit entry, no events.
		return s.store.FindByID(ctx, id)
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	metrics.IncrementTaskMutation("updated")

	actionType := model.ActionTaskUpdated
	if patch.Status != nil {
		actionType = model.ActionStatusChanged
	} else if patch.AssigneeSet {
		actionType = model.ActionAssigneeChanged
	}

	details := map[string]any{"changes": patch}
	if patch.Status != nil {
		details["newStatus"] = *patch.Status
	}
	if patch.AssigneeSet {
		details["newAssignee"] = patch.AssigneeID
	}
	s.activity.Append(ctx, &model.ActivityLog{
		ProjectID:  updated.ProjectID,
		TaskID:     &updated.ID,
		UserID:     actingUserID,
		ActionType: actionType,
		Details:    details,
		Visibility: updated.Visibility,
	})

	s.publish(mq.RoutingKeyTaskUpdated, mq.TaskEventPayload{
		EventID:   uuid.NewString(),
		ProjectID: updated.ProjectID,
		UserID:    actingUserID,
		Task:      *updated,
	})
	if patch.Status != nil {
		s.publish(mq.RoutingKeyTaskStatusChanged, mq.TaskStatusChangedPayload{
			EventID:   uuid.NewString(),
			ProjectID: updated.ProjectID,
			Status:    updated.Status,
			Task:      *updated,
		})
	}

	return updated, nil
}

// Delete hard-deletes a task. The row is read first so the activity log
// keeps a full snapshot; when the pre-read finds nothing the delete
// still proceeds but no entry is written.
func (s *Service) Delete(ctx context.Context, id, actingUserID, projectID string) error {
	if id == "" {
		return &ValidationError{Field: "id"}
	}

	snapshot, err := s.store.FindByID(ctx, id)
	if err != nil {
		snapshot = nil
		s.logger.Warn("Task pre-read before delete failed",
			zap.Error(err),
			zap.String("task_id", id),
		)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Already gone; deletion is idempotent.
			return nil
		}
		return err
	}
	metrics.IncrementTaskMutation("deleted")

	if snapshot != nil {
		s.activity.Append(ctx, &model.ActivityLog{
			ProjectID:  projectID,
			TaskID:     &id,
			UserID:     actingUserID,
			ActionType: model.ActionTaskDeleted,
			Details:    map[string]any{"task": snapshot},
			Visibility: snapshot.Visibility,
		})
		s.publish(mq.RoutingKeyTaskDeleted, mq.TaskEventPayload{
			EventID:   uuid.NewString(),
			ProjectID: projectID,
			UserID:    actingUserID,
			Task:      *snapshot,
		})
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	return s.store.ListByProject(ctx, projectID)
}

func (s *Service) publish(routingKey string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(routingKey, payload); err != nil {
		s.logger.Error("Failed to publish event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
		)
	}
}
