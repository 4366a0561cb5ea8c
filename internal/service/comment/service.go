package comment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// Store is the slice of the comment repository the service needs.
type Store interface {
	Insert(ctx context.Context, c *model.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]model.Comment, error)
}

// TaskLookup resolves the commented task so the activity entry carries
// its project and visibility.
type TaskLookup interface {
	FindByID(ctx context.Context, id string) (*model.Task, error)
}

// ActivityAppender records audit entries, best-effort.
type ActivityAppender interface {
	Append(ctx context.Context, entry *model.ActivityLog)
}

type Service struct {
	store    Store
	tasks    TaskLookup
	activity ActivityAppender
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, tasks TaskLookup, activity ActivityAppender, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		tasks:    tasks,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a comment and appends a comment_added activity entry
// scoped to the task's project and visibility.
func (s *Service) Create(ctx context.Context, taskID, userID, content string) (*model.Comment, error) {
	now := s.now()
	c := &model.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		// Comment exists; without the task there is no project to log
		// against, so the entry is skipped.
		s.logger.Warn("Task lookup after comment insert failed",
			zap.Error(err),
			zap.String("task_id", taskID),
		)
		return c, nil
	}

	s.activity.Append(ctx, &model.ActivityLog{
		ProjectID:  task.ProjectID,
		TaskID:     &task.ID,
		UserID:     userID,
		ActionType: model.ActionCommentAdded,
		Details:    map[string]any{"comment": c},
		Visibility: task.Visibility,
	})
	return c, nil
}

func (s *Service) ListByTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	return s.store.ListByTask(ctx, taskID)
}
