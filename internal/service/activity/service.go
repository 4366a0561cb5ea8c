package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/pkg/metrics"
)

// Store is the slice of the activity repository the service needs.
type Store interface {
	Insert(ctx context.Context, entry *model.ActivityLog) error
	Query(ctx context.Context, projectID string, opts repository.QueryOptions) ([]model.ActivityLog, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Append writes an audit entry. It is best-effort by contract: a failure
// is logged and counted, never surfaced to the mutation that triggered
// it. The entry's id and timestamp are filled in here.
func (s *Service) Append(ctx context.Context, entry *model.ActivityLog) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now()
	if entry.Visibility == "" {
		entry.Visibility = model.VisibilityPublic
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		metrics.ActivityAppendFailures.Inc()
		s.logger.Error("Dropped activity log entry",
			zap.Error(err),
			zap.String("project_id", entry.ProjectID),
			zap.String("action_type", entry.ActionType),
		)
	}
}

// Query returns a project's activity newest-first. Client-facing callers
// pass visibility=public so internal entries never leak.
func (s *Service) Query(ctx context.Context, projectID string, opts repository.QueryOptions) ([]model.ActivityLog, error) {
	return s.store.Query(ctx, projectID, opts)
}
