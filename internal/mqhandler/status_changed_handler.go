package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/util"
	"taskboard/pkg/metrics"
	"taskboard/pkg/mq"
)

// WebhookDispatcher is the slice of the webhook service the handler needs.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, projectID, status string, task model.Task)
}

// Deduper gates processing to once per event id.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
}

var _ Deduper = (*util.Deduper)(nil)

// StatusChangedHandler delivers status webhooks for task.status_changed
// events. The deduper guarantees one delivery attempt per event id even
// when the broker redelivers.
type StatusChangedHandler struct {
	dispatcher WebhookDispatcher
	deduper    Deduper
	logger     *zap.Logger
}

func NewStatusChangedHandler(dispatcher WebhookDispatcher, deduper Deduper, logger *zap.Logger) *StatusChangedHandler {
	return &StatusChangedHandler{dispatcher: dispatcher, deduper: deduper, logger: logger}
}

func (h *StatusChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mq.TaskStatusChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal TaskStatusChangedPayload", zap.Error(err))
		return err
	}
	if p.EventID == "" {
		return fmt.Errorf("status_changed event missing event_id")
	}

	if !h.deduper.AcquireOnce(ctx, "status_webhook", p.EventID) {
		metrics.IncrementWebhookDelivery("deduped")
		h.logger.Info("Skipping duplicate status_changed event",
			zap.String("event_id", p.EventID),
			zap.String("project_id", p.ProjectID),
		)
		return nil
	}

	h.logger.Info("Handling task.status_changed event",
		zap.String("event_id", p.EventID),
		zap.String("project_id", p.ProjectID),
		zap.String("status", p.Status),
	)

	h.dispatcher.Dispatch(ctx, p.ProjectID, p.Status, p.Task)
	return nil
}
