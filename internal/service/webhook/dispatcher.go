package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/pkg/metrics"
)

// Registry is the slice of the status-webhook repository the dispatcher
// needs.
type Registry interface {
	Upsert(ctx context.Context, w *model.StatusWebhook) (*model.StatusWebhook, error)
	FindByProjectAndStatus(ctx context.Context, projectID, status string) (*model.StatusWebhook, error)
	ListByProject(ctx context.Context, projectID string) ([]model.StatusWebhook, error)
}

type Dispatcher struct {
	registry Registry
	client   *http.Client
	logger   *zap.Logger
}

func NewDispatcher(registry Registry, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Register upserts the URL for a (project, status) pair.
func (d *Dispatcher) Register(ctx context.Context, projectID, status, url string) (*model.StatusWebhook, error) {
	return d.registry.Upsert(ctx, &model.StatusWebhook{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Status:    status,
		URL:       url,
	})
}

func (d *Dispatcher) List(ctx context.Context, projectID string) ([]model.StatusWebhook, error) {
	return d.registry.ListByProject(ctx, projectID)
}

// Dispatch posts the task to the URL registered for (project, status),
// if any. Failures are logged and swallowed; there are no retries.
func (d *Dispatcher) Dispatch(ctx context.Context, projectID, status string, task model.Task) {
	hook, err := d.registry.FindByProjectAndStatus(ctx, projectID, status)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncrementWebhookDelivery("skipped")
		return
	}
	if err != nil {
		metrics.IncrementWebhookDelivery("failed")
		d.logger.Error("Status webhook lookup failed",
			zap.Error(err),
			zap.String("project_id", projectID),
			zap.String("status", status),
		)
		return
	}

	if err := d.post(ctx, hook.URL, task); err != nil {
		metrics.IncrementWebhookDelivery("failed")
		d.logger.Error("Status webhook delivery failed",
			zap.Error(err),
			zap.String("project_id", projectID),
			zap.String("status", status),
			zap.String("url", hook.URL),
		)
		return
	}

	metrics.IncrementWebhookDelivery("delivered")
	d.logger.Info("Status webhook delivered",
		zap.String("project_id", projectID),
		zap.String("status", status),
	)
}

func (d *Dispatcher) post(ctx context.Context, url string, task model.Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook target returned %d", resp.StatusCode)
	}
	return nil
}
