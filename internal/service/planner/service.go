package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/model"
)

// TaskSource is the slice of the task repository the aggregator needs.
type TaskSource interface {
	ListForPlanner(ctx context.Context, userID string) ([]model.Task, error)
}

// Service merges a user's locally known tasks with tasks supplied by an
// external incoming-tasks feed. The local view is authoritative: the
// feed can only add tasks, never remove or override a known id.
type Service struct {
	tasks   TaskSource
	feedURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewService(tasks TaskSource, feedURL string, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		tasks:   tasks,
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type feedRequest struct {
	UserID string       `json:"userId"`
	Tasks  []model.Task `json:"tasks"`
}

type feedResponse struct {
	Tasks []model.Task `json:"tasks"`
}

// GetDailyView returns the user's planner tasks. A task assigned to
// someone else shows as "incoming"; otherwise the planner status mirrors
// the task status. Feed failures degrade to the local view.
func (s *Service) GetDailyView(ctx context.Context, userID string) ([]model.PlannerTask, error) {
	local, err := s.tasks.ListForPlanner(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := make([]model.PlannerTask, 0, len(local))
	seen := make(map[string]struct{}, len(local))
	for _, t := range local {
		view = append(view, tag(t, userID))
		seen[t.ID] = struct{}{}
	}

	if s.feedURL == "" {
		return view, nil
	}

	incoming, err := s.fetchFeed(ctx, userID, local)
	if err != nil {
		s.logger.Error("Incoming-tasks feed failed, serving local view",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return view, nil
	}

	for _, t := range incoming {
		if _, ok := seen[t.ID]; ok {
			// Keep the local row on id collision.
			continue
		}
		seen[t.ID] = struct{}{}
		view = append(view, tag(t, userID))
	}
	return view, nil
}

func (s *Service) fetchFeed(ctx context.Context, userID string, tasks []model.Task) ([]model.Task, error) {
	body, err := json.Marshal(feedRequest{UserID: userID, Tasks: tasks})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.feedURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed returned %d", resp.StatusCode)
	}

	var out feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func tag(t model.Task, userID string) model.PlannerTask {
	status := model.PlannerStatusIncoming
	if t.AssigneeID != nil && *t.AssigneeID == userID {
		status = t.Status
	}
	return model.PlannerTask{Task: t, PlannerStatus: status}
}
