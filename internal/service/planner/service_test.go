package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/model"
)

type fakeTaskSource struct {
	tasks []model.Task
	err   error
}

func (s *fakeTaskSource) ListForPlanner(_ context.Context, _ string) ([]model.Task, error) {
	return s.tasks, s.err
}

func strptr(s string) *string { return &s }

func TestGetDailyViewTagsPlannerStatus(t *testing.T) {
	source := &fakeTaskSource{tasks: []model.Task{
		{ID: "t1", Status: model.StatusInProgress, AssigneeID: strptr("u1")},
		{ID: "t2", Status: model.StatusTodo, AssigneeID: strptr("u2")},
		{ID: "t3", Status: model.StatusTodo},
	}}
	svc := NewService(source, "", time.Second, zap.NewNop())

	view, err := svc.GetDailyView(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetDailyView: %v", err)
	}
	if len(view) != 3 {
		t.Fatalf("view = %d tasks, want 3", len(view))
	}

	byID := map[string]string{}
	for _, pt := range view {
		byID[pt.ID] = pt.PlannerStatus
	}
	if byID["t1"] != model.StatusInProgress {
		t.Errorf("own task planner status = %q, want its status", byID["t1"])
	}
	if byID["t2"] != model.PlannerStatusIncoming {
		t.Errorf("other's task planner status = %q, want incoming", byID["t2"])
	}
	if byID["t3"] != model.PlannerStatusIncoming {
		t.Errorf("unassigned task planner status = %q, want incoming", byID["t3"])
	}
}

func TestGetDailyViewMergesFeedKeepingLocalOnCollision(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req feedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode feed request: %v", err)
		}
		if req.UserID != "u1" {
			t.Errorf("feed userId = %q", req.UserID)
		}
		json.NewEncoder(w).Encode(feedResponse{Tasks: []model.Task{
			{ID: "t1", Title: "feed copy", AssigneeID: strptr("u1")},
			{ID: "ext1", Title: "from feed", AssigneeID: strptr("u1"), Status: model.StatusTodo},
		}})
	}))
	defer feed.Close()

	source := &fakeTaskSource{tasks: []model.Task{
		{ID: "t1", Title: "local copy", Status: model.StatusTodo, AssigneeID: strptr("u1")},
	}}
	svc := NewService(source, feed.URL, time.Second, zap.NewNop())

	view, err := svc.GetDailyView(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetDailyView: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("view = %d tasks, want 2", len(view))
	}

	byID := map[string]model.PlannerTask{}
	for _, pt := range view {
		byID[pt.ID] = pt
	}
	if byID["t1"].Title != "local copy" {
		t.Errorf("collision resolved to %q, want the local row", byID["t1"].Title)
	}
	if byID["ext1"].Title != "from feed" {
		t.Error("feed-only task missing from merge")
	}
}

func TestGetDailyViewDegradesWhenFeedFails(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer feed.Close()

	source := &fakeTaskSource{tasks: []model.Task{
		{ID: "t1", Status: model.StatusTodo, AssigneeID: strptr("u1")},
	}}
	svc := NewService(source, feed.URL, time.Second, zap.NewNop())

	view, err := svc.GetDailyView(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetDailyView: %v", err)
	}
	if len(view) != 1 || view[0].ID != "t1" {
		t.Errorf("expected the local view, got %+v", view)
	}
}
