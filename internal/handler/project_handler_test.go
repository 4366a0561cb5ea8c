package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service/project"
)

type memProjectStore struct {
	projects map[string]*model.Project
	memberOf map[string][]string
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{
		projects: map[string]*model.Project{},
		memberOf: map[string][]string{},
	}
}

func (s *memProjectStore) Insert(_ context.Context, p *model.Project) error {
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func (s *memProjectStore) FindByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProjectStore) ListForUser(_ context.Context, userID string) ([]model.Project, error) {
	out := []model.Project{}
	for _, id := range s.memberOf[userID] {
		if p, ok := s.projects[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memProjectStore) ListByClient(_ context.Context, clientName, clientToken string) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range s.projects {
		if p.ClientName == clientName && p.ClientToken == clientToken {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memMemberStore struct{}

func (memMemberStore) Insert(_ context.Context, _ *model.ProjectMember) error { return nil }

type memClientLister struct {
	tasks  []model.Task
	called bool
}

func (l *memClientLister) ListPublicByProjects(_ context.Context, projectIDs []string) ([]model.Task, error) {
	l.called = true
	out := []model.Task{}
	ids := map[string]bool{}
	for _, id := range projectIDs {
		ids[id] = true
	}
	for _, t := range l.tasks {
		if ids[t.ProjectID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func newClientTestRouter(store *memProjectStore, lister *memClientLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := project.NewService(store, memMemberStore{}, zap.NewNop())
	h := NewProjectHandler(svc, lister, zap.NewNop())

	r := gin.New()
	r.GET("/client/tasks", h.ListClientTasks)
	return r
}

func TestListClientTasksNeverReturnsInternalTasks(t *testing.T) {
	store := newMemProjectStore()
	store.projects["p1"] = &model.Project{ID: "p1", ClientName: "acme", ClientToken: "tok-1"}

	// The lister leaks an internal task alongside the public ones; the
	// client view must still exclude it.
	lister := &memClientLister{tasks: []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "public work", Visibility: model.VisibilityPublic},
		{ID: "t2", ProjectID: "p1", Title: "internal note", Visibility: model.VisibilityInternal},
		{ID: "t3", ProjectID: "p1", Title: "more public work", Visibility: model.VisibilityPublic},
	}}
	r := newClientTestRouter(store, lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/client/tasks?clientName=acme&clientToken=tok-1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tasks) != 2 {
		t.Fatalf("tasks = %d, want the 2 public ones: %+v", len(resp.Tasks), resp.Tasks)
	}
	for _, task := range resp.Tasks {
		if task.Visibility != model.VisibilityPublic {
			t.Errorf("internal task %q leaked to the client view", task.ID)
		}
	}
}

func TestListClientTasksWrongTokenMatchesNothing(t *testing.T) {
	store := newMemProjectStore()
	store.projects["p1"] = &model.Project{ID: "p1", ClientName: "acme", ClientToken: "tok-1"}
	lister := &memClientLister{tasks: []model.Task{
		{ID: "t1", ProjectID: "p1", Visibility: model.VisibilityPublic},
	}}
	r := newClientTestRouter(store, lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/client/tasks?clientName=acme&clientToken=wrong", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tasks) != 0 {
		t.Errorf("wrong token returned %d tasks", len(resp.Tasks))
	}
	if lister.called {
		t.Error("task lister should not be consulted when no project matches")
	}
}

func TestListClientTasksRequiresBothParams(t *testing.T) {
	r := newClientTestRouter(newMemProjectStore(), &memClientLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/client/tasks?clientName=acme", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
