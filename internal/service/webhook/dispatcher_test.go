package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type fakeRegistry struct {
	hooks map[string]*model.StatusWebhook // key: projectID + "/" + status
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{hooks: map[string]*model.StatusWebhook{}}
}

func (r *fakeRegistry) Upsert(_ context.Context, w *model.StatusWebhook) (*model.StatusWebhook, error) {
	key := w.ProjectID + "/" + w.Status
	if existing, ok := r.hooks[key]; ok {
		existing.URL = w.URL
		cp := *existing
		return &cp, nil
	}
	cp := *w
	r.hooks[key] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRegistry) FindByProjectAndStatus(_ context.Context, projectID, status string) (*model.StatusWebhook, error) {
	w, ok := r.hooks[projectID+"/"+status]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeRegistry) ListByProject(_ context.Context, projectID string) ([]model.StatusWebhook, error) {
	out := []model.StatusWebhook{}
	for _, w := range r.hooks {
		if w.ProjectID == projectID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func TestRegisterUpsertsPerProjectStatus(t *testing.T) {
	registry := newFakeRegistry()
	d := NewDispatcher(registry, time.Second, zap.NewNop())

	first, err := d.Register(context.Background(), "p1", model.StatusDone, "http://one.example")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := d.Register(context.Background(), "p1", model.StatusDone, "http://two.example")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-register created a new row: %q vs %q", second.ID, first.ID)
	}
	if second.URL != "http://two.example" {
		t.Errorf("url = %q, want replaced", second.URL)
	}

	hooks, err := d.List(context.Background(), "p1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(hooks) != 1 {
		t.Errorf("hooks = %d, want 1", len(hooks))
	}
}

func TestDispatchPostsTaskJSON(t *testing.T) {
	var got model.Task
	var contentType string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal delivered body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	registry := newFakeRegistry()
	d := NewDispatcher(registry, time.Second, zap.NewNop())
	if _, err := d.Register(context.Background(), "p1", model.StatusDone, target.URL); err != nil {
		t.Fatalf("Register: %v", err)
	}

	task := model.Task{ID: "t1", Title: "Ship it", Status: model.StatusDone, ProjectID: "p1"}
	d.Dispatch(context.Background(), "p1", model.StatusDone, task)

	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if got.ID != "t1" || got.Title != "Ship it" {
		t.Errorf("delivered task = %+v", got)
	}
}

func TestDispatchWithoutRegistrationIsNoop(t *testing.T) {
	called := false
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer target.Close()

	d := NewDispatcher(newFakeRegistry(), time.Second, zap.NewNop())
	d.Dispatch(context.Background(), "p1", model.StatusDone, model.Task{ID: "t1"})

	if called {
		t.Error("no registration but target was called")
	}
}

func TestDispatchSwallowsDeliveryFailure(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer target.Close()

	registry := newFakeRegistry()
	d := NewDispatcher(registry, time.Second, zap.NewNop())
	if _, err := d.Register(context.Background(), "p1", model.StatusDone, target.URL); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Must not panic or block; failures are logged and dropped.
	d.Dispatch(context.Background(), "p1", model.StatusDone, model.Task{ID: "t1"})
}

func TestDispatchStatusesAreIndependent(t *testing.T) {
	doneCalls := 0
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doneCalls++
	}))
	defer target.Close()

	registry := newFakeRegistry()
	d := NewDispatcher(registry, time.Second, zap.NewNop())
	if _, err := d.Register(context.Background(), "p1", model.StatusDone, target.URL); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d.Dispatch(context.Background(), "p1", model.StatusInProgress, model.Task{ID: "t1"})
	if doneCalls != 0 {
		t.Errorf("in-progress dispatch hit the done hook %d times", doneCalls)
	}

	d.Dispatch(context.Background(), "p1", model.StatusDone, model.Task{ID: "t1"})
	if doneCalls != 1 {
		t.Errorf("done dispatch calls = %d, want 1", doneCalls)
	}
}
