package task

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type fakeStore struct {
	tasks     map[string]*model.Task
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: map[string]*model.Task{}}
}

func (s *fakeStore) Insert(_ context.Context, t *model.Task) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	cp := *t
	s.tasks[t.ID] = &cp
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) ListByProject(_ context.Context, projectID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssigneeSet {
		t.AssigneeID = patch.AssigneeID
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

type fakeActivity struct {
	entries []*model.ActivityLog
}

func (a *fakeActivity) Append(_ context.Context, entry *model.ActivityLog) {
	a.entries = append(a.entries, entry)
}

type fakePublisher struct {
	published []string
	payloads  []any
	err       error
}

func (p *fakePublisher) Publish(routingKey string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestService(store *fakeStore, activity *fakeActivity, pub *fakePublisher) *Service {
	return NewService(store, activity, pub, zap.NewNop())
}

func TestCreateAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	activity := &fakeActivity{}
	pub := &fakePublisher{}
	svc := newTestService(store, activity, pub)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Fix login",
		ProjectID: "p1",
	}, "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.Status != model.StatusTodo {
		t.Errorf("status = %q, want %q", created.Status, model.StatusTodo)
	}
	if created.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want %q", created.Priority, model.PriorityMedium)
	}
	if created.Visibility != model.VisibilityPublic {
		t.Errorf("visibility = %q, want %q", created.Visibility, model.VisibilityPublic)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if len(activity.entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(activity.entries))
	}
	if activity.entries[0].ActionType != model.ActionTaskCreated {
		t.Errorf("action = %q, want task_created", activity.entries[0].ActionType)
	}
	if len(pub.published) != 1 || pub.published[0] != "task.created" {
		t.Errorf("published = %v, want [task.created]", pub.published)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeActivity{}, &fakePublisher{})

	cases := []struct {
		name  string
		input CreateInput
		user  string
		field string
	}{
		{"missing title", CreateInput{ProjectID: "p1"}, "u1", "title"},
		{"missing project", CreateInput{Title: "x"}, "u1", "project_id"},
		{"missing user", CreateInput{Title: "x", ProjectID: "p1"}, "", "userId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input, tc.user)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestCreateSurvivesSideEffectFailures(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(store, &fakeActivity{}, pub)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Resilient",
		ProjectID: "p1",
	}, "u1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := store.tasks[created.ID]; !ok {
		t.Error("task not persisted")
	}
}

func TestUpdateActionTypeInference(t *testing.T) {
	assignee := "u2"
	title := "Renamed"
	status := model.StatusDone

	cases := []struct {
		name   string
		patch  model.TaskPatch
		action string
	}{
		{"status change wins", model.TaskPatch{Status: &status, AssigneeID: &assignee, AssigneeSet: true}, model.ActionStatusChanged},
		{"assignee change", model.TaskPatch{AssigneeID: &assignee, AssigneeSet: true}, model.ActionAssigneeChanged},
		{"unassign counts as assignee change", model.TaskPatch{AssigneeSet: true}, model.ActionAssigneeChanged},
		{"plain update", model.TaskPatch{Title: &title}, model.ActionTaskUpdated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.tasks["t1"] = &model.Task{ID: "t1", Title: "orig", Status: model.StatusTodo, ProjectID: "p1", Visibility: model.VisibilityPublic}
			activity := &fakeActivity{}
			svc := newTestService(store, activity, &fakePublisher{})

			if _, err := svc.Update(context.Background(), "t1", tc.patch, "u1"); err != nil {
				t.Fatalf("Update: %v", err)
			}
			if len(activity.entries) != 1 {
				t.Fatalf("activity entries = %d, want 1", len(activity.entries))
			}
			if got := activity.entries[0].ActionType; got != tc.action {
				t.Errorf("action = %q, want %q", got, tc.action)
			}
		})
	}
}

func TestUpdateStatusPublishesStatusChanged(t *testing.T) {
	store := newFakeStore()
	store.tasks["t1"] = &model.Task{ID: "t1", Status: model.StatusTodo, ProjectID: "p1"}
	pub := &fakePublisher{}
	svc := newTestService(store, &fakeActivity{}, pub)

	status := model.StatusDone
	if _, err := svc.Update(context.Background(), "t1", model.TaskPatch{Status: &status}, "u1"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := map[string]bool{"task.updated": false, "task.status_changed": false}
	for _, key := range pub.published {
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Errorf("missing published event %s", key)
		}
	}
}

func TestUpdateWithoutStatusDoesNotPublishStatusChanged(t *testing.T) {
	store := newFakeStore()
	store.tasks["t1"] = &model.Task{ID: "t1", Status: model.StatusTodo, ProjectID: "p1"}
	pub := &fakePublisher{}
	svc := newTestService(store, &fakeActivity{}, pub)

	title := "New title"
	if _, err := svc.Update(context.Background(), "t1", model.TaskPatch{Title: &title}, "u1"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, key := range pub.published {
		if key == "task.status_changed" {
			t.Error("status_changed published without a status change")
		}
	}
}

func TestUpdateEmptyPatchIsANoop(t *testing.T) {
	store := newFakeStore()
	store.tasks["t1"] = &model.Task{ID: "t1", Title: "unchanged", ProjectID: "p1"}
	activity := &fakeActivity{}
	pub := &fakePublisher{}
	svc := newTestService(store, activity, pub)

	got, err := svc.Update(context.Background(), "t1", model.TaskPatch{}, "u1")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "unchanged" {
		t.Errorf("returned task = %+v", got)
	}
	if len(activity.entries) != 0 {
		t.Errorf("activity entries = %d, want none for a no-op patch", len(activity.entries))
	}
	if len(pub.published) != 0 {
		t.Errorf("published = %v, want nothing for a no-op patch", pub.published)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeActivity{}, &fakePublisher{})
	status := model.StatusDone
	_, err := svc.Update(context.Background(), "ghost", model.TaskPatch{Status: &status}, "u1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeepsSnapshotInActivity(t *testing.T) {
	store := newFakeStore()
	store.tasks["t1"] = &model.Task{ID: "t1", Title: "Doomed", ProjectID: "p1", Visibility: model.VisibilityInternal}
	activity := &fakeActivity{}
	svc := newTestService(store, activity, &fakePublisher{})

	if err := svc.Delete(context.Background(), "t1", "u1", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.tasks["t1"]; ok {
		t.Error("task still present")
	}

	if len(activity.entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(activity.entries))
	}
	entry := activity.entries[0]
	if entry.ActionType != model.ActionTaskDeleted {
		t.Errorf("action = %q, want task_deleted", entry.ActionType)
	}
	snap, ok := entry.Details["task"].(*model.Task)
	if !ok || snap.Title != "Doomed" {
		t.Errorf("details snapshot = %#v, want the deleted task", entry.Details["task"])
	}
	if entry.Visibility != model.VisibilityInternal {
		t.Errorf("entry visibility = %q, want the task's", entry.Visibility)
	}
}

func TestDeleteMissingTaskIsIdempotent(t *testing.T) {
	activity := &fakeActivity{}
	svc := newTestService(newFakeStore(), activity, &fakePublisher{})

	if err := svc.Delete(context.Background(), "ghost", "u1", "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(activity.entries) != 0 {
		t.Errorf("activity entries = %d, want 0", len(activity.entries))
	}
}
