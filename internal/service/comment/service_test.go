package comment

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type fakeStore struct {
	comments []*model.Comment
}

func (s *fakeStore) Insert(_ context.Context, c *model.Comment) error {
	cp := *c
	s.comments = append(s.comments, &cp)
	return nil
}

func (s *fakeStore) ListByTask(_ context.Context, taskID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range s.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeTaskLookup struct {
	task *model.Task
}

func (l *fakeTaskLookup) FindByID(_ context.Context, _ string) (*model.Task, error) {
	if l.task == nil {
		return nil, repository.ErrNotFound
	}
	cp := *l.task
	return &cp, nil
}

type fakeActivity struct {
	entries []*model.ActivityLog
}

func (a *fakeActivity) Append(_ context.Context, entry *model.ActivityLog) {
	a.entries = append(a.entries, entry)
}

func TestCreateLogsCommentAdded(t *testing.T) {
	store := &fakeStore{}
	lookup := &fakeTaskLookup{task: &model.Task{
		ID: "t1", ProjectID: "p1", Visibility: model.VisibilityInternal,
	}}
	activity := &fakeActivity{}
	svc := NewService(store, lookup, activity, zap.NewNop())

	c, err := svc.Create(context.Background(), "t1", "u1", "looks good")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Error("expected generated id and timestamp")
	}

	if len(activity.entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(activity.entries))
	}
	e := activity.entries[0]
	if e.ActionType != model.ActionCommentAdded {
		t.Errorf("action = %q, want comment_added", e.ActionType)
	}
	if e.ProjectID != "p1" || e.Visibility != model.VisibilityInternal {
		t.Errorf("entry scope = %s/%s, want the task's project and visibility", e.ProjectID, e.Visibility)
	}
}

func TestCreateSucceedsWhenTaskLookupFails(t *testing.T) {
	store := &fakeStore{}
	activity := &fakeActivity{}
	svc := NewService(store, &fakeTaskLookup{}, activity, zap.NewNop())

	c, err := svc.Create(context.Background(), "ghost", "u1", "orphaned")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c == nil {
		t.Fatal("expected the comment back")
	}
	if len(activity.entries) != 0 {
		t.Errorf("activity entries = %d, want none without a project", len(activity.entries))
	}
}
