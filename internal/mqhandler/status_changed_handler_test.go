package mqhandler

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/pkg/mq"
)

type fakeDispatcher struct {
	calls []string // projectID/status
}

func (d *fakeDispatcher) Dispatch(_ context.Context, projectID, status string, _ model.Task) {
	d.calls = append(d.calls, projectID+"/"+status)
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) AcquireOnce(_ context.Context, handler, eventID string) bool {
	key := handler + ":" + eventID
	if d.seen[key] {
		return false
	}
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	d.seen[key] = true
	return true
}

func payload(t *testing.T, p mq.TaskStatusChangedPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestHandleDispatchesOncePerEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := NewStatusChangedHandler(dispatcher, &fakeDeduper{seen: map[string]bool{}}, zap.NewNop())

	raw := payload(t, mq.TaskStatusChangedPayload{
		EventID:   "ev-1",
		ProjectID: "p1",
		Status:    model.StatusDone,
		Task:      model.Task{ID: "t1", Status: model.StatusDone},
	})

	if err := h.Handle(context.Background(), raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	// Broker redelivery of the same event id.
	if err := h.Handle(context.Background(), raw); err != nil {
		t.Fatalf("Handle redelivery: %v", err)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("dispatch calls = %d, want exactly 1", len(dispatcher.calls))
	}
	if dispatcher.calls[0] != "p1/done" {
		t.Errorf("dispatched %q", dispatcher.calls[0])
	}
}

func TestHandleDistinctEventsBothDispatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := NewStatusChangedHandler(dispatcher, &fakeDeduper{seen: map[string]bool{}}, zap.NewNop())

	for _, id := range []string{"ev-1", "ev-2"} {
		raw := payload(t, mq.TaskStatusChangedPayload{
			EventID: id, ProjectID: "p1", Status: model.StatusDone,
		})
		if err := h.Handle(context.Background(), raw); err != nil {
			t.Fatalf("Handle %s: %v", id, err)
		}
	}
	if len(dispatcher.calls) != 2 {
		t.Errorf("dispatch calls = %d, want 2", len(dispatcher.calls))
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	h := NewStatusChangedHandler(&fakeDispatcher{}, &fakeDeduper{seen: map[string]bool{}}, zap.NewNop())

	if err := h.Handle(context.Background(), json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
	if err := h.Handle(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for missing event_id")
	}
}
