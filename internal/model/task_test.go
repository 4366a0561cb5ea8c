package model

import (
	"encoding/json"
	"testing"
)

func TestTaskPatchTracksAssigneePresence(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		set      bool
		assignee *string
	}{
		{"absent", `{"title":"x"}`, false, nil},
		{"explicit null unassigns", `{"assignee_id":null}`, true, nil},
		{"set to user", `{"assignee_id":"u2"}`, true, strp("u2")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p TaskPatch
			if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.AssigneeSet != tc.set {
				t.Errorf("AssigneeSet = %v, want %v", p.AssigneeSet, tc.set)
			}
			if (p.AssigneeID == nil) != (tc.assignee == nil) {
				t.Fatalf("AssigneeID = %v, want %v", p.AssigneeID, tc.assignee)
			}
			if p.AssigneeID != nil && *p.AssigneeID != *tc.assignee {
				t.Errorf("AssigneeID = %q, want %q", *p.AssigneeID, *tc.assignee)
			}
		})
	}
}

func TestTaskPatchEmpty(t *testing.T) {
	var p TaskPatch
	if err := json.Unmarshal([]byte(`{}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Empty() {
		t.Error("empty body should produce an empty patch")
	}

	if err := json.Unmarshal([]byte(`{"assignee_id":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Empty() {
		t.Error("explicit unassign is not an empty patch")
	}
}

func strp(s string) *string { return &s }
