package repository

import (
	"strings"
	"testing"

	"taskboard/internal/model"
)

func strp(s string) *string { return &s }

func TestBuildTaskUpdateEmptyPatch(t *testing.T) {
	query, args := buildTaskUpdate("t1", model.TaskPatch{})
	if query != "" || args != nil {
		t.Errorf("empty patch built %q with args %v", query, args)
	}
}

func TestBuildTaskUpdateDescriptionStoresNullForEmpty(t *testing.T) {
	// Insert runs description through NULLIF so the empty string is NULL
	// at rest; the patch path must do the same.
	query, args := buildTaskUpdate("t1", model.TaskPatch{Description: strp("")})
	if !strings.Contains(query, "description = NULLIF($2, '')") {
		t.Errorf("description SET clause missing NULLIF: %s", query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildTaskUpdateAssigneePointerPassesNull(t *testing.T) {
	query, args := buildTaskUpdate("t1", model.TaskPatch{AssigneeSet: true})
	if !strings.Contains(query, "assignee_id = $2") {
		t.Errorf("assignee SET clause missing: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
	if ptr, ok := args[1].(*string); !ok || ptr != nil {
		t.Errorf("unassign arg = %#v, want a nil *string", args[1])
	}
}

func TestBuildTaskUpdatePlaceholdersStayAligned(t *testing.T) {
	status := model.StatusDone
	query, args := buildTaskUpdate("t1", model.TaskPatch{
		Title:       strp("New"),
		Description: strp("body"),
		Status:      &status,
	})
	for _, clause := range []string{"title = $2", "description = NULLIF($3, '')", "status = $4"} {
		if !strings.Contains(query, clause) {
			t.Errorf("missing %q in %s", clause, query)
		}
	}
	want := []any{"t1", "New", "body", status}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}
