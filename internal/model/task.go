package model

import (
	"encoding/json"
	"time"
)

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`   // todo / in-progress / done
	Priority       string     `json:"priority"` // low / medium / high
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	Visibility     string     `json:"visibility"` // internal / public
	ProjectID      string     `json:"project_id"`
	CreatedAt      time.Time  `json:"created_at"`
	EstimatedTime  *int       `json:"estimated_time,omitempty"`
	CompletionTime *int       `json:"completion_time,omitempty"`
	ExternalID     *string    `json:"external_id,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	VisibilityInternal = "internal"
	VisibilityPublic   = "public"
)

// PlannerStatusIncoming marks a daily-planner task whose assignee is not
// the viewing user.
const PlannerStatusIncoming = "incoming"

// PlannerTask is a task decorated with the per-user planner status.
type PlannerTask struct {
	Task
	PlannerStatus string `json:"planner_status"`
}

// TaskPatch is a partial task update. Nil fields are untouched.
// AssigneeSet distinguishes "unassign" (assignee_id present and null)
// from "leave the assignee alone" (field absent).
type TaskPatch struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	AssigneeID     *string    `json:"assignee_id"`
	AssigneeSet    bool       `json:"-"`
	Visibility     *string    `json:"visibility"`
	EstimatedTime  *int       `json:"estimated_time"`
	CompletionTime *int       `json:"completion_time"`
	ExternalID     *string    `json:"external_id"`
	DueDate        *time.Time `json:"due_date"`
	Tags           []string   `json:"tags"`
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type alias TaskPatch
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = TaskPatch(a)
	_, p.AssigneeSet = raw["assignee_id"]
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && !p.AssigneeSet && p.Visibility == nil &&
		p.EstimatedTime == nil && p.CompletionTime == nil &&
		p.ExternalID == nil && p.DueDate == nil && p.Tags == nil
}
