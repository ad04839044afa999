package tasks

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Status is the closed set of task states. Values are the backend's wire spelling.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"

	// StatusAll is the filter sentinel meaning "every status"
	StatusAll Status = "All"
)

// Statuses lists the task states in display order
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

// ParseStatus accepts wire values ("In Progress") and identifier spellings ("InProgress", "in_progress")
func ParseStatus(s string) (Status, error) {
	switch normalizeStatus(s) {
	case "todo":
		return StatusToDo, nil
	case "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown status %q: use To Do, In Progress or Done", s)
}

// ParseFilterStatus is ParseStatus that also accepts "" and "All" as the all-statuses sentinel
func ParseFilterStatus(s string) (Status, error) {
	if n := normalizeStatus(s); n == "" || n == "all" {
		return "", nil
	}
	return ParseStatus(s)
}

func normalizeStatus(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether s is one of the three task states
func (s Status) Valid() bool {
	return s == StatusToDo || s == StatusInProgress || s == StatusDone
}

// Next cycles ToDo -> InProgress -> Done -> ToDo
func (s Status) Next() Status {
	switch s {
	case StatusToDo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusToDo
	}
}

// Prev cycles in the opposite direction to Next
func (s Status) Prev() Status {
	switch s {
	case StatusDone:
		return StatusInProgress
	case StatusInProgress:
		return StatusToDo
	default:
		return StatusDone
	}
}

// Task is one user-owned to-do item as returned by the backend
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Deadline    Date      `json:"deadline"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fields returns the client-editable part of t
func (t Task) Fields() Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Deadline:    t.Deadline,
	}
}

// Fields is what the client submits on create and update. Update is a full replacement.
type Fields struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Status      Status `json:"status" validate:"required,oneof='To Do' 'In Progress' 'Done'"`
	Deadline    Date   `json:"deadline"`
}

// Normalize trims text fields and defaults an empty status to ToDo
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Status == "" {
		f.Status = StatusToDo
	}
	return f
}

// Filter narrows the task list query
type Filter struct {
	Status         Status
	DeadlineBefore Date
}

// IsZero reports whether the filter matches every task
func (f Filter) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) && f.DeadlineBefore.IsZero()
}

// Query builds the list query string. status is omitted when empty or "All",
// deadline is omitted when absent.
func (f Filter) Query() url.Values {
	params := url.Values{}
	if f.Status != "" && f.Status != StatusAll {
		params.Set("status", string(f.Status))
	}
	if !f.DeadlineBefore.IsZero() {
		params.Set("deadline", f.DeadlineBefore.String())
	}
	return params
}

// String summarizes the filter for display
func (f Filter) String() string {
	if f.IsZero() {
		return "all tasks"
	}

	var parts []string
	if f.Status != "" && f.Status != StatusAll {
		parts = append(parts, fmt.Sprintf("status %s", f.Status))
	}
	if !f.DeadlineBefore.IsZero() {
		parts = append(parts, fmt.Sprintf("due by %s", f.DeadlineBefore))
	}
	return strings.Join(parts, ", ")
}
