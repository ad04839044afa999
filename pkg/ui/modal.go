package ui

import (
	"taskdesk/pkg/tasks"
)

// Draft is the task payload an update form is opened with
type Draft struct {
	ID          int64
	Title       string
	Description string
	Status      tasks.Status
	Deadline    tasks.Date
}

// Modals tracks which task form is open. At most one carries a payload.
type Modals struct {
	CreateVisible bool
	UpdateVisible bool
	Selected      *Draft
}

// OpenCreate shows the create form, starting blank
func (m *Modals) OpenCreate() {
	m.CreateVisible = true
	m.UpdateVisible = false
	m.Selected = nil
}

// OpenUpdate shows the update form pre-filled with task. The deadline is reduced to
// its calendar date so the form never carries a time of day.
func (m *Modals) OpenUpdate(task tasks.Task) {
	status := task.Status
	if !status.Valid() {
		status = tasks.StatusToDo
	}

	m.CreateVisible = false
	m.UpdateVisible = true
	m.Selected = &Draft{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      status,
		Deadline:    tasks.DateOf(task.Deadline.Time()),
	}
}

// CloseCreate hides the create form
func (m *Modals) CloseCreate() {
	m.CreateVisible = false
}

// CloseUpdate hides the update form and drops its payload
func (m *Modals) CloseUpdate() {
	m.UpdateVisible = false
	m.Selected = nil
}

// FilterState is the filter the user is composing. Status "" means all.
type FilterState struct {
	Status         tasks.Status
	DeadlineBefore tasks.Date
}

// CycleStatus steps All -> To Do -> In Progress -> Done -> All
func (f *FilterState) CycleStatus() {
	switch f.Status {
	case "", tasks.StatusAll:
		f.Status = tasks.StatusToDo
	case tasks.StatusDone:
		f.Status = ""
	default:
		f.Status = f.Status.Next()
	}
}

// SetDeadline parses text as YYYY-MM-DD; blank clears the deadline.
// Invalid input leaves the state unchanged.
func (f *FilterState) SetDeadline(text string) error {
	d, err := tasks.ParseDate(text)
	if err != nil {
		return err
	}
	f.DeadlineBefore = d
	return nil
}

// Clear resets the filter to match every task
func (f *FilterState) Clear() {
	*f = FilterState{}
}

// StatusLabel renders the status selection, "All" when unset
func (f FilterState) StatusLabel() string {
	if f.Status == "" {
		return string(tasks.StatusAll)
	}
	return string(f.Status)
}

// ToFilter converts the state into a list query filter
func (f FilterState) ToFilter() tasks.Filter {
	status := f.Status
	if status == tasks.StatusAll {
		status = ""
	}
	return tasks.Filter{Status: status, DeadlineBefore: f.DeadlineBefore}
}
