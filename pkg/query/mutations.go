package query

import (
	"context"

	"taskdesk/pkg/tasks"
	"taskdesk/pkg/utils"
)

// Writer is the write side of the task repository
type Writer interface {
	Create(ctx context.Context, fields tasks.Fields) (tasks.Task, error)
	Update(ctx context.Context, id int64, fields tasks.Fields) (tasks.Task, error)
	Delete(ctx context.Context, id int64) error
}

// TaskMutations validates input, writes through the repository and
// invalidates the task lists on success
type TaskMutations struct {
	repo Writer
	bus  *Bus
}

// NewTaskMutations creates the mutation set
func NewTaskMutations(repo Writer, bus *Bus) *TaskMutations {
	return &TaskMutations{repo: repo, bus: bus}
}

// Create adds a task
func (m *TaskMutations) Create(ctx context.Context, fields tasks.Fields) (tasks.Task, error) {
	fields, err := tasks.Validate(fields)
	if err != nil {
		return tasks.Task{}, err
	}

	created, err := m.repo.Create(ctx, fields)
	if err != nil {
		return tasks.Task{}, err
	}

	m.invalidate()
	return created, nil
}

// Update replaces a task's editable fields
func (m *TaskMutations) Update(ctx context.Context, id int64, fields tasks.Fields) (tasks.Task, error) {
	fields, err := tasks.Validate(fields)
	if err != nil {
		return tasks.Task{}, err
	}

	updated, err := m.repo.Update(ctx, id, fields)
	if err != nil {
		return tasks.Task{}, err
	}

	m.invalidate()
	return updated, nil
}

// Delete removes a task
func (m *TaskMutations) Delete(ctx context.Context, id int64) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}

	m.invalidate()
	return nil
}

func (m *TaskMutations) invalidate() {
	utils.Log("Invalidating %s", TasksKey)
	m.bus.Publish(TasksKey)
}
