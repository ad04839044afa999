package query

import (
	"context"
	"sync"

	"taskdesk/pkg/tasks"
	"taskdesk/pkg/utils"
)

// Lister is the read side of the task repository
type Lister interface {
	List(ctx context.Context, filter tasks.Filter) ([]tasks.Task, error)
}

// Request is one issued list fetch
type Request struct {
	Seq    uint64
	Filter tasks.Filter
}

// Result is the outcome of a Request
type Result struct {
	Seq   uint64
	Tasks []tasks.Task
	Err   error
}

// TaskList is the cached task list for the active filter.
// Only the result of the most recently issued request is ever applied.
type TaskList struct {
	mu sync.Mutex

	repo Lister
	bus  *Bus

	filter  tasks.Filter
	seq     uint64
	tasks   []tasks.Task
	loading bool
	err     error
	loaded  bool
}

// NewTaskList creates a list reading through repo and listening on bus
func NewTaskList(repo Lister, bus *Bus) *TaskList {
	return &TaskList{repo: repo, bus: bus}
}

// SetFilter replaces the active filter and issues a request for it
func (l *TaskList) SetFilter(filter tasks.Filter) Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter = filter
	return l.issueLocked()
}

// Refetch issues a new request for the active filter
func (l *TaskList) Refetch() Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.issueLocked()
}

func (l *TaskList) issueLocked() Request {
	l.seq++
	l.loading = true
	return Request{Seq: l.seq, Filter: l.filter}
}

// Fetch runs req against the repository. It does not touch the cached state.
func (l *TaskList) Fetch(ctx context.Context, req Request) Result {
	items, err := l.repo.List(ctx, req.Filter)
	return Result{Seq: req.Seq, Tasks: items, Err: err}
}

// Resolve applies result if it answers the latest request and reports whether it did.
// A failed fetch keeps the previous tasks.
func (l *TaskList) Resolve(result Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if result.Seq != l.seq {
		utils.Log("Dropping stale task list result %d (latest %d)", result.Seq, l.seq)
		return false
	}

	l.loading = false
	if result.Err != nil {
		l.err = result.Err
		return true
	}

	l.err = nil
	l.loaded = true
	l.tasks = result.Tasks
	return true
}

// Load issues, fetches and resolves a request for filter in one call
func (l *TaskList) Load(ctx context.Context, filter tasks.Filter) ([]tasks.Task, error) {
	req := l.SetFilter(filter)
	result := l.Fetch(ctx, req)
	l.Resolve(result)
	return result.Tasks, result.Err
}

// Invalidated subscribes to task invalidations
func (l *TaskList) Invalidated() (<-chan struct{}, func()) {
	return l.bus.Subscribe(TasksKey)
}

// Filter returns the active filter
func (l *TaskList) Filter() tasks.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Tasks returns a copy of the cached tasks
func (l *TaskList) Tasks() []tasks.Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]tasks.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Loading reports whether the latest request is still in flight
func (l *TaskList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Loaded reports whether any fetch has succeeded yet
func (l *TaskList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Err returns the error of the latest resolved fetch
func (l *TaskList) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
