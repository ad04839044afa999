package tasks

import (
	"context"
	"fmt"
	"net/http"

	"taskdesk/pkg/api"
	"taskdesk/pkg/utils"
)

// Doer sends one request to the backend
type Doer interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
}

// Repository maps task CRUD intents to single HTTP calls
type Repository struct {
	client Doer
}

// NewRepository creates a repository on top of client
func NewRepository(client Doer) *Repository {
	return &Repository{client: client}
}

var (
	writeSuccess  = []int{http.StatusOK, http.StatusCreated}
	deleteSuccess = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
)

// List returns the tasks matching filter in backend order
func (r *Repository) List(ctx context.Context, filter Filter) ([]Task, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/tasks/",
		Query:  filter.Query(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DefaultMessage(OpList), err)
	}
	if !resp.StatusIn(writeSuccess...) {
		return nil, requestError(OpList, resp)
	}

	items := []Task{}
	if err := resp.DecodeData(&items); err != nil {
		return nil, fmt.Errorf("%s: decode tasks: %w", DefaultMessage(OpList), err)
	}

	utils.Log("Loaded %d tasks (%s)", len(items), filter)
	return items, nil
}

// Create submits a new task and returns it with server-assigned id and createdAt
func (r *Repository) Create(ctx context.Context, fields Fields) (Task, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/tasks/",
		Body:   fields,
	})
	if err != nil {
		return Task{}, fmt.Errorf("%s: %w", DefaultMessage(OpCreate), err)
	}
	if !resp.StatusIn(writeSuccess...) {
		return Task{}, requestError(OpCreate, resp)
	}

	var created Task
	if err := resp.DecodeData(&created); err != nil {
		return Task{}, fmt.Errorf("%s: decode task: %w", DefaultMessage(OpCreate), err)
	}

	utils.Log("Created task: %d", created.ID)
	return created, nil
}

// Update replaces title, description, status and deadline of task id
func (r *Repository) Update(ctx context.Context, id int64, fields Fields) (Task, error) {
	resp, err := r.client.Do(ctx, api.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/tasks/%d", id),
		Body:   fields,
	})
	if err != nil {
		return Task{}, fmt.Errorf("%s: %w", DefaultMessage(OpUpdate), err)
	}
	if !resp.StatusIn(writeSuccess...) {
		return Task{}, requestError(OpUpdate, resp)
	}

	var updated Task
	if err := resp.DecodeData(&updated); err != nil {
		return Task{}, fmt.Errorf("%s: decode task: %w", DefaultMessage(OpUpdate), err)
	}

	utils.Log("Updated task: %d", id)
	return updated, nil
}

// Delete removes task id
func (r *Repository) Delete(ctx context.Context, id int64) error {
	resp, err := r.client.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/tasks/%d", id),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", DefaultMessage(OpDelete), err)
	}
	if !resp.StatusIn(deleteSuccess...) {
		return requestError(OpDelete, resp)
	}

	utils.Log("Deleted task: %d", id)
	return nil
}

func requestError(op Operation, resp *api.Response) *RequestError {
	msg := resp.ErrorMessage()
	if msg == "" {
		msg = DefaultMessage(op)
	}
	utils.Log("Task %s failed with status %d: %s", op, resp.StatusCode, msg)
	return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: msg}
}
