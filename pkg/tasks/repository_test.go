package tasks_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/pkg/api"
	"taskdesk/pkg/fakeapi"
	"taskdesk/pkg/storage"
	"taskdesk/pkg/tasks"
)

type tokenStore map[string]string

func (s tokenStore) GetItem(key string) (string, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

type fixture struct {
	backend *fakeapi.Server
	server  *httptest.Server
	userID  int64
	repo    *tasks.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := fakeapi.New("test-secret")
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	userID, err := backend.AddUser("Ada Lovelace", "ada", "secret")
	require.NoError(t, err)
	token, err := backend.IssueToken("ada")
	require.NoError(t, err)

	client := api.NewClient(server.URL+fakeapi.BasePath, tokenStore{storage.TokenKey: token})
	return &fixture{
		backend: backend,
		server:  server,
		userID:  userID,
		repo:    tasks.NewRepository(client),
	}
}

func deadline(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &d
}

func TestRepositoryCreateThenList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.repo.Create(ctx, tasks.Fields{
		Title:       "Write report",
		Description: "quarterly",
		Status:      tasks.StatusInProgress,
		Deadline:    tasks.NewDate(2025, time.June, 1),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "2025-06-01", created.Deadline.String())

	items, err := f.repo.List(ctx, tasks.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "Write report", items[0].Title)
	assert.Equal(t, tasks.StatusInProgress, items[0].Status)
	assert.Equal(t, 2, f.backend.TotalHits())
}

func TestRepositoryListEmpty(t *testing.T) {
	f := newFixture(t)

	items, err := f.repo.List(context.Background(), tasks.Filter{Status: tasks.StatusAll})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepositoryListFilters(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedTask(f.userID, fakeapi.Task{Title: "late", Status: "To Do", Deadline: deadline(t, "2025-09-01")})
	f.backend.SeedTask(f.userID, fakeapi.Task{Title: "soon", Status: "Done", Deadline: deadline(t, "2025-05-01")})
	f.backend.SeedTask(f.userID, fakeapi.Task{Title: "undated", Status: "Done"})
	f.backend.SeedTask(f.userID, fakeapi.Task{Title: "sooner", Status: "To Do", Deadline: deadline(t, "2025-04-01")})

	titles := func(items []tasks.Task) []string {
		out := []string{}
		for _, it := range items {
			out = append(out, it.Title)
		}
		return out
	}

	tests := []struct {
		name   string
		filter tasks.Filter
		want   []string
	}{
		{"status", tasks.Filter{Status: tasks.StatusDone}, []string{"soon", "undated"}},
		{"deadline inclusive and ordered", tasks.Filter{DeadlineBefore: tasks.NewDate(2025, time.May, 1)}, []string{"sooner", "soon"}},
		{"both", tasks.Filter{Status: tasks.StatusToDo, DeadlineBefore: tasks.NewDate(2025, time.December, 31)}, []string{"sooner", "late"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := f.repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
		})
	}
}

func TestRepositoryUpdateReplacesFields(t *testing.T) {
	f := newFixture(t)
	seeded := f.backend.SeedTask(f.userID, fakeapi.Task{Title: "old", Description: "keep?", Deadline: deadline(t, "2025-01-01")})

	updated, err := f.repo.Update(context.Background(), seeded.ID, tasks.Fields{
		Title:  "new",
		Status: tasks.StatusDone,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, tasks.StatusDone, updated.Status)
	assert.True(t, updated.Deadline.IsZero())

	stored := f.backend.Tasks(f.userID)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].Deadline)
}

func TestRepositoryDelete(t *testing.T) {
	f := newFixture(t)
	seeded := f.backend.SeedTask(f.userID, fakeapi.Task{Title: "gone"})

	require.NoError(t, f.repo.Delete(context.Background(), seeded.ID))
	assert.Empty(t, f.backend.Tasks(f.userID))
}

func TestRepositoryRequestErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.repo.Delete(ctx, 999)
	var reqErr *tasks.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, tasks.OpDelete, reqErr.Op)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "Task not found", reqErr.Message)

	f.backend.Fail("GET /tasks/", http.StatusInternalServerError)
	_, err = f.repo.List(ctx, tasks.Filter{})
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "injected failure", reqErr.Message)
}

func TestRepositoryDefaultMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := tasks.NewRepository(api.NewClient(server.URL, nil))
	ctx := context.Background()

	_, err := repo.List(ctx, tasks.Filter{})
	assert.EqualError(t, err, "Failed to fetch tasks")
	_, err = repo.Create(ctx, tasks.Fields{Title: "x"})
	assert.EqualError(t, err, "Failed to create task")
	_, err = repo.Update(ctx, 1, tasks.Fields{Title: "x"})
	assert.EqualError(t, err, "Failed to update task")
	err = repo.Delete(ctx, 1)
	assert.EqualError(t, err, "Failed to delete task")
}

func TestRepositoryDeleteAcceptsNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/5", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	repo := tasks.NewRepository(api.NewClient(server.URL, nil))
	assert.NoError(t, repo.Delete(context.Background(), 5))
}

func TestRepositoryTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	repo := tasks.NewRepository(api.NewClient(server.URL, nil))
	_, err := repo.List(context.Background(), tasks.Filter{})

	var transportErr *api.TransportError
	require.ErrorAs(t, err, &transportErr)
	var reqErr *tasks.RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.Contains(t, err.Error(), "Failed to fetch tasks")
}
