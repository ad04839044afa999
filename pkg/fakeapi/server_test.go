package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, BasePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func day(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func TestLoginIssuesUsableToken(t *testing.T) {
	s := New("secret")
	_, err := s.AddUser("Ada", "ada", "pw")
	require.NoError(t, err)

	code, env := call(t, s.Handler(), http.MethodPost, "/auth/login", "", map[string]string{"username": "ada", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid username or password", env.Error)

	code, env = call(t, s.Handler(), http.MethodPost, "/auth/login", "", map[string]string{"username": "ada", "password": "pw"})
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ada", data.User.Username)

	code, _ = call(t, s.Handler(), http.MethodGet, "/profile", data.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := New("secret")
	_, err := s.AddUser("Ada", "ada", "pw")
	require.NoError(t, err)

	token, err := s.IssueExpiredToken("ada")
	require.NoError(t, err)

	code, env := call(t, s.Handler(), http.MethodGet, "/tasks/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token expired", env.Error)
}

func TestListFiltersByStatusAndDeadline(t *testing.T) {
	s := New("secret")
	ada, err := s.AddUser("Ada", "ada", "pw")
	require.NoError(t, err)
	bob, err := s.AddUser("Bob", "bob", "pw")
	require.NoError(t, err)

	s.SeedTask(ada, Task{Title: "late", Deadline: day("2025-07-01")})
	s.SeedTask(ada, Task{Title: "soon", Deadline: day("2025-05-01")})
	s.SeedTask(ada, Task{Title: "undated"})
	s.SeedTask(ada, Task{Title: "done", Status: "Done", Deadline: day("2025-04-01")})
	s.SeedTask(bob, Task{Title: "not mine", Deadline: day("2025-04-01")})

	token, err := s.IssueToken("ada")
	require.NoError(t, err)

	titles := func(path string) []string {
		code, env := call(t, s.Handler(), http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, code)
		var out []Task
		require.NoError(t, json.Unmarshal(env.Data, &out))
		var names []string
		for _, task := range out {
			names = append(names, task.Title)
		}
		return names
	}

	assert.Equal(t, []string{"late", "soon", "undated", "done"}, titles("/tasks/"))
	assert.Equal(t, []string{"done", "soon"}, titles("/tasks/?deadline=2025-06-01"))
	assert.Equal(t, []string{"soon"}, titles("/tasks/?status=To+Do&deadline=2025-06-01"))

	code, env := call(t, s.Handler(), http.MethodGet, "/tasks/?deadline=June", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid deadline format. Use YYYY-MM-DD.", env.Error)
}

func TestFaultInjectionAndHits(t *testing.T) {
	s := New("secret")
	_, err := s.AddUser("Ada", "ada", "pw")
	require.NoError(t, err)
	token, err := s.IssueToken("ada")
	require.NoError(t, err)

	s.Fail("GET /tasks/", http.StatusInternalServerError)
	code, env := call(t, s.Handler(), http.MethodGet, "/tasks/", token, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "injected failure", env.Error)

	s.Fail("GET /tasks/", 0)
	code, _ = call(t, s.Handler(), http.MethodGet, "/tasks/", token, nil)
	assert.Equal(t, http.StatusOK, code)

	assert.Equal(t, 2, s.Hits("GET /tasks/"))
	assert.Equal(t, 2, s.TotalHits())
}
