package ui

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/pkg/auth"
	"taskdesk/pkg/config"
	"taskdesk/pkg/keymaps"
	"taskdesk/pkg/query"
	"taskdesk/pkg/storage"
	"taskdesk/pkg/tasks"
)

type memStore map[string]string

func (s memStore) GetItem(key string) (string, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

func (s memStore) SetItem(key, value string) error {
	s[key] = value
	return nil
}

func (s memStore) RemoveItem(key string) error {
	delete(s, key)
	return nil
}

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, username, password string) (string, auth.User, error) {
	if password != "secret" {
		return "", auth.User{}, &auth.LoginError{StatusCode: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	return "tok", auth.User{ID: 1, Username: username, Name: "Ada"}, nil
}

func (stubAuth) Register(ctx context.Context, name, username, password string) (auth.User, error) {
	return auth.User{ID: 2, Username: username, Name: name}, nil
}

func (stubAuth) Profile(ctx context.Context) (auth.User, error) {
	return auth.User{ID: 1, Username: "ada", Name: "Ada"}, nil
}

type stubRepo struct {
	tasks   []tasks.Task
	listErr error
	listed  []tasks.Filter
	created []tasks.Fields
	updated []int64
	deleted []int64
}

func (r *stubRepo) List(ctx context.Context, filter tasks.Filter) ([]tasks.Task, error) {
	r.listed = append(r.listed, filter)
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.tasks, nil
}

func (r *stubRepo) Create(ctx context.Context, fields tasks.Fields) (tasks.Task, error) {
	r.created = append(r.created, fields)
	return tasks.Task{ID: 99, Title: fields.Title, Status: fields.Status}, nil
}

func (r *stubRepo) Update(ctx context.Context, id int64, fields tasks.Fields) (tasks.Task, error) {
	r.updated = append(r.updated, id)
	return tasks.Task{ID: id, Title: fields.Title, Status: fields.Status}, nil
}

func (r *stubRepo) Delete(ctx context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type harness struct {
	model   Model
	repo    *stubRepo
	store   memStore
	session *auth.Session
	list    *query.TaskList
}

func newHarness(t *testing.T, items ...tasks.Task) *harness {
	t.Helper()

	store := memStore{}
	session, err := auth.NewSession(store, stubAuth{})
	require.NoError(t, err)

	repo := &stubRepo{tasks: items}
	bus := query.NewBus()
	list := query.NewTaskList(repo, bus)
	mutations := query.NewTaskMutations(repo, bus)

	m := NewModel(context.Background(), Deps{Session: session, Tasks: list, Mutations: mutations}, config.Config{}, config.DefaultStyles())
	t.Cleanup(m.unsubscribe)

	return &harness{model: m, repo: repo, store: store, session: session, list: list}
}

// signIn authenticates the session and loads the list as the UI would
func (h *harness) signIn(t *testing.T) {
	t.Helper()

	_, err := h.session.Login(context.Background(), "ada", "secret")
	require.NoError(t, err)
	_, err = h.list.Load(context.Background(), tasks.Filter{})
	require.NoError(t, err)

	h.model.mode = NormalMode
	h.model.refreshRows()
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModalsOpenUpdateCarriesDraft(t *testing.T) {
	var modals Modals

	modals.OpenCreate()
	assert.True(t, modals.CreateVisible)
	assert.Nil(t, modals.Selected)

	deadline := time.Date(2025, time.June, 1, 18, 30, 0, 0, time.UTC)
	modals.OpenUpdate(tasks.Task{ID: 7, Title: "Write docs", Status: "Blocked", Deadline: tasks.DateOf(deadline)})

	assert.False(t, modals.CreateVisible)
	assert.True(t, modals.UpdateVisible)
	require.NotNil(t, modals.Selected)
	assert.Equal(t, int64(7), modals.Selected.ID)
	assert.Equal(t, tasks.StatusToDo, modals.Selected.Status)
	assert.Equal(t, "2025-06-01", modals.Selected.Deadline.String())

	modals.CloseUpdate()
	assert.False(t, modals.UpdateVisible)
	assert.Nil(t, modals.Selected)
}

func TestFilterStateCycleAndDeadline(t *testing.T) {
	var f FilterState
	assert.Equal(t, "All", f.StatusLabel())

	var seen []string
	for i := 0; i < 4; i++ {
		f.CycleStatus()
		seen = append(seen, f.StatusLabel())
	}
	assert.Equal(t, []string{"To Do", "In Progress", "Done", "All"}, seen)

	require.NoError(t, f.SetDeadline("2025-06-01"))
	assert.Equal(t, "2025-06-01", f.DeadlineBefore.String())

	assert.Error(t, f.SetDeadline("June 1st"))
	assert.Equal(t, "2025-06-01", f.DeadlineBefore.String())

	f.Status = tasks.StatusAll
	assert.Equal(t, tasks.Status(""), f.ToFilter().Status)

	f.Clear()
	assert.True(t, f.ToFilter().IsZero())
}

func TestSessionResolvedRoutesByState(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, LoadingMode, h.model.Mode())

	cmd := h.send(sessionResolvedMsg{state: auth.Anonymous})
	assert.Nil(t, cmd)
	assert.Equal(t, LoginMode, h.model.Mode())
	assert.Empty(t, h.model.flash.text)

	h.model.mode = NormalMode
	h.send(sessionResolvedMsg{state: auth.Anonymous})
	assert.Equal(t, LoginMode, h.model.Mode())
	assert.Equal(t, "Session expired, please log in again", h.model.flash.text)
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 1, Title: "Buy milk", Status: tasks.StatusToDo})
	h.send(sessionResolvedMsg{state: auth.Anonymous})

	// Missing password never reaches the backend
	h.model.usernameInput.SetValue("ada")
	h.model.authField = 1
	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Error(t, h.model.formErr)

	h.model.passwordInput.SetValue("wrong")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	h.send(cmd())
	assert.Equal(t, LoginMode, h.model.Mode())
	assert.EqualError(t, h.model.formErr, "Invalid username or password")

	h.model.passwordInput.SetValue("secret")
	cmd = h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	h.send(cmd())
	assert.Equal(t, NormalMode, h.model.Mode())
	assert.Equal(t, "Welcome, Ada", h.model.flash.text)
	assert.Equal(t, "tok", h.store[storage.TokenKey])
}

func TestRegisterReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.send(sessionResolvedMsg{state: auth.Anonymous})
	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, RegisterMode, h.model.Mode())

	h.model.nameInput.SetValue("Grace")
	h.model.usernameInput.SetValue("grace")
	h.model.passwordInput.SetValue("pw")
	h.model.authField = 2

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	h.send(cmd())

	assert.Equal(t, LoginMode, h.model.Mode())
	assert.Equal(t, "grace", h.model.usernameInput.Value())
	assert.Equal(t, "Registration successful, please log in", h.model.flash.text)
	assert.False(t, h.session.HasCredential())
}

func TestStaleFetchIsIgnored(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 1, Title: "Buy milk", Status: tasks.StatusToDo})
	h.model.mode = NormalMode

	first := h.list.SetFilter(tasks.Filter{Status: tasks.StatusDone})
	second := h.list.SetFilter(tasks.Filter{})

	h.send(tasksFetchedMsg{result: h.list.Fetch(context.Background(), first)})
	assert.Empty(t, h.model.items)

	h.send(tasksFetchedMsg{result: h.list.Fetch(context.Background(), second)})
	require.Len(t, h.model.items, 1)
	assert.Equal(t, "Buy milk", h.model.items[0].Title)
}

func TestUnauthorizedFetchRechecksSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	req := h.list.Refetch()
	cmd := h.send(tasksFetchedMsg{result: query.Result{
		Seq: req.Seq,
		Err: &tasks.RequestError{Op: tasks.OpList, StatusCode: http.StatusUnauthorized, Message: "Invalid or expired token"},
	}})
	require.NotNil(t, cmd)

	msg, ok := cmd().(sessionRecheckedMsg)
	require.True(t, ok)
	assert.Equal(t, auth.Authenticated, msg.state)
}

func TestEmptyTitleIsRejectedLocally(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(runes("a"))
	require.Equal(t, CreateMode, h.model.Mode())
	assert.True(t, h.model.modals.CreateVisible)

	for i := 0; i < 3; i++ {
		h.send(tea.KeyMsg{Type: tea.KeyTab})
	}
	require.Equal(t, fieldDeadline, h.model.activeInput)

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, CreateMode, h.model.Mode())
	assert.EqualError(t, h.model.formErr, "Title is required")
	assert.Empty(t, h.repo.created)
}

func TestCreateSubmitsAndCloses(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(runes("a"))
	h.model.titleInput.SetValue("  Write report  ")
	h.model.deadlineInput.SetValue("2025-06-01")
	h.model.activeInput = fieldDeadline

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, h.model.saving)

	// A second enter while saving is ignored
	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))

	done := cmd()
	require.Len(t, h.repo.created, 1)
	assert.Equal(t, "Write report", h.repo.created[0].Title)
	assert.Equal(t, tasks.StatusToDo, h.repo.created[0].Status)
	assert.Equal(t, "2025-06-01", h.repo.created[0].Deadline.String())

	h.send(done)
	assert.Equal(t, NormalMode, h.model.Mode())
	assert.False(t, h.model.modals.CreateVisible)
	assert.Equal(t, "Task created successfully", h.model.flash.text)
	assert.Equal(t, 0, h.model.pending)
}

func TestEditPrepopulatesForm(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 4, Title: "Buy milk", Description: "2 litres", Status: tasks.StatusInProgress})
	h.signIn(t)

	h.send(runes("e"))
	require.Equal(t, EditMode, h.model.Mode())
	require.NotNil(t, h.model.modals.Selected)

	assert.Equal(t, "Buy milk", h.model.titleInput.Value())
	assert.Equal(t, "2 litres", h.model.descInput.Value())
	assert.Equal(t, tasks.StatusInProgress, h.model.formStatus)
	assert.Equal(t, "", h.model.deadlineInput.Value())

	h.model.activeInput = fieldDeadline
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	h.send(cmd())

	assert.Equal(t, []int64{4}, h.repo.updated)
	assert.Equal(t, NormalMode, h.model.Mode())
	assert.Nil(t, h.model.modals.Selected)
}

func TestMutationFailureKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(runes("a"))
	h.model.pending = 1
	h.model.saving = true

	h.send(mutationDoneMsg{
		op:  tasks.OpCreate,
		err: &tasks.RequestError{Op: tasks.OpCreate, StatusCode: http.StatusBadRequest, Message: "Title is required"},
	})

	assert.Equal(t, CreateMode, h.model.Mode())
	assert.False(t, h.model.saving)
	assert.True(t, h.model.flash.isErr)
	assert.Equal(t, "Failed to create task: Title is required", h.model.flash.text)
}

func TestDeleteConfirm(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 3, Title: "Old", Status: tasks.StatusDone})
	h.signIn(t)

	h.send(runes("d"))
	require.Equal(t, DeleteConfirmMode, h.model.Mode())
	assert.Contains(t, h.model.View(), "Are you sure you want to delete this task?")

	h.send(runes("n"))
	assert.Equal(t, NormalMode, h.model.Mode())

	h.send(runes("d"))
	cmd := h.send(runes("y"))
	require.NotNil(t, cmd)
	h.send(cmd())

	assert.Equal(t, []int64{3}, h.repo.deleted)
	assert.Equal(t, "Task deleted successfully", h.model.flash.text)
}

func TestFilterModeAppliesFilter(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(runes("f"))
	require.Equal(t, FilterMode, h.model.Mode())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "In Progress", h.model.filterDraft.StatusLabel())

	h.model.filterInput.SetValue("2025-13-40")
	assert.Nil(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, FilterMode, h.model.Mode())
	assert.Error(t, h.model.formErr)

	h.model.filterInput.SetValue("2025-06-01")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, NormalMode, h.model.Mode())

	h.send(cmd())
	want := tasks.Filter{Status: tasks.StatusInProgress, DeadlineBefore: tasks.NewDate(2025, time.June, 1)}
	assert.Equal(t, want, h.list.Filter())
	assert.Equal(t, want, h.repo.listed[len(h.repo.listed)-1])
}

func TestLogoutClearsCredential(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 1, Title: "Buy milk", Status: tasks.StatusToDo})
	h.signIn(t)
	require.True(t, h.session.HasCredential())

	h.send(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, LoginMode, h.model.Mode())
	assert.False(t, h.session.HasCredential())
	assert.Nil(t, h.session.User())
	assert.Empty(t, h.model.items)
	_, ok := h.store[storage.TokenKey]
	assert.False(t, ok)
}

func TestListViewShowsOwnerAndDeadlines(t *testing.T) {
	h := newHarness(t,
		tasks.Task{ID: 1, Title: "Buy milk", Status: tasks.StatusToDo},
		tasks.Task{ID: 2, Title: "File taxes", Status: tasks.StatusDone, Deadline: tasks.NewDate(2025, time.April, 15)},
	)
	h.signIn(t)

	view := h.model.View()
	assert.Contains(t, view, "Ada Tasks")
	assert.Contains(t, view, "No deadline")
	assert.Contains(t, view, "2025-04-15")
	assert.Contains(t, view, "Showing all tasks")

	h.list.Resolve(query.Result{Seq: h.list.Refetch().Seq, Err: errors.New("backend down")})
	view = h.model.View()
	assert.Contains(t, view, "Error: backend down")
	assert.Contains(t, view, "Buy milk")
}

func TestAdvanceStatusUpdatesSelectedTask(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 5, Title: "Review PR", Status: tasks.StatusInProgress})
	h.signIn(t)

	cmd := h.send(runes(" "))
	require.NotNil(t, cmd)

	done, ok := cmd().(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, tasks.StatusDone, done.task.Status)
	assert.Equal(t, []int64{5}, h.repo.updated)

	h.send(done)
	assert.Equal(t, "Task updated successfully", h.model.flash.text)
	assert.Equal(t, NormalMode, h.model.Mode())
}

func TestRejectedListIsNotRetried(t *testing.T) {
	h := newHarness(t, tasks.Task{ID: 1, Title: "Buy milk", Status: tasks.StatusToDo})
	h.signIn(t)
	h.repo.listErr = &tasks.RequestError{Op: tasks.OpList, StatusCode: http.StatusUnauthorized, Message: "Forbidden for this token"}
	listed := len(h.repo.listed)

	// Drive every returned command back into the model until nothing is left
	cmd := h.send(tasksFetchedMsg{result: h.list.Fetch(context.Background(), h.list.Refetch())})
	for i := 0; cmd != nil && i < 10; i++ {
		cmd = h.send(cmd())
	}

	assert.Nil(t, cmd)
	assert.Equal(t, listed+1, len(h.repo.listed))
	assert.Equal(t, NormalMode, h.model.Mode())
	assert.Contains(t, h.model.View(), "Error: Forbidden for this token")
	assert.Contains(t, h.model.View(), "Buy milk")
}

func TestRecheckWithoutSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(sessionRecheckedMsg{state: auth.Anonymous})

	assert.Equal(t, LoginMode, h.model.Mode())
	assert.Equal(t, "Session expired, please log in again", h.model.flash.text)
}

func TestLateRejectionAfterLogoutKeepsLoginForm(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	req := h.list.Refetch()

	h.send(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Equal(t, LoginMode, h.model.Mode())
	h.model.usernameInput.SetValue("ada")
	h.model.passwordInput.SetValue("half-typed")

	cmd := h.send(tasksFetchedMsg{result: query.Result{
		Seq: req.Seq,
		Err: &tasks.RequestError{Op: tasks.OpList, StatusCode: http.StatusUnauthorized, Message: "Invalid or expired token"},
	}})

	assert.Nil(t, cmd)
	assert.Equal(t, LoginMode, h.model.Mode())
	assert.Equal(t, "half-typed", h.model.passwordInput.Value())
}

func TestWindowResizeWidensTitleColumn(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	// 120 minus the other columns (45), cell padding (10) and the frame (4)
	assert.Equal(t, 61, h.model.columns[1].Width)
	assert.Equal(t, 120, h.model.width)

	h.send(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Equal(t, 61, h.model.columns[1].Width)
}

func TestHelpBarUsesConfiguredKeys(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.model.keyMap = keymaps.BuildKeyMap(map[string]string{"showhelp": "f1", "quitapp": "x"})

	h.send(tea.KeyMsg{Type: tea.KeyF1})
	require.Equal(t, HelpViewMode, h.model.Mode())

	bar := h.model.helpBar()
	assert.Contains(t, bar, "f1")
	assert.Contains(t, bar, "x")
	assert.NotContains(t, bar, "ctrl+b")
}
