package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/pkg/auth"
	"taskdesk/pkg/query"
	"taskdesk/pkg/tasks"
)

const flashDuration = 4 * time.Second

type sessionResolvedMsg struct {
	state auth.State
}

// sessionRecheckedMsg reports a profile recheck after the backend rejected the credential
type sessionRecheckedMsg struct {
	state auth.State
}

type tasksFetchedMsg struct {
	result query.Result
}

type invalidatedMsg struct{}

type loginDoneMsg struct {
	user auth.User
	err  error
}

type registerDoneMsg struct {
	user auth.User
	err  error
}

type mutationDoneMsg struct {
	op   tasks.Operation
	task tasks.Task
	err  error
}

type flashExpiredMsg struct {
	id int
}

func resolveSession(ctx context.Context, session *auth.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionResolvedMsg{state: session.Resolve(ctx)}
	}
}

// recheckSession re-validates the credential after the backend rejected a request
func recheckSession(ctx context.Context, session *auth.Session) tea.Cmd {
	return func() tea.Msg {
		_ = session.FetchProfile(ctx)
		return sessionRecheckedMsg{state: session.State()}
	}
}

func fetchTasks(ctx context.Context, list *query.TaskList, req query.Request) tea.Cmd {
	return func() tea.Msg {
		return tasksFetchedMsg{result: list.Fetch(ctx, req)}
	}
}

// waitForInvalidation blocks until the task cache is marked stale
func waitForInvalidation(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return invalidatedMsg{}
	}
}

func login(ctx context.Context, session *auth.Session, username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := session.Login(ctx, username, password)
		return loginDoneMsg{user: user, err: err}
	}
}

func register(ctx context.Context, session *auth.Session, name, username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := session.Register(ctx, name, username, password)
		return registerDoneMsg{user: user, err: err}
	}
}

func createTask(ctx context.Context, mutations *query.TaskMutations, fields tasks.Fields) tea.Cmd {
	return func() tea.Msg {
		task, err := mutations.Create(ctx, fields)
		return mutationDoneMsg{op: tasks.OpCreate, task: task, err: err}
	}
}

func updateTask(ctx context.Context, mutations *query.TaskMutations, id int64, fields tasks.Fields) tea.Cmd {
	return func() tea.Msg {
		task, err := mutations.Update(ctx, id, fields)
		return mutationDoneMsg{op: tasks.OpUpdate, task: task, err: err}
	}
}

func deleteTask(ctx context.Context, mutations *query.TaskMutations, id int64) tea.Cmd {
	return func() tea.Msg {
		err := mutations.Delete(ctx, id)
		return mutationDoneMsg{op: tasks.OpDelete, task: tasks.Task{ID: id}, err: err}
	}
}

func expireFlash(id int) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}
