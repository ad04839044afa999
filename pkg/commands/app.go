package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"taskdesk/pkg/auth"
	"taskdesk/pkg/query"
)

// App bundles what the non-interactive commands operate on
type App struct {
	Session   *auth.Session
	Tasks     *query.TaskList
	Mutations *query.TaskMutations

	In  io.Reader
	Out io.Writer
	Err io.Writer

	reader *bufio.Reader
}

// NewApp wires the commands to the process's standard streams
func NewApp(session *auth.Session, list *query.TaskList, mutations *query.TaskMutations) *App {
	return &App{
		Session:   session,
		Tasks:     list,
		Mutations: mutations,
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

func (a *App) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword hides input on a terminal and reads a plain line otherwise
func (a *App) readPassword(prompt string) (string, error) {
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.Err, prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Err)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	password, err := a.readLine()
	if err != nil {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}
	return password, nil
}

// requireUser resolves the session and fails unless it is authenticated
func requireUser(ctx context.Context, app *App) (*auth.User, error) {
	if app.Session.Resolve(ctx) != auth.Authenticated {
		return nil, fmt.Errorf("%w: run taskdesk --login USER", auth.ErrUnauthenticated)
	}
	return app.Session.User(), nil
}
