package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/pkg/tasks"
)

const createdLayout = "2006-01-02 15:04"

// refreshRows rebuilds the table from the cached task list
func (m *Model) refreshRows() {
	m.items = m.list.Tasks()

	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		created := ""
		if !item.CreatedAt.IsZero() {
			created = item.CreatedAt.Local().Format(createdLayout)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(item.ID, 10),
			item.Title,
			string(item.Status),
			deadlineLabel(item.Deadline),
			created,
		})
	}

	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func deadlineLabel(d tasks.Date) string {
	if d.IsZero() {
		return "No deadline"
	}
	return d.String()
}

// selectedTask returns the task under the cursor, or nil
func (m Model) selectedTask() *tasks.Task {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}
	task := m.items[idx]
	return &task
}

// applyFilter makes the composed filter active and fetches for it
func (m *Model) applyFilter() tea.Cmd {
	req := m.list.SetFilter(m.filter.ToFilter())
	return fetchTasks(m.ctx, m.list, req)
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flash = flash{id: m.flash.id + 1, text: text, isErr: isErr}
	return expireFlash(m.flash.id)
}

// failureText prefixes backend messages with the operation's generic failure text
func failureText(op tasks.Operation, err error) string {
	fallback := tasks.DefaultMessage(op)
	msg := err.Error()
	if fallback == "" || strings.HasPrefix(msg, fallback) {
		return msg
	}
	return fmt.Sprintf("%s: %s", fallback, msg)
}

func isUnauthorized(err error) bool {
	var reqErr *tasks.RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized
}

// resetInputs clears all task form inputs
func (m *Model) resetInputs() {
	m.titleInput.Reset()
	m.descInput.Reset()
	m.deadlineInput.Reset()
	m.formStatus = tasks.StatusToDo
	m.formErr = nil
	m.saving = false

	m.activeInput = fieldTitle
	m.focusTaskInput()
}

// populateForm pre-fills the task form from a draft
func (m *Model) populateForm(d Draft) {
	m.resetInputs()
	m.titleInput.SetValue(d.Title)
	m.descInput.SetValue(d.Description)
	m.deadlineInput.SetValue(d.Deadline.String())
	m.formStatus = d.Status
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	m.activeInput = (m.activeInput + 1) % taskFieldCount
	m.focusTaskInput()
}

// focusPreviousInput cycles through the form inputs
func (m *Model) focusPreviousInput() {
	m.activeInput = (m.activeInput - 1 + taskFieldCount) % taskFieldCount
	m.focusTaskInput()
}

func (m *Model) focusTaskInput() {
	m.titleInput.Blur()
	m.descInput.Blur()
	m.deadlineInput.Blur()

	switch m.activeInput {
	case fieldTitle:
		m.titleInput.Focus()
	case fieldDesc:
		m.descInput.Focus()
	case fieldDeadline:
		m.deadlineInput.Focus()
	}
}

// readForm collects the task form into fields; only the deadline can fail to parse here
func (m Model) readForm() (tasks.Fields, error) {
	deadline, err := tasks.ParseDate(m.deadlineInput.Value())
	if err != nil {
		return tasks.Fields{}, err
	}
	return tasks.Fields{
		Title:       m.titleInput.Value(),
		Description: m.descInput.Value(),
		Status:      m.formStatus,
		Deadline:    deadline,
	}, nil
}

// submitForm validates the task form and dispatches the create or update.
// Invalid input keeps the form open and makes no request.
func (m *Model) submitForm() tea.Cmd {
	if m.saving {
		return nil
	}

	fields, err := m.readForm()
	if err != nil {
		m.formErr = err
		return nil
	}
	fields, err = tasks.Validate(fields)
	if err != nil {
		m.formErr = err
		return nil
	}

	m.formErr = nil
	switch m.mode {
	case CreateMode:
		m.saving = true
		m.pending++
		return createTask(m.ctx, m.mutations, fields)
	case EditMode:
		if m.modals.Selected == nil {
			return nil
		}
		m.saving = true
		m.pending++
		return updateTask(m.ctx, m.mutations, m.modals.Selected.ID, fields)
	}
	return nil
}

// closeTaskForm returns to the list, dropping the open modal
func (m *Model) closeTaskForm() {
	m.modals.CloseCreate()
	m.modals.CloseUpdate()
	m.mode = NormalMode
	m.resetInputs()
}

// authInputs returns the login or register inputs in focus order
func (m *Model) authInputs() []*textinput.Model {
	if m.mode == RegisterMode {
		return []*textinput.Model{&m.nameInput, &m.usernameInput, &m.passwordInput}
	}
	return []*textinput.Model{&m.usernameInput, &m.passwordInput}
}

func (m *Model) focusAuthInput() {
	for i, in := range m.authInputs() {
		if i == m.authField {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// toAuth switches to the login or register form
func (m *Model) toAuth(mode InputMode) {
	m.mode = mode
	m.authField = 0
	m.authBusy = false
	m.formErr = nil
	m.passwordInput.Reset()
	if mode == RegisterMode {
		m.nameInput.Reset()
	}
	m.focusAuthInput()
}

// toLogin drops everything tied to the previous user and shows the login form
func (m *Model) toLogin() {
	m.items = nil
	m.table.SetRows(nil)
	m.modals = Modals{}
	m.filter.Clear()
	m.deleting = nil
	m.toAuth(LoginMode)
}

// submitAuth dispatches login or register once every field is filled
func (m *Model) submitAuth() tea.Cmd {
	if m.authBusy {
		return nil
	}

	username := strings.TrimSpace(m.usernameInput.Value())
	password := m.passwordInput.Value()
	name := strings.TrimSpace(m.nameInput.Value())

	if username == "" || password == "" || (m.mode == RegisterMode && name == "") {
		m.formErr = errors.New("all fields are required")
		return nil
	}

	m.formErr = nil
	m.authBusy = true
	m.pending++
	if m.mode == RegisterMode {
		return register(m.ctx, m.session, name, username, password)
	}
	return login(m.ctx, m.session, username, password)
}
