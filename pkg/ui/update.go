package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"taskdesk/pkg/auth"
	"taskdesk/pkg/tasks"
	"taskdesk/pkg/utils"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeTable()
		return m, nil

	case sessionResolvedMsg:
		cmd = m.onSessionResolved(msg.state)
		return m, cmd

	case sessionRecheckedMsg:
		cmd = m.onSessionRechecked(msg.state)
		return m, cmd

	case tasksFetchedMsg:
		if m.list.Resolve(msg.result) {
			m.refreshRows()
			if isUnauthorized(msg.result.Err) && m.session.HasCredential() {
				return m, recheckSession(m.ctx, m.session)
			}
		}
		return m, nil

	case invalidatedMsg:
		utils.Log("Task list invalidated, refetching")
		cmds = append(cmds, waitForInvalidation(m.invalidated))
		if m.session.State() == auth.Authenticated {
			cmds = append(cmds, fetchTasks(m.ctx, m.list, m.list.Refetch()))
		}
		return m, tea.Batch(cmds...)

	case loginDoneMsg:
		m.pending--
		m.authBusy = false
		if msg.err != nil {
			m.formErr = msg.err
			return m, nil
		}
		m.mode = NormalMode
		m.passwordInput.Reset()
		cmds = append(cmds, m.setFlash(fmt.Sprintf("Welcome, %s", msg.user.DisplayName()), false))
		cmds = append(cmds, m.applyFilter())
		return m, tea.Batch(cmds...)

	case registerDoneMsg:
		m.pending--
		m.authBusy = false
		if msg.err != nil {
			m.formErr = msg.err
			return m, nil
		}
		username := m.usernameInput.Value()
		m.toAuth(LoginMode)
		m.usernameInput.SetValue(username)
		m.authField = 1
		m.focusAuthInput()
		cmd = m.setFlash("Registration successful, please log in", false)
		return m, cmd

	case mutationDoneMsg:
		cmd = m.onMutationDone(msg)
		return m, cmd

	case flashExpiredMsg:
		if msg.id == m.flash.id {
			m.flash = flash{id: m.flash.id}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.unsubscribe()
			return m, tea.Quit
		}

		switch m.mode {
		case LoadingMode:
			return m, nil

		case LoginMode, RegisterMode:
			cmd = m.updateAuth(msg)
			return m, cmd

		case NormalMode:
			if handled, cmd := m.updateNormal(msg); handled {
				return m, cmd
			}

		case CreateMode, EditMode:
			cmd = m.updateTaskForm(msg)
			return m, cmd

		case DeleteConfirmMode:
			cmd = m.updateDeleteConfirm(msg)
			return m, cmd

		case FilterMode:
			cmd = m.updateFilter(msg)
			return m, cmd

		case HelpViewMode:
			switch {
			case msg.String() == "esc", key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.QuitApp):
				m.unsubscribe()
				return m, tea.Quit
			}
			return m, nil
		}
	}

	// Only update table in normal mode
	if m.mode == NormalMode {
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) resizeTable() {
	fixed := 0
	for i, c := range m.columns {
		if i != 1 {
			fixed += c.Width
		}
	}
	// Title absorbs whatever the other columns leave, plus cell padding
	if title := m.width - fixed - 2*len(m.columns) - 4; title > 16 {
		m.columns[1].Width = title
		m.table.SetColumns(m.columns)
	}
	m.table.SetWidth(m.width - 4)
	if h := m.height - 10; h > 3 {
		m.table.SetHeight(h)
	}
}

func (m *Model) onSessionResolved(state auth.State) tea.Cmd {
	utils.Log("Session resolved: %s", state)
	if state == auth.Authenticated {
		if m.mode == LoadingMode || m.mode == LoginMode || m.mode == RegisterMode {
			m.mode = NormalMode
		}
		return m.applyFilter()
	}

	wasInside := m.mode != LoadingMode && m.mode != LoginMode && m.mode != RegisterMode
	m.toLogin()
	if wasInside {
		return m.setFlash("Session expired, please log in again", true)
	}
	return nil
}

// onSessionRechecked only acts when the credential is gone. A rejected request with a
// still valid session leaves the error on screen and issues nothing further.
func (m *Model) onSessionRechecked(state auth.State) tea.Cmd {
	if state == auth.Authenticated {
		utils.Log("Credential still accepted by the profile endpoint, not refetching")
		return nil
	}
	if m.mode == LoginMode || m.mode == RegisterMode {
		return nil
	}
	m.toLogin()
	return m.setFlash("Session expired, please log in again", true)
}

func (m *Model) onMutationDone(msg mutationDoneMsg) tea.Cmd {
	m.pending--
	m.saving = false

	if msg.err != nil {
		utils.Log("Mutation %s failed: %v", msg.op, msg.err)
		if m.mode == CreateMode || m.mode == EditMode {
			m.formErr = msg.err
		}
		cmds := []tea.Cmd{m.setFlash(failureText(msg.op, msg.err), true)}
		if isUnauthorized(msg.err) && m.session.HasCredential() {
			cmds = append(cmds, recheckSession(m.ctx, m.session))
		}
		return tea.Batch(cmds...)
	}

	var text string
	switch msg.op {
	case tasks.OpCreate:
		text = "Task created successfully"
		if m.mode == CreateMode {
			m.closeTaskForm()
		}
	case tasks.OpUpdate:
		text = "Task updated successfully"
		if m.mode == EditMode && m.modals.Selected != nil && m.modals.Selected.ID == msg.task.ID {
			m.closeTaskForm()
		}
	case tasks.OpDelete:
		text = "Task deleted successfully"
	}
	return m.setFlash(text, false)
}

// updateNormal handles list keys; handled is false when the table should see the key
func (m *Model) updateNormal(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.QuitApp):
		m.unsubscribe()
		return true, tea.Quit

	case key.Matches(msg, m.keyMap.AddTask):
		m.modals.OpenCreate()
		m.mode = CreateMode
		m.resetInputs()

	case key.Matches(msg, m.keyMap.EditTask):
		task := m.selectedTask()
		if task == nil {
			return true, nil
		}
		m.modals.OpenUpdate(*task)
		m.mode = EditMode
		m.populateForm(*m.modals.Selected)

	case key.Matches(msg, m.keyMap.DeleteTask):
		task := m.selectedTask()
		if task == nil {
			return true, nil
		}
		m.deleting = task
		m.mode = DeleteConfirmMode

	case key.Matches(msg, m.keyMap.AdvanceStatus):
		task := m.selectedTask()
		if task == nil {
			return true, nil
		}
		fields := task.Fields()
		fields.Status = fields.Status.Next()
		m.pending++
		return true, updateTask(m.ctx, m.mutations, task.ID, fields)

	case key.Matches(msg, m.keyMap.FilterTasks):
		m.filterDraft = m.filter
		m.filterInput.SetValue(m.filter.DeadlineBefore.String())
		m.filterInput.Focus()
		m.formErr = nil
		m.mode = FilterMode

	case key.Matches(msg, m.keyMap.CycleFilterStatus):
		m.filter.CycleStatus()
		return true, m.applyFilter()

	case key.Matches(msg, m.keyMap.ClearFilter):
		m.filter.Clear()
		return true, m.applyFilter()

	case key.Matches(msg, m.keyMap.Refresh):
		return true, fetchTasks(m.ctx, m.list, m.list.Refetch())

	case key.Matches(msg, m.keyMap.Logout):
		if err := m.session.Logout(); err != nil {
			utils.Log("Error clearing credential: %v", err)
		}
		m.toLogin()
		return true, m.setFlash("Logged out", false)

	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) updateTaskForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeTaskForm()
		return nil

	case "tab", "down":
		m.focusNextInput()
		return nil

	case "shift+tab", "up":
		m.focusPreviousInput()
		return nil

	case "enter":
		if m.activeInput == fieldDeadline {
			return m.submitForm()
		}
		m.focusNextInput()
		return nil
	}

	if m.activeInput == fieldStatus {
		switch msg.String() {
		case "left", "h":
			m.formStatus = m.formStatus.Prev()
		case "right", "l", " ":
			m.formStatus = m.formStatus.Next()
		}
		return nil
	}

	var cmd tea.Cmd
	switch m.activeInput {
	case fieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case fieldDesc:
		m.descInput, cmd = m.descInput.Update(msg)
	case fieldDeadline:
		m.deadlineInput, cmd = m.deadlineInput.Update(msg)
	}
	return cmd
}

func (m *Model) updateDeleteConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		task := m.deleting
		m.deleting = nil
		m.mode = NormalMode
		if task == nil {
			return nil
		}
		utils.Log("Deleting task ID: %d", task.ID)
		m.pending++
		return deleteTask(m.ctx, m.mutations, task.ID)

	case "n", "N", "esc":
		m.deleting = nil
		m.mode = NormalMode
	}
	return nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.filterInput.Blur()
		m.formErr = nil
		m.mode = NormalMode
		return nil

	case "tab":
		m.filterDraft.CycleStatus()
		return nil

	case "shift+tab":
		// Three steps forward around the four-value cycle is one step back
		for i := 0; i < 3; i++ {
			m.filterDraft.CycleStatus()
		}
		return nil

	case "enter":
		if err := m.filterDraft.SetDeadline(m.filterInput.Value()); err != nil {
			m.formErr = err
			return nil
		}
		m.filter = m.filterDraft
		m.filterInput.Blur()
		m.formErr = nil
		m.mode = NormalMode
		utils.Log("Applying filter: %s", m.filter.ToFilter())
		return m.applyFilter()
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

func (m *Model) updateAuth(msg tea.KeyMsg) tea.Cmd {
	fields := len(m.authInputs())

	switch msg.String() {
	case "ctrl+r":
		if m.mode == LoginMode {
			m.toAuth(RegisterMode)
		} else {
			m.toAuth(LoginMode)
		}
		return nil

	case "esc":
		if m.mode == RegisterMode {
			m.toAuth(LoginMode)
		}
		return nil

	case "tab", "down":
		m.authField = (m.authField + 1) % fields
		m.focusAuthInput()
		return nil

	case "shift+tab", "up":
		m.authField = (m.authField - 1 + fields) % fields
		m.focusAuthInput()
		return nil

	case "enter":
		if m.authField < fields-1 {
			m.authField++
			m.focusAuthInput()
			return nil
		}
		return m.submitAuth()
	}

	in := m.authInputs()[m.authField]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}
