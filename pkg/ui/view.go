package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"taskdesk/pkg/tasks"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case LoadingMode:
		sb.WriteString(fmt.Sprintf("\n  %s Resolving session...\n", m.spinner.View()))
		return sb.String()

	case LoginMode:
		sb.WriteString(m.titleBar(" Log In ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderAuthForm([]string{"Username:", "Password:"}))

	case RegisterMode:
		sb.WriteString(m.titleBar(" Create Account ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderAuthForm([]string{"Name:", "Username:", "Password:"}))

	case NormalMode:
		sb.WriteString(m.renderList())

	case CreateMode:
		sb.WriteString(m.titleBar(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		title := " Edit Task "
		if m.modals.Selected != nil {
			title = fmt.Sprintf(" Edit Task #%d ", m.modals.Selected.ID)
		}
		sb.WriteString(m.titleBar(title, m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
		sb.WriteString("\n\n")

		if m.deleting != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.deleting.Title))
			sb.WriteString(fmt.Sprintf("Description: %s\n", m.deleting.Description))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case FilterMode:
		sb.WriteString(m.titleBar(" Filter Tasks ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Status:\n")
		sb.WriteString(m.selector(m.filterDraft.StatusLabel(), true))
		sb.WriteString("\n\n")
		sb.WriteString("Due on or before:\n")
		sb.WriteString(m.filterInput.View())
		sb.WriteString(m.renderFormErr())

	case HelpViewMode:
		sb.WriteString(m.renderHelp())
	}

	if m.flash.text != "" {
		color := m.styles.SuccessColor
		if m.flash.isErr {
			color = m.styles.ErrorColor
		}
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(m.flash.text))
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

func (m Model) renderList() string {
	var sb strings.Builder

	name := "My"
	if user := m.session.User(); user != nil {
		name = user.DisplayName()
	}
	header := fmt.Sprintf(" %s Tasks ", name)
	if m.busy() {
		header = fmt.Sprintf(" %s Tasks %s", name, m.spinner.View())
	}
	sb.WriteString(m.titleBar(header, m.styles.AccentColor))
	sb.WriteString("\n\n")

	if !m.list.Loaded() && m.list.Loading() {
		sb.WriteString(fmt.Sprintf("%s Loading tasks...\n", m.spinner.View()))
	} else {
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	// Display filter and count
	info := fmt.Sprintf("Showing %s • %d task(s)", m.list.Filter(), len(m.items))
	if claims, err := m.session.Claims(); err == nil {
		if exp := claims.Expiry(); !exp.IsZero() {
			info += fmt.Sprintf(" • session expires %s", exp.Local().Format("15:04"))
		}
	}
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor)).Render(info))
	sb.WriteString("\n")

	if task := m.selectedTask(); task != nil {
		sb.WriteString(m.renderDetail(*task))
	}

	if err := m.list.Err(); err != nil {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.styles.ErrorColor)).
			Render(fmt.Sprintf("Error: %v", err)))
	}

	return sb.String()
}

// renderDetail shows the full record of the selected task below the table
func (m Model) renderDetail(task tasks.Task) string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.statusColor(task.Status))).Bold(true)
	desc := task.Description
	if desc == "" {
		desc = "(no description)"
	}
	return fmt.Sprintf("%s %s\n%s\n",
		statusStyle.Render(string(task.Status)),
		lipgloss.NewStyle().Bold(true).Render(task.Title),
		desc)
}

func (m Model) statusColor(status tasks.Status) string {
	switch status {
	case tasks.StatusInProgress:
		return m.styles.InProgressColor
	case tasks.StatusDone:
		return m.styles.DoneColor
	default:
		return m.styles.ToDoColor
	}
}

// selector renders a left/right choice, highlighted when focused
func (m Model) selector(label string, focused bool) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.NormalTextColor))
	if focused {
		style = style.Foreground(lipgloss.Color(m.styles.AccentColor)).Bold(true)
	}
	return style.Render(fmt.Sprintf("< %s >", label))
}

func (m Model) renderFormErr() string {
	if m.formErr == nil {
		return ""
	}
	return "\n\n" + lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.ErrorColor)).
		Render(m.formErr.Error())
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString("Title:\n")
	sb.WriteString(m.titleInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Description:\n")
	sb.WriteString(m.descInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Status:\n")
	sb.WriteString(m.selector(string(m.formStatus), m.activeInput == fieldStatus))
	sb.WriteString("\n\n")

	sb.WriteString("Deadline (YYYY-MM-DD):\n")
	sb.WriteString(m.deadlineInput.View())

	if m.saving {
		sb.WriteString(fmt.Sprintf("\n\n%s Saving...", m.spinner.View()))
	}
	sb.WriteString(m.renderFormErr())

	return sb.String()
}

func (m Model) renderAuthForm(labels []string) string {
	var sb strings.Builder

	for i, in := range m.authInputs() {
		sb.WriteString(labels[i])
		sb.WriteString("\n")
		sb.WriteString(in.View())
		sb.WriteString("\n\n")
	}

	if m.authBusy {
		sb.WriteString(fmt.Sprintf("%s Please wait...", m.spinner.View()))
	}
	sb.WriteString(m.renderFormErr())

	return sb.String()
}

func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
	sb.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))

	addCommand := func(binding key.Binding) {
		sb.WriteString(fmt.Sprintf("%s: %s\n",
			descStyle.Render(binding.Help().Desc),
			keyStyle.Render(binding.Help().Key)))
	}

	addCommand(m.keyMap.QuitApp)
	addCommand(m.keyMap.ShowHelp)
	addCommand(m.keyMap.AddTask)
	addCommand(m.keyMap.EditTask)
	addCommand(m.keyMap.DeleteTask)
	addCommand(m.keyMap.AdvanceStatus)
	addCommand(m.keyMap.Refresh)
	addCommand(m.keyMap.Logout)

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Filter Commands"))
	sb.WriteString("\n\n")

	addCommand(m.keyMap.FilterTasks)
	addCommand(m.keyMap.CycleFilterStatus)
	addCommand(m.keyMap.ClearFilter)

	return sb.String()
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case LoginMode:
		addAction("tab", "next field")
		addAction("enter", "log in")
		addAction("ctrl+r", "register")
		addAction("ctrl+c", "quit")

	case RegisterMode:
		addAction("tab", "next field")
		addAction("enter", "register")
		addAction("esc", "back to login")
		addAction("ctrl+c", "quit")

	case NormalMode:
		addBinding(m.keyMap.AddTask, "add")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.DeleteTask, "del")
		addBinding(m.keyMap.AdvanceStatus, "status")
		addBinding(m.keyMap.FilterTasks, "filter")
		addBinding(m.keyMap.CycleFilterStatus, "cycle status")
		addBinding(m.keyMap.Refresh, "refresh")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case CreateMode, EditMode:
		addAction("tab", "next field")
		addAction("←/→", "status")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case FilterMode:
		addAction("tab/shift+tab", "status")
		addAction("enter", "apply")
		addAction("esc", "cancel")

	case HelpViewMode:
		addBinding(m.keyMap.ShowHelp, "back")
		addAction("esc", "back")
		addBinding(m.keyMap.QuitApp, "quit")
	}

	return strings.Join(actions, separator)
}
