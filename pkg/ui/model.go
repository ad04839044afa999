package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdesk/pkg/auth"
	"taskdesk/pkg/config"
	"taskdesk/pkg/keymaps"
	"taskdesk/pkg/query"
	"taskdesk/pkg/tasks"
)

// InputMode represents the current input mode
type InputMode int

const (
	LoadingMode InputMode = iota // Session is being resolved
	LoginMode
	RegisterMode
	NormalMode
	CreateMode
	EditMode
	DeleteConfirmMode
	FilterMode
	HelpViewMode
)

// Task form fields, in focus order
const (
	fieldTitle = iota
	fieldDesc
	fieldStatus
	fieldDeadline
	taskFieldCount
)

// Deps are the long-lived objects the UI drives
type Deps struct {
	Session   *auth.Session
	Tasks     *query.TaskList
	Mutations *query.TaskMutations
}

type flash struct {
	id    int
	text  string
	isErr bool
}

// Model represents the application state
type Model struct {
	ctx       context.Context
	session   *auth.Session
	list      *query.TaskList
	mutations *query.TaskMutations

	table         table.Model
	columns       []table.Column
	items         []tasks.Task
	spinner       spinner.Model
	width, height int

	// Configuration
	config config.Config
	styles config.Styles
	keyMap keymaps.KeyMap

	mode    InputMode
	modals  Modals
	filter  FilterState
	pending int
	flash   flash
	formErr error

	// Task form state
	titleInput    textinput.Model
	descInput     textinput.Model
	deadlineInput textinput.Model
	formStatus    tasks.Status
	activeInput   int
	saving        bool

	// Login/register form state
	nameInput     textinput.Model
	usernameInput textinput.Model
	passwordInput textinput.Model
	authField     int
	authBusy      bool

	// Filter form state
	filterDraft FilterState
	filterInput textinput.Model

	// Delete state
	deleting *tasks.Task

	invalidated <-chan struct{}
	unsubscribe func()
}

// NewModel creates a new UI model with the provided configuration
func NewModel(ctx context.Context, deps Deps, cfg config.Config, styles config.Styles) Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: 32},
		{Title: "Status", Width: 12},
		{Title: "Deadline", Width: 12},
		{Title: "Created", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.BorderColor)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.AccentColor))

	m := Model{
		ctx:           ctx,
		session:       deps.Session,
		list:          deps.Tasks,
		mutations:     deps.Mutations,
		table:         t,
		columns:       columns,
		spinner:       sp,
		config:        cfg,
		styles:        styles,
		keyMap:        keymaps.BuildKeyMap(cfg.KeyMap),
		mode:          LoadingMode,
		titleInput:    newInput("Title (required)"),
		descInput:     newInput("Description"),
		deadlineInput: newInput("Deadline (YYYY-MM-DD, optional)"),
		formStatus:    tasks.StatusToDo,
		nameInput:     newInput("Display name"),
		usernameInput: newInput("Username"),
		passwordInput: newInput("Password"),
		filterInput:   newInput("Due on or before (YYYY-MM-DD, blank for any)"),
	}
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.EchoCharacter = '•'

	m.invalidated, m.unsubscribe = m.list.Invalidated()

	return m
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 40
	return in
}

// Init resolves the session and starts listening for task invalidations
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		resolveSession(m.ctx, m.session),
		waitForInvalidation(m.invalidated),
	)
}

// Mode reports the current input mode
func (m Model) Mode() InputMode {
	return m.mode
}

// busy is true while anything the user waits on is in flight
func (m Model) busy() bool {
	return m.session.Loading() || m.list.Loading() || m.pending > 0
}
