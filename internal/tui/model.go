// Package tui renders the receiving workflow in the terminal.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/tui/themes"
	"github.com/dockside/receiving/internal/workflow"
)

// Controller is the workflow the TUI drives.
type Controller interface {
	Handle(ctx context.Context, cmd workflow.Command) error
	Snapshot() workflow.Snapshot
}

// refreshMsg asks the model to re-read the controller's snapshot.
type refreshMsg struct{}

// handledMsg reports that a batch of commands finished.
type handledMsg struct {
	err error
}

// prompt is a one-line question whose answer becomes a command.
type prompt struct {
	submit func(value string) tea.Cmd
	label  string
	input  textinput.Model
}

// Model holds the TUI state. Everything about the workflow lives in the
// controller; the model only tracks cursors and text fields.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	readFile func(string) ([]byte, error)
	prompt   *prompt
	errText  string
	snap     workflow.Snapshot
	inputs   []textinput.Model
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	theme    themes.Theme
	keymap   KeyMap
	role     int
	active   bool
	focus    int
	cursor   int
	width    int
	height   int
	showHelp bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the color scheme.
func WithTheme(theme themes.Theme) Option {
	return func(m *Model) {
		m.theme = theme
	}
}

// WithFileReader overrides how photo and docket paths are read.
func WithFileReader(fn func(string) ([]byte, error)) Option {
	return func(m *Model) {
		m.readFile = fn
	}
}

// New creates the model for ctrl.
func New(ctx context.Context, ctrl Controller, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	prog := progress.New(progress.WithDefaultGradient())
	prog.ShowPercentage = true

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		readFile: os.ReadFile,
		keymap:   DefaultKeyMap(),
		theme:    themes.Default,
		help:     help.New(),
		spinner:  s,
		progress: prog,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.spinner.Style = m.theme.StatusInfo
	m.snap = ctrl.Snapshot()
	m.resetScreen()
	return m
}

// Init restores any existing session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run(workflow.Start{}))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(40, max(10, msg.Width-20))
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, nil

	case handledMsg:
		m.errText = ""
		if msg.err != nil && m.ctrl.Snapshot().Status.Text == "" {
			m.errText = common.UserMessage(msg.err, msg.err.Error())
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh re-reads the snapshot, resetting cursors and fields when the
// screen changed underneath.
func (m *Model) refresh() {
	prev := m.snap
	m.snap = m.ctrl.Snapshot()
	if prev.Screen != m.snap.Screen || formOpened(prev, m.snap) {
		m.resetScreen()
	}
	if n := m.listLen(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func formOpened(prev, next workflow.Snapshot) bool {
	return prev.Staffing.Form == nil && next.Staffing.Form != nil
}

// run executes cmds in order on a goroutine, stopping at the first error.
func (m Model) run(cmds ...workflow.Command) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		for _, cmd := range cmds {
			if err := ctrl.Handle(ctx, cmd); err != nil {
				return handledMsg{err: err}
			}
		}
		return handledMsg{}
	}
}

// runWithFile reads path and hands its bytes to build.
func (m Model) runWithFile(path string, build func([]byte) workflow.Command) tea.Cmd {
	ctx, ctrl, read := m.ctx, m.ctrl, m.readFile
	return func() tea.Msg {
		data, err := read(path)
		if err != nil {
			return handledMsg{err: common.NewUserError(fmt.Sprintf("Cannot read %s", path), err)}
		}
		return handledMsg{err: ctrl.Handle(ctx, build(data))}
	}
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// resetScreen sets up the text fields the current screen needs.
func (m *Model) resetScreen() {
	m.cursor = 0
	m.focus = 0
	m.prompt = nil
	m.inputs = nil

	switch m.snap.Screen {
	case workflow.ScreenLogin:
		password := newInput("Password", 128)
		password.EchoMode = textinput.EchoPassword
		m.inputs = []textinput.Model{newInput("Username", 64), password}
	case workflow.ScreenScan, workflow.ScreenLabels:
		m.inputs = []textinput.Model{newInput("PO number", 20)}
	case workflow.ScreenMystery:
		in := newInput("Supplier, slip, tracking or PO", 100)
		in.SetValue(m.snap.Mystery.Query)
		m.inputs = []textinput.Model{in}
	case workflow.ScreenStaffMgmt:
		if f := m.snap.Staffing.Form; f != nil {
			username := newInput("Username", 64)
			username.SetValue(f.Username)
			display := newInput("Display name", 100)
			display.SetValue(f.DisplayName)
			password := newInput("Password "+f.PasswordHint, 128)
			password.EchoMode = textinput.EchoPassword
			if f.Editing {
				m.inputs = []textinput.Model{display, password}
			} else {
				m.inputs = []textinput.Model{username, display, password}
			}
			m.role = roleIndex(f.AssignableRoles, f.Role)
			m.active = f.Active
		}
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// typing reports whether keys go to a text field.
func (m Model) typing() bool {
	return m.prompt != nil || len(m.inputs) > 0
}

func (m *Model) value(i int) string {
	if i < 0 || i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}

func (m *Model) nextField() {
	if len(m.inputs) == 0 {
		return
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// ask opens a prompt whose answer is passed to submit.
func (m *Model) ask(label, placeholder string, submit func(string) tea.Cmd) tea.Cmd {
	in := newInput(placeholder, 256)
	in.Focus()
	m.prompt = &prompt{label: label, input: in, submit: submit}
	return textinput.Blink
}

// listLen is how many rows the cursor moves over on this screen.
func (m Model) listLen() int {
	s := m.snap
	switch s.Screen {
	case workflow.ScreenHome:
		return len(m.menu())
	case workflow.ScreenVerify:
		return len(s.Receive.Items)
	case workflow.ScreenStorage, workflow.ScreenStock, workflow.ScreenRelocateSource, workflow.ScreenRelocateDest:
		return len(s.Locations)
	case workflow.ScreenRelocateItems:
		return len(s.Relocate.Items)
	case workflow.ScreenStaffMgmt:
		return len(s.Staffing.Members)
	}
	return 0
}

func (m *Model) move(delta int) {
	n := m.listLen()
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

type menuEntry struct {
	command workflow.Command
	label   string
}

// menu is the home screen's options for the signed-in role.
func (m Model) menu() []menuEntry {
	entries := []menuEntry{
		{label: "Receive delivery", command: workflow.OpenReceive{}},
		{label: "Browse stock", command: workflow.OpenStock{}},
		{label: "Relocate stock", command: workflow.OpenRelocate{}},
		{label: fmt.Sprintf("Pick list (%d)", m.snap.Home.PickListCount), command: workflow.OpenPickList{}},
		{label: "Reprint labels", command: workflow.OpenLabels{}},
		{label: "Mystery box search", command: workflow.OpenMystery{}},
		{label: "Allocation logs", command: workflow.OpenLogs{}},
	}
	if m.snap.ShowManagerOptions {
		entries = append(entries, menuEntry{label: "Staff management", command: workflow.OpenStaff{}})
	}
	return append(entries, menuEntry{label: "Log out", command: workflow.Logout{}})
}
