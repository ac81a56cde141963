// Package settings provides the credential management tab.
package settings

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-dashboard-tui/internal/app"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	Edit   key.Binding
	Submit key.Binding
	Cancel key.Binding
	Clear  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit token"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "verify & save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Clear: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "clear token"),
		),
	}
}

// Model represents the settings tab state. The token flow is paste, verify
// against the identity endpoint, save only on success.
type Model struct {
	state    *app.State
	commands *app.Commands
	input    textinput.Model
	spinner  components.LoadingSpinner
	keys     keyMap

	editing   bool
	verifying bool
	status    string
	statusErr bool

	width  int
	height int
}

// New creates a new settings model.
func New(state *app.State, commands *app.Commands) *Model {
	input := textinput.New()
	input.Placeholder = "paste your WorkosCursorSessionToken cookie value"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 0
	input.Width = 60

	return &Model{
		state:    state,
		commands: commands,
		input:    input,
		spinner:  components.NewSpinner("Verifying token..."),
		keys:     defaultKeyMap(),
	}
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// InputFocused reports whether the token field currently owns the keyboard.
func (m *Model) InputFocused() bool {
	return m.editing
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case app.TokenVerifiedMsg:
		m.verifying = false
		if msg.Error != nil {
			m.status = fmt.Sprintf("Verification failed: %v", msg.Error)
			m.statusErr = true
			cmds = append(cmds, m.commands.NotifyError("Token rejected"))
		} else {
			m.status = fmt.Sprintf("Token verified, signed in as %s", msg.Email)
			m.statusErr = false
			m.input.Reset()
			cmds = append(cmds, m.commands.NotifySuccess("Session token saved"))
		}

	case app.CredentialClearedMsg:
		if msg.Error != nil {
			m.status = fmt.Sprintf("Failed to clear token: %v", msg.Error)
			m.statusErr = true
		} else {
			m.status = "Session token cleared"
			m.statusErr = false
		}

	case spinner.TickMsg:
		if m.verifying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		// Cursor blink and other component messages while the field is open.
		if m.editing {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		switch {
		case key.Matches(msg, m.keys.Submit):
			token := m.input.Value()
			if token == "" {
				m.status = "Token is empty"
				m.statusErr = true
				return nil
			}
			m.editing = false
			m.input.Blur()
			m.verifying = true
			m.status = ""
			return tea.Batch(m.commands.VerifyToken(token), m.spinner.Tick())

		case key.Matches(msg, m.keys.Cancel):
			m.editing = false
			m.input.Blur()
			m.input.Reset()
			return nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		m.status = ""
		return m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		if m.state.HasCredential() {
			return m.commands.ClearCredential()
		}
	}
	return nil
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	inputWidth := width - 16
	if inputWidth < 30 {
		inputWidth = 30
	}
	if inputWidth > 80 {
		inputWidth = 80
	}
	m.input.Width = inputWidth
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Edit, m.keys.Clear}
}
