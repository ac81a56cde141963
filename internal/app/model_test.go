package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tab slots, got %d", len(model.tabs))
	}
	if model.state.HasCredential() {
		t.Error("nil manager should mean no credential")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 50

	newModel, _ := model.Update(TabSwitchMsg{Tab: TabSettings})
	m := newModel.(*Model)
	if m.activeTab != TabSettings {
		t.Errorf("ActiveTab = %v, want Settings", m.activeTab)
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if m.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", m.activeTab)
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != TabDashboard {
		t.Errorf("ActiveTab = %v, want wrap to Dashboard", m.activeTab)
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want wrap back to Info", m.activeTab)
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)

	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should schedule the next tick")
	}
}

func TestModel_Update_Notifications(t *testing.T) {
	model := NewModel(nil)

	model.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "saved", Duration: time.Minute})

	notifications := model.state.GetNotifications()
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}

	model.Update(RemoveNotificationMsg{ID: notifications[0].ID})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("notification not removed")
	}
}

func TestModel_ServiceEvents(t *testing.T) {
	model := NewModel(nil)

	model.Update(ServiceEventMsg{Event: services.CredentialChangedEvent{HasToken: true}})
	if !model.state.HasCredential() {
		t.Error("credential event not applied")
	}

	model.Update(ServiceEventMsg{Event: services.RefreshStartedEvent{}})
	if !model.state.IsRefreshing() {
		t.Error("refresh start not applied")
	}

	snapshot := &models.UsageSnapshot{}
	model.Update(ServiceEventMsg{Event: services.SnapshotUpdatedEvent{
		Snapshot:    snapshot,
		DisplayName: "dev@example.com",
	}})
	if model.state.IsRefreshing() {
		t.Error("refresh flag not cleared by snapshot")
	}
	if model.state.GetSnapshot() != snapshot {
		t.Error("snapshot event not applied")
	}

	_, cmd := model.Update(ServiceEventMsg{Event: services.ErrorEvent{
		Service: "usage",
		Error:   errors.New("request failed"),
	}})
	if model.state.GetLastError() == nil {
		t.Error("error event not recorded")
	}
	if cmd == nil {
		t.Error("error event should queue a toast")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	if !strings.Contains(view, "Dashboard") {
		t.Error("View should show the Dashboard tab name")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 24

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	if !strings.Contains(model.View(), "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if model.showHelp {
		t.Error("showHelp should be false after toggle")
	}

	model.showHelp = true
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}
}

// inputCapturerTab is a stub tab whose input always owns the keyboard.
type inputCapturerTab struct{ focused bool }

func (f *inputCapturerTab) Init() tea.Cmd                 { return nil }
func (f *inputCapturerTab) Update(tea.Msg) (Tab, tea.Cmd) { return f, nil }
func (f *inputCapturerTab) View() string                  { return "" }
func (f *inputCapturerTab) SetSize(int, int)              {}
func (f *inputCapturerTab) ShortHelp() []key.Binding      { return nil }
func (f *inputCapturerTab) InputFocused() bool            { return f.focused }

func TestModel_InputFocusedSwallowsGlobalKeys(t *testing.T) {
	model := NewModel(nil)
	tab := &inputCapturerTab{focused: true}
	model.SetTabs([]Tab{tab, nil, nil})

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if model.activeTab != TabDashboard {
		t.Error("tab switch should be ignored while an input is focused")
	}

	if cmd := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c should still quit while an input is focused")
	}

	tab.focused = false
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if model.activeTab != TabSettings {
		t.Error("tab switch should work once the input is released")
	}
}
