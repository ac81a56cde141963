// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/cursor-dashboard-tui/internal/config"
	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services/api"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services/credential"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services/usage"
	"github.com/j-veylop/cursor-dashboard-tui/internal/settings"
)

type (
	// CredentialChangedEvent is emitted when the session token is set,
	// cleared, or reloaded from disk.
	CredentialChangedEvent struct {
		HasToken bool
	}

	// SnapshotUpdatedEvent is emitted after a successful refresh.
	SnapshotUpdatedEvent struct {
		Snapshot     *models.UsageSnapshot
		Subscription *models.SubscriptionInfo
		DisplayName  string
	}

	// RefreshStartedEvent is emitted when a refresh cycle begins.
	RefreshStartedEvent struct{}

	// WarningEvent is emitted for non-fatal endpoint failures.
	WarningEvent struct {
		Message string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CredentialChangedEvent) isServiceEvent() {}
func (SnapshotUpdatedEvent) isServiceEvent()   {}
func (RefreshStartedEvent) isServiceEvent()    {}
func (WarningEvent) isServiceEvent()           {}
func (ErrorEvent) isServiceEvent()             {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	store       *settings.Store
	credential  *credential.Service
	usage       *usage.Service
	notify      func(title, body string) error
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	lastSeen    *models.UsageSnapshot
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		notify:   func(title, body string) error { return beeep.Notify(title, body, "") },
		stopChan: make(chan struct{}),
	}

	var err error
	m.store, err = settings.Open(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	m.credential, err = credential.New(m.store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential service: %w", err)
	}

	client := api.NewClient(m.credential, api.ClientConfig{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
	})
	m.usage = usage.New(m.credential, client, cfg.RefreshInterval)

	go m.routeEvents()

	return m, nil
}

// Start launches the automatic refresh loop and kicks off the first refresh
// when a credential is already saved.
func (m *Manager) Start() {
	m.usage.Start()
	if m.credential.HasToken() {
		m.Refresh()
	}
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.credential.Events():
			m.handleCredentialEvent(event)

		case event := <-m.usage.Events():
			m.handleUsageEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleCredentialEvent(event credential.Event) {
	switch event.Type {
	case credential.EventCredentialSet, credential.EventCredentialCleared:
		m.broadcast(CredentialChangedEvent{HasToken: m.credential.HasToken()})

	case credential.EventCredentialReloaded:
		m.broadcast(CredentialChangedEvent{HasToken: m.credential.HasToken()})
		// Token changed outside this process, refetch with the new one
		m.Refresh()

	case credential.EventError:
		m.broadcast(ErrorEvent{Service: "credential", Error: event.Error})
	}
}

func (m *Manager) handleUsageEvent(event usage.Event) {
	switch event.Type {
	case usage.EventRefreshStarted:
		m.broadcast(RefreshStartedEvent{})

	case usage.EventSnapshotUpdated:
		snapshot := m.usage.Snapshot()
		m.broadcast(SnapshotUpdatedEvent{
			Snapshot:     snapshot,
			Subscription: m.usage.Subscription(),
			DisplayName:  m.usage.DisplayName(),
		})
		if snapshot != nil {
			m.checkNotifications(snapshot)
		}

	case usage.EventWarning:
		m.broadcast(WarningEvent{Message: event.Warning})

	case usage.EventRefreshFailed:
		m.broadcast(ErrorEvent{Service: "usage", Error: event.Error})
	}
}

// spendNotifyPercent is the spend threshold that triggers a desktop
// notification when crossed upwards.
const spendNotifyPercent = 80.0

// checkNotifications fires desktop notifications on threshold crossings
// between consecutive snapshots.
func (m *Manager) checkNotifications(snapshot *models.UsageSnapshot) {
	m.mu.Lock()
	previous := m.lastSeen
	m.lastSeen = snapshot
	m.mu.Unlock()

	if previous == nil {
		return
	}

	// Premium quota exhausted
	if snapshot.OverLimit() && !previous.OverLimit() {
		if err := m.notify("Cursor: premium quota exhausted",
			"Premium requests are used up, further usage bills against your spend limit."); err != nil {
			logger.Warn("failed to send notification", "error", err)
		}
	}

	// Spend crossed the notify threshold
	newPercent := snapshot.SpendPercent()
	oldPercent := previous.SpendPercent()
	if newPercent >= spendNotifyPercent && oldPercent >= 0 && oldPercent < spendNotifyPercent {
		if err := m.notify("Cursor: spend limit approaching",
			fmt.Sprintf("Current spend is at %.0f%% of the hard limit.", newPercent)); err != nil {
			logger.Warn("failed to send notification", "error", err)
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Refresh triggers a refresh cycle in the background. A refresh already in
// flight makes this a no-op.
func (m *Manager) Refresh() {
	go func() {
		if err := m.usage.Refresh(context.Background()); err != nil {
			logger.Error("refresh failed", "error", err)
		}
	}()
}

// VerifyAndSaveCredential checks a candidate token against the identity
// endpoint and persists it only on success. Returns the account email the
// token belongs to.
func (m *Manager) VerifyAndSaveCredential(ctx context.Context, candidate string) (string, error) {
	email, err := m.usage.VerifyCredential(ctx, candidate)
	if err != nil {
		return "", err
	}
	if err := m.credential.Set(candidate); err != nil {
		return "", err
	}
	m.Refresh()
	return email, nil
}

// ClearCredential removes the stored session token.
func (m *Manager) ClearCredential() error {
	return m.credential.Clear()
}

// HasCredential reports whether a session token is saved.
func (m *Manager) HasCredential() bool {
	return m.credential.HasToken()
}

// Usage returns the usage service.
func (m *Manager) Usage() *usage.Service {
	return m.usage
}

// Credential returns the credential service.
func (m *Manager) Credential() *credential.Service {
	return m.credential
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.usage.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.credential.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
