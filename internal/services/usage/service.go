// Package usage owns the reconciled usage snapshot and its refresh cycle.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services/api"
)

// DefaultRefreshInterval is how often the poller refreshes automatically.
const DefaultRefreshInterval = 30 * time.Minute

// CredentialSource reports the stored session token. Empty means none.
type CredentialSource interface {
	Token() string
}

// Event represents a usage service event.
type Event struct {
	Type    EventType
	Error   error
	Warning string
}

// EventType defines the type of usage event.
type EventType int

const (
	// EventRefreshStarted indicates a refresh cycle began.
	EventRefreshStarted EventType = iota
	// EventSnapshotUpdated indicates a refresh completed and the snapshot
	// changed.
	EventSnapshotUpdated
	// EventRefreshFailed indicates a refresh aborted with a fatal error.
	EventRefreshFailed
	// EventWarning indicates a non-fatal endpoint failure during a refresh.
	EventWarning
)

// Service polls the Cursor API and reconciles the responses into a single
// snapshot. It exclusively owns the snapshot, the last error, and the
// last-updated timestamp.
type Service struct {
	mu     sync.RWMutex
	client *api.Client
	creds  CredentialSource

	snapshot     *models.UsageSnapshot
	subscription *models.SubscriptionInfo
	displayName  string
	lastUpdated  time.Time
	lastErr      error
	loading      bool

	history         *models.SessionHistory
	refreshInterval time.Duration
	eventChan       chan Event
	stopChan        chan struct{}
	now             func() time.Time
}

// New creates the usage service. The client must read its token from the
// same credential source.
func New(creds CredentialSource, client *api.Client, refreshInterval time.Duration) *Service {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	return &Service{
		client:          client,
		creds:           creds,
		history:         models.NewSessionHistory(0),
		refreshInterval: refreshInterval,
		eventChan:       make(chan Event, 100),
		stopChan:        make(chan struct{}),
		now:             time.Now,
	}
}

// Events returns the event channel for subscribing to usage updates.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Start launches the automatic refresh loop. The ticker fires every
// refresh interval regardless of manual refreshes in between.
func (s *Service) Start() {
	go s.pollLoop()
}

func (s *Service) pollLoop() {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if err := s.Refresh(ctx); err != nil {
				logger.Error("scheduled refresh failed", "error", err)
			}
			cancel()
		case <-s.stopChan:
			return
		}
	}
}

// Refresh runs one reconcile cycle. A call made while another refresh is in
// flight is a no-op; exactly one network sequence runs at a time. The five
// endpoint calls are strictly sequential.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	prior := s.snapshot.Clone()
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventRefreshStarted})

	result, err := s.reconcile(ctx, prior)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		if api.KindOf(err) == api.KindAuth {
			// The credential is bad; stale numbers would be misleading
			s.snapshot = nil
			s.subscription = nil
			s.displayName = ""
		}
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventRefreshFailed, Error: err})
		return err
	}

	s.lastErr = nil
	s.snapshot = result.snapshot
	s.subscription = result.subscription
	s.displayName = result.displayName
	s.lastUpdated = s.now()
	s.mu.Unlock()

	s.history.Add(models.SnapshotPoint{Time: s.now(), Snapshot: result.snapshot.Clone()})

	for _, warning := range result.warnings {
		s.sendEvent(Event{Type: EventWarning, Warning: warning})
	}
	s.sendEvent(Event{Type: EventSnapshotUpdated})
	return nil
}

// VerifyCredential checks a candidate token against the identity endpoint
// without touching the stored credential. Returns the account email on
// success.
func (s *Service) VerifyCredential(ctx context.Context, candidate string) (string, error) {
	identity, err := s.client.WithToken(candidate).CheckIdentity(ctx)
	if err != nil {
		return "", err
	}
	return identity.Email, nil
}

// Snapshot returns a copy of the current snapshot, or nil when none exists.
func (s *Service) Snapshot() *models.UsageSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Subscription returns the most recent subscription info, or nil.
func (s *Service) Subscription() *models.SubscriptionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.subscription == nil {
		return nil
	}
	clone := *s.subscription
	return &clone
}

// DisplayName returns the account email from the last successful refresh.
func (s *Service) DisplayName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName
}

// LastUpdated returns when the last successful refresh completed.
func (s *Service) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// LastError returns the most recent fatal refresh error, or nil after a
// successful refresh.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsLoading reports whether a refresh is in flight.
func (s *Service) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// History returns the session-local snapshot series.
func (s *Service) History() *models.SessionHistory {
	return s.history
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the poll loop. An in-flight refresh completes but its result
// is no longer observed by anyone.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}
