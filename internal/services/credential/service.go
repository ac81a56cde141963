// Package credential manages the stored session token with change notifications.
package credential

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/cursor-dashboard-tui/internal/config"
	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
	"github.com/j-veylop/cursor-dashboard-tui/internal/settings"
)

// Event represents a credential service event.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of credential event.
type EventType int

const (
	// EventCredentialSet indicates a token was saved.
	EventCredentialSet EventType = iota
	// EventCredentialCleared indicates the token was removed.
	EventCredentialCleared
	// EventCredentialReloaded indicates the token changed on disk outside
	// this process.
	EventCredentialReloaded
	// EventError indicates a storage or watcher error.
	EventError
)

// Service owns the session token. It keeps an in-memory copy of the stored
// value and watches the settings database for external writes.
type Service struct {
	mu            sync.RWMutex
	store         *settings.Store
	token         string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a credential service backed by the given settings store and
// starts watching its file for external changes.
func New(store *settings.Store) (*Service, error) {
	s := &Service{
		store:     store,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	if err := s.startWatcher(); err != nil {
		return nil, err
	}

	return s, nil
}

// Events returns the event channel for subscribing to credential changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Token returns the stored session token, or "" when none is saved.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HasToken reports whether a session token is saved.
func (s *Service) HasToken() bool {
	return s.Token() != ""
}

// Set persists the token and updates the in-memory copy.
func (s *Service) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credential: token is empty")
	}

	if err := s.store.Set(config.SettingsKeySessionToken, token); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventCredentialSet})
	return nil
}

// Clear removes the stored token.
func (s *Service) Clear() error {
	if err := s.store.Delete(config.SettingsKeySessionToken); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventCredentialCleared})
	return nil
}

// load reads the token from the settings store into memory. A missing key
// simply means no credential is saved yet.
func (s *Service) load() error {
	value, err := s.store.Get(config.SettingsKeySessionToken)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			return err
		}
		// Key removed, treat as no credential
		value = ""
	}

	s.mu.Lock()
	s.token = value
	s.mu.Unlock()
	return nil
}

// startWatcher starts the file system watcher on the settings database.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory to catch WAL checkpoints replacing the file
	dir := filepath.Dir(s.store.Path())
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 250 * time.Millisecond

	base := filepath.Base(s.store.Path())

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about the settings database and its WAL
			name := filepath.Base(event.Name)
			if name != base && name != base+"-wal" {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the token after an external change and emits an
// event only when the value actually differs.
func (s *Service) handleFileChange() {
	s.mu.RLock()
	old := s.token
	s.mu.RUnlock()

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.RLock()
	changed := s.token != old
	s.mu.RUnlock()

	if changed {
		s.sendEvent(Event{Type: EventCredentialReloaded})
	}
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

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
