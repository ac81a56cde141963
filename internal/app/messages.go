package app

import (
	"time"

	"github.com/j-veylop/cursor-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to trigger state housekeeping.
type TickMsg struct {
	Time time.Time
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// RefreshMsg requests a refresh of usage data.
type RefreshMsg struct{}

// VerifyTokenMsg requests verification of a candidate session token.
type VerifyTokenMsg struct {
	Token string
}

// TokenVerifiedMsg contains the result of a token verification attempt.
type TokenVerifiedMsg struct {
	Email string
	Error error
}

// CredentialClearedMsg contains the result of clearing the credential.
type CredentialClearedMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
