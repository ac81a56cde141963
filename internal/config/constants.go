// Package config contains everything related to configuration
package config

const (
	// DefaultBaseURL is the Cursor web API host all endpoints live under.
	DefaultBaseURL = "https://cursor.com"

	// DefaultUserAgent mirrors a desktop browser; the dashboard endpoints
	// reject obviously non-browser clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

	// SessionCookieName is the cookie the Cursor API expects the session
	// token under.
	SessionCookieName = "WorkosCursorSessionToken"

	// SettingsKeySessionToken is the settings-store key the credential is
	// persisted under.
	SettingsKeySessionToken = "session_token"
)
