// Package messages defines all TUI message types organized by domain.
package messages

// Session lifecycle messages control session state and persistence.
type (
	// NewSessionMsg requests creation of a new session.
	NewSessionMsg struct{}

	// OpenSessionBrowserMsg opens the session browser dialog.
	OpenSessionBrowserMsg struct{}

	// LoadSessionMsg loads a session by ID.
	LoadSessionMsg struct{ SessionID string }

	// DeleteSessionMsg deletes a session by ID.
	DeleteSessionMsg struct{ SessionID string }

	// SendMsg contains the prompt content sent to the backend.
	SendMsg struct{ Content string }

	// StreamCancelledMsg notifies components that the stream has been cancelled.
	StreamCancelledMsg struct{}
)

// ShellOutputMsg carries the output of a local shell command run with the
// "!" prompt prefix.
type ShellOutputMsg struct {
	Output string
}

// OpenURLMsg requests opening a URL in the default browser.
type OpenURLMsg struct {
	URL string
}
