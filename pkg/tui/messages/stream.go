package messages

// Streaming messages carry backend deltas into the update loop.
type (
	// StreamStartedMsg marks the beginning of an assistant response.
	StreamStartedMsg struct{}

	// StreamDeltaMsg carries one text delta of the assistant response.
	StreamDeltaMsg struct{ Delta string }

	// StreamDoneMsg marks the end of the assistant response.
	StreamDoneMsg struct{ Content string }

	// StreamErrorMsg reports a failed stream.
	StreamErrorMsg struct{ Err error }
)

// RenderDowngradedMsg notifies the app that a message body could not be
// rendered as markdown and fell back to plain text. Components emit it after
// the current view is drawn, never during it.
type RenderDowngradedMsg struct {
	// Reason is a short human-readable cause, used for logging.
	Reason string
}
