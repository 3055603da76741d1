package types

// MessageType represents different types of messages
type MessageType int

const (
	MessageTypeUser MessageType = iota
	MessageTypeAssistant
	MessageTypeAssistantReasoning
	MessageTypeSpinner
	MessageTypeError
	MessageTypeSeparator
	MessageTypeWelcome
	MessageTypeShell
)

// Message represents a single message in the chat
type Message struct {
	Type    MessageType
	Content string
	// ItemID is the store row backing this message, zero until persisted
	ItemID int64
	// Streaming marks an assistant message that is still receiving deltas
	Streaming bool
}
