// Package session holds conversation state and its persistence.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who produced a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleReasoning MessageRole = "reasoning"
	MessageRoleError     MessageRole = "error"
)

// Session represents a conversation: its metadata and message history.
type Session struct {
	// ID is the unique identifier for the session
	ID string `json:"id"`

	// Title is a short human-readable label, derived from the first prompt
	Title string `json:"title"`

	// Messages holds the conversation history
	Messages []Message `json:"messages"`

	// CreatedAt is the time the session was created
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single entry in the conversation history.
type Message struct {
	// ID is assigned by the store when the message is persisted
	ID        int64       `json:"id,omitempty"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func UserMessage(content string) Message {
	return Message{
		Role:      MessageRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func AssistantMessage(content string) Message {
	return Message{
		Role:      MessageRoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

type Opt func(s *Session)

func WithTitle(title string) Opt {
	return func(s *Session) {
		s.Title = title
	}
}

// New creates a new session with a fresh ID.
func New(opts ...Opt) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Messages:  make([]Message, 0),
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AddMessage appends a message to the in-memory history.
func (s *Session) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// titleMaxLen bounds titles derived from prompts.
const titleMaxLen = 60

// TitleFromPrompt derives a session title from the first user prompt: the
// first line, trimmed and truncated.
func TitleFromPrompt(prompt string) string {
	line := prompt
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > titleMaxLen {
		line = strings.TrimSpace(line[:titleMaxLen]) + "…"
	}
	return line
}
