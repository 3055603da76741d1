package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/app"
	"github.com/quillhq/quill/pkg/client"
	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/tui/components/markdown"
	msgtypes "github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/types"
	"github.com/quillhq/quill/pkg/userconfig"
)

type echoRenderer struct{}

func (echoRenderer) Render(text string) (string, error) { return text, nil }

func newPageForTest(t *testing.T) *chatPage {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := &userconfig.Config{
		Model:     "test-model",
		APIKeyEnv: "QUILL_TEST_KEY",
		BaseURL:   "http://localhost:1",
	}
	c, err := client.New(cfg)
	require.NoError(t, err)

	store := session.NewInMemoryStore()
	sess := session.New()
	require.NoError(t, store.AddSession(t.Context(), sess))

	a := app.New(cfg, c, store, sess)
	guard := markdown.NewGuard(echoRenderer{})

	p := New(a, guard).(*chatPage)
	p.SetSize(100, 30)
	return p
}

func TestInitShowsWelcome(t *testing.T) {
	p := newPageForTest(t)
	p.Init()

	assert.Contains(t, p.messages.View(), "Welcome to quill")
}

func TestStreamDeltasAccumulate(t *testing.T) {
	p := newPageForTest(t)

	p.Update(msgtypes.StreamDeltaMsg{Delta: "Hello"})
	p.Update(msgtypes.StreamDeltaMsg{Delta: ", world"})

	assert.Equal(t, "Hello, world", p.LastAssistantMarkdown())
}

func TestStreamDoneStopsWorking(t *testing.T) {
	p := newPageForTest(t)
	p.setWorking(true)

	p.Update(msgtypes.StreamDeltaMsg{Delta: "done soon"})
	p.Update(msgtypes.StreamDoneMsg{Content: "done soon"})

	assert.False(t, p.Working())
}

func TestStreamErrorShowsErrorMessage(t *testing.T) {
	p := newPageForTest(t)
	p.setWorking(true)

	p.Update(msgtypes.StreamErrorMsg{Err: errors.New("backend unreachable")})

	assert.False(t, p.Working())
	assert.Contains(t, p.messages.PlainTextTranscript(), "backend unreachable")
}

func TestShellOutputRendersAsShellMessage(t *testing.T) {
	p := newPageForTest(t)
	p.setWorking(true)

	p.Update(msgtypes.ShellOutputMsg{Output: "$ ls\nmain.go"})

	assert.False(t, p.Working())
	assert.Contains(t, p.messages.PlainTextTranscript(), "Shell:\n$ ls\nmain.go")
}

func TestLoadSessionSkipsEmptyAssistantRows(t *testing.T) {
	p := newPageForTest(t)

	sess := session.New()
	sess.AddMessage(session.UserMessage("hi"))
	sess.AddMessage(session.AssistantMessage("")) // interrupted placeholder
	sess.AddMessage(session.AssistantMessage("hello"))

	p.LoadSession(sess)

	transcript := p.messages.PlainTextTranscript()
	assert.Contains(t, transcript, "User:\nhi")
	assert.Contains(t, transcript, "Assistant:\nhello")
	assert.Equal(t, "hello", p.messages.LastMessageContent(types.MessageTypeAssistant))
}

func TestLoadSessionHonorsHideReasoning(t *testing.T) {
	p := newPageForTest(t)
	p.app.Config().HideReasoning = true

	sess := session.New()
	sess.AddMessage(session.UserMessage("hi"))
	sess.AddMessage(session.Message{Role: session.MessageRoleReasoning, Content: "thinking it over"})
	sess.AddMessage(session.AssistantMessage("hello"))

	p.LoadSession(sess)

	transcript := p.messages.PlainTextTranscript()
	assert.NotContains(t, transcript, "thinking it over")
	assert.Contains(t, transcript, "Assistant:\nhello")
}

func TestStartNewSessionClearsTranscript(t *testing.T) {
	p := newPageForTest(t)

	p.Update(msgtypes.StreamDeltaMsg{Delta: "old content"})
	p.StartNewSession()

	assert.NotContains(t, p.messages.PlainTextTranscript(), "old content")
	assert.False(t, p.Working())
}
