package messages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/types"
)

type echoRenderer struct{}

func (echoRenderer) Render(text string) (string, error) {
	return text + "\n", nil
}

func newTestModel() *model {
	m := New(markdown.NewGuard(echoRenderer{})).(*model)
	m.SetSize(80, 24)
	return m
}

func TestAppendToLastMessageAccumulatesDeltas(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddAssistantMessage()
	m.AppendToLastMessage(types.MessageTypeAssistant, "Hello")
	m.AppendToLastMessage(types.MessageTypeAssistant, ", world")

	require.Len(t, m.messages, 1, "spinner replaced by streaming message")
	assert.Equal(t, "Hello, world", m.messages[0].Content)
	assert.Equal(t, "Hello, world", m.LastMessageContent(types.MessageTypeAssistant))
}

func TestAppendStartsNewMessageOnTypeChange(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("question")
	m.AppendToLastMessage(types.MessageTypeAssistant, "answer")

	require.Len(t, m.messages, 2)
	assert.Equal(t, types.MessageTypeUser, m.messages[0].Type)
	assert.Equal(t, types.MessageTypeAssistant, m.messages[1].Type)
}

func TestRemoveSpinnerOnlyDropsPendingSpinner(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("hi")
	m.AddAssistantMessage()
	require.Len(t, m.messages, 2)

	m.RemoveSpinner()
	require.Len(t, m.messages, 1)

	// Not a spinner anymore, must be a no-op.
	m.RemoveSpinner()
	assert.Len(t, m.messages, 1)
}

func TestViewShowsMessages(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("first question")
	m.AppendToLastMessage(types.MessageTypeAssistant, "the answer")

	view := m.View()
	assert.Contains(t, view, "first question")
	assert.Contains(t, view, "the answer")
}

func TestStreamingMessagesAreNotCached(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AppendToLastMessage(types.MessageTypeAssistant, "partial")
	_ = m.View()

	assert.False(t, m.shouldCacheMessage(0), "streaming content changes every delta")

	m.messages[0].Streaming = false
	assert.True(t, m.shouldCacheMessage(0))
}

func TestSetSizeInvalidatesRenderCache(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("hello")
	_ = m.View()
	require.NotEmpty(t, m.renderedItems)

	m.SetSize(40, 10)
	assert.Empty(t, m.renderedItems)
}

func TestPlainTextTranscript(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("what is Go?")
	m.AppendToLastMessage(types.MessageTypeAssistant, "a language")
	m.AddErrorMessage("stream interrupted")

	transcript := m.PlainTextTranscript()
	assert.Contains(t, transcript, "User:\nwhat is Go?")
	assert.Contains(t, transcript, "Assistant:\na language")
	assert.Contains(t, transcript, "Error:\nstream interrupted")
}

func TestSetMessagesReplacesTranscript(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddUserMessage("old")

	m.SetMessages([]types.Message{
		{Type: types.MessageTypeUser, Content: "restored question"},
		{Type: types.MessageTypeAssistant, Content: "restored answer"},
	})

	require.Len(t, m.messages, 2)
	view := m.View()
	assert.NotContains(t, view, "old")
	assert.Contains(t, view, "restored question")
}

func TestAddShellMessage(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AddAssistantMessage()
	m.AddShellMessage("$ ls\nmain.go")

	require.Len(t, m.messages, 1, "pending spinner replaced by shell output")
	assert.Equal(t, types.MessageTypeShell, m.messages[0].Type)
	assert.Contains(t, m.PlainTextTranscript(), "Shell:\n$ ls\nmain.go")
}

func TestFinalizeLastMessageStopsStreaming(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.AppendToLastMessage(types.MessageTypeAssistant, "partial")
	require.True(t, m.messages[0].Streaming)

	m.FinalizeLastMessage(types.MessageTypeAssistant)
	assert.False(t, m.messages[0].Streaming)
	assert.True(t, m.shouldCacheMessage(0))
}

func TestIsAtBottomTracksScroll(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.SetSize(80, 2)
	for range 10 {
		m.AddUserMessage(strings.Repeat("line\n", 2))
	}
	_ = m.View()

	m.scrollOffset = 0
	assert.False(t, m.IsAtBottom())

	m.scrollToBottom()
	_ = m.View()
	assert.True(t, m.IsAtBottom())
}
