package message

import (
	"errors"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/types"
)

type stubRenderer struct {
	out string
	err error
}

func (s stubRenderer) Render(string) (string, error) {
	return s.out, s.err
}

func TestRenderAssistantUsesGuardView(t *testing.T) {
	t.Parallel()

	guard := markdown.NewGuard(stubRenderer{out: "rich output\n"})
	mv := New(guard, &types.Message{Type: types.MessageTypeAssistant, Content: "hello"})

	assert.Equal(t, "rich output", mv.Render(80))
	assert.Nil(t, mv.TakeDowngradeCmd())
}

func TestRenderEmptyAssistantShowsSpinner(t *testing.T) {
	t.Parallel()

	guard := markdown.NewGuard(stubRenderer{out: "unused"})
	mv := New(guard, &types.Message{Type: types.MessageTypeAssistant})

	assert.NotEmpty(t, mv.Render(80))
}

func TestDowngradeCmdEmittedOncePerMessage(t *testing.T) {
	t.Parallel()

	guard := markdown.NewGuard(stubRenderer{err: errors.New("engine crash")})
	mv := New(guard, &types.Message{Type: types.MessageTypeAssistant, Content: "bad content"})

	view := mv.Render(80)
	assert.Equal(t, "bad content", view, "falls back to plain text")

	cmd := mv.TakeDowngradeCmd()
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.RenderDowngradedMsg)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Reason)

	// Re-rendering the same failed content must not announce again.
	_ = mv.Render(80)
	assert.Nil(t, mv.TakeDowngradeCmd())
}

func TestRenderReasoningStripsAllEscapes(t *testing.T) {
	t.Parallel()

	// OSC 8 hyperlink escapes, not just SGR colors, must be removed before
	// the muted restyle.
	rich := "\x1b[1mThinking:\x1b[0m \x1b]8;;https://example.com\x1b\\docs\x1b]8;;\x1b\\"
	guard := markdown.NewGuard(stubRenderer{out: rich})
	mv := New(guard, &types.Message{Type: types.MessageTypeAssistantReasoning, Content: "x"})

	view := mv.Render(80)
	assert.NotContains(t, view, "\x1b]8")
	assert.Contains(t, ansi.Strip(view), "docs")
}

func TestRenderErrorMessage(t *testing.T) {
	t.Parallel()

	guard := markdown.NewGuard(stubRenderer{out: "unused"})
	mv := New(guard, &types.Message{Type: types.MessageTypeError, Content: "boom"})

	assert.Contains(t, mv.Render(80), "boom")
}

func TestHeightCountsLines(t *testing.T) {
	t.Parallel()

	guard := markdown.NewGuard(stubRenderer{out: "one\ntwo\nthree\n"})
	mv := New(guard, &types.Message{Type: types.MessageTypeAssistant, Content: "x"})

	assert.Equal(t, 3, mv.Height(80))
}

func TestRenderShellOutputBypassesMarkdown(t *testing.T) {
	t.Parallel()

	// A guard whose renderer always fails: shell output must not care,
	// since it never goes through the markdown pipeline.
	guard := markdown.NewGuard(stubRenderer{err: assert.AnError})
	mv := New(guard, &types.Message{
		Type:    types.MessageTypeShell,
		Content: "$ echo `hi`\n`hi`",
	})

	view := ansi.Strip(mv.Render(80))
	assert.Contains(t, view, "$ echo `hi`")
	assert.Contains(t, view, "`hi`")
}
