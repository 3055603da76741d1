package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/history"
)

func newTestEditor(t *testing.T, entries ...string) *editor {
	t.Helper()
	hist := newHistory(t)
	for _, entry := range entries {
		require.NoError(t, hist.Add(entry))
	}
	e := New().(*editor)
	e.SetHistory(hist)
	return e
}

func newHistory(t *testing.T) *history.History {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	hist, err := history.New()
	require.NoError(t, err)
	return hist
}

func TestNavigateHistoryWalksBackward(t *testing.T) {
	e := newTestEditor(t, "first", "second")

	require.True(t, e.navigateHistory(navigatePrevious))
	assert.Equal(t, "second", e.textarea.Value())

	require.True(t, e.navigateHistory(navigatePrevious))
	assert.Equal(t, "first", e.textarea.Value())
}

func TestNavigateNextPastNewestRestoresDraft(t *testing.T) {
	e := newTestEditor(t, "older prompt")

	require.True(t, e.navigateHistory(navigatePrevious))
	assert.Equal(t, "older prompt", e.textarea.Value())

	require.True(t, e.navigateHistory(navigateNext))
	assert.Empty(t, e.textarea.Value(), "draft was empty before browsing")
	assert.False(t, e.historyBrowsing)
}

func TestHistoryBrowseSkippedWithTypedText(t *testing.T) {
	e := newTestEditor(t, "saved")
	e.textarea.SetValue("work in progress")

	assert.False(t, e.navigateHistory(navigatePrevious), "typed text keeps normal cursor movement")
	assert.Equal(t, "work in progress", e.textarea.Value())
}

func TestWorkingBlocksNothingButSend(t *testing.T) {
	e := newTestEditor(t)
	e.SetWorking(true)
	assert.True(t, e.working)
	e.SetWorking(false)
	assert.False(t, e.working)
}
