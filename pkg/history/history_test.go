package history

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := newAt(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return h
}

func TestAddDeduplicates(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t)
	require.NoError(t, h.Add("first"))
	require.NoError(t, h.Add("second"))
	require.NoError(t, h.Add("first"))

	assert.Equal(t, []string{"second", "first"}, h.Messages)
}

func TestPreviousNextNavigation(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t)
	require.NoError(t, h.Add("one"))
	require.NoError(t, h.Add("two"))
	require.NoError(t, h.Add("three"))

	assert.Equal(t, "three", h.Previous())
	assert.Equal(t, "two", h.Previous())
	assert.Equal(t, "one", h.Previous())
	assert.Equal(t, "one", h.Previous(), "stays at oldest")

	assert.Equal(t, "two", h.Next())
	assert.Equal(t, "three", h.Next())
	assert.Equal(t, "", h.Next(), "past newest returns empty")
}

func TestHistoryPersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	h, err := newAt(path)
	require.NoError(t, err)
	require.NoError(t, h.Add("remember me"))

	reloaded, err := newAt(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"remember me"}, reloaded.Messages)
	assert.Equal(t, "remember me", reloaded.Previous())
}

func TestHistoryCapsEntries(t *testing.T) {
	t.Parallel()

	h := newTestHistory(t)
	for i := range maxEntries + 10 {
		require.NoError(t, h.Add("entry "+strconv.Itoa(i)))
	}
	assert.Len(t, h.Messages, maxEntries)
	assert.Equal(t, "entry "+strconv.Itoa(maxEntries+9), h.Messages[len(h.Messages)-1])
}
