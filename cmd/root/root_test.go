package root

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/session"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quill version")
	assert.Contains(t, out, "Commit:")
}

func TestSessionsListEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := executeCommand(t, "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")
}

func TestSessionsListShowsStoredSessions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := openStore()
	require.NoError(t, err)
	sess := session.New(session.WithTitle("weekend plans"))
	require.NoError(t, store.AddSession(t.Context(), sess))
	require.NoError(t, store.Close())

	out, err := executeCommand(t, "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "weekend plans")
	assert.Contains(t, out, sess.ID)
}

func TestSessionsDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := openStore()
	require.NoError(t, err)
	sess := session.New(session.WithTitle("short lived"))
	require.NoError(t, store.AddSession(t.Context(), sess))
	require.NoError(t, store.Close())

	out, err := executeCommand(t, "sessions", "delete", sess.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session")

	out, err = executeCommand(t, "sessions")
	require.NoError(t, err)
	assert.NotContains(t, out, "short lived")
}

func TestUnknownCommandFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := executeCommand(t, "definitely-not-a-command")
	assert.Error(t, err)
}
