package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFileWritesThrough(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quill.debug.log")
	f, err := NewRotatingFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("hello\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRotatingFileRotatesAtLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quill.debug.log")
	f, err := NewRotatingFile(path, WithMaxSize(10), WithMaxBackups(2))
	require.NoError(t, err)
	defer f.Close()

	line := strings.Repeat("x", 8) + "\n"
	_, err = f.Write([]byte(line))
	require.NoError(t, err)
	_, err = f.Write([]byte(line))
	require.NoError(t, err)

	// The second write exceeded the limit, so the first landed in .1.
	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, line, string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, line, string(current))
}
