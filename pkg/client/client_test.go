package client

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/userconfig"
)

func TestNewRequiresAPIKeyForDefaultEndpoint(t *testing.T) {
	t.Setenv("QUILL_TEST_KEY", "")

	_, err := New(&userconfig.Config{Model: "gpt-4o-mini", APIKeyEnv: "QUILL_TEST_KEY"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewAllowsMissingKeyForLocalEndpoint(t *testing.T) {
	t.Setenv("QUILL_TEST_KEY", "")

	c, err := New(&userconfig.Config{
		Model:     "llama3",
		APIKeyEnv: "QUILL_TEST_KEY",
		BaseURL:   "http://localhost:11434/v1",
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3", c.Model())
}

// sseChunk formats a chat completion chunk the way the API streams them.
func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func newStreamingServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			_, _ = io.WriteString(w, sseChunk(chunk))
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStreamChatYieldsDeltas(t *testing.T) {
	server := newStreamingServer(t, "Hello", ", ", "world")

	c, err := New(&userconfig.Config{
		Model:     "test-model",
		APIKeyEnv: "QUILL_TEST_KEY",
		BaseURL:   server.URL,
	})
	require.NoError(t, err)

	stream, err := c.StreamChat(t.Context(), []session.Message{
		session.UserMessage("greet me"),
	})
	require.NoError(t, err)
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sb.WriteString(delta)
	}

	assert.Equal(t, "Hello, world", sb.String())
}

func TestStreamChatSkipsNonModelRoles(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)

	c, err := New(&userconfig.Config{
		Model:     "test-model",
		APIKeyEnv: "QUILL_TEST_KEY",
		BaseURL:   server.URL,
	})
	require.NoError(t, err)

	stream, err := c.StreamChat(t.Context(), []session.Message{
		session.UserMessage("hi"),
		{Role: session.MessageRoleError, Content: "rendering hiccup"},
		{Role: session.MessageRoleReasoning, Content: "thinking..."},
	})
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)

	assert.Contains(t, gotBody, "hi")
	assert.NotContains(t, gotBody, "rendering hiccup")
	assert.NotContains(t, gotBody, "thinking...")
}
