// Package client wraps the OpenAI-compatible chat completions API used by
// the quill backend. The TUI treats it as a source of text deltas.
package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/userconfig"
)

// ErrMissingAPIKey is returned when the configured API key environment
// variable is unset and the endpoint is not a local one.
var ErrMissingAPIKey = errors.New("API key environment variable is not set")

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	client openai.Client
	model  string
}

// New creates a client from the user configuration. The API key is read from
// the environment variable named in the config; a missing key is allowed when
// a custom base URL is set, since local runtimes don't require auth.
func New(cfg *userconfig.Config) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" && cfg.BaseURL == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Debug("Chat client created", "model", cfg.Model, "base_url", cfg.BaseURL)

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Model returns the model identifier sent with requests.
func (c *Client) Model() string {
	return c.model
}

// StreamChat starts a streaming completion for the given conversation
// history. The returned stream yields assistant text deltas.
func (c *Client) StreamChat(ctx context.Context, history []session.Message) (*Stream, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case session.MessageRoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case session.MessageRoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			// Reasoning and error entries are UI artifacts, not model input.
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	slog.Debug("Chat completion stream created", "model", c.model, "history", len(history))

	return &Stream{stream: stream}, nil
}

// Stream adapts the SSE chunk stream to a sequence of text deltas.
type Stream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

// Recv returns the next non-empty content delta. It returns io.EOF when the
// stream is exhausted.
func (s *Stream) Recv() (string, error) {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
	if err := s.stream.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	return s.stream.Close()
}
