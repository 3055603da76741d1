// Package app wires the backend pieces together and pumps stream events
// into the TUI program.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/quillhq/quill/pkg/client"
	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/userconfig"
)

// App owns the chat client, the session store and the currently open
// session. The TUI never touches the backend directly.
type App struct {
	cfg     *userconfig.Config
	client  *client.Client
	store   session.Store
	session *session.Session
	events  chan tea.Msg

	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// New creates an application around an existing session. The session must
// already be persisted in the store.
func New(cfg *userconfig.Config, c *client.Client, store session.Store, sess *session.Session) *App {
	return &App{
		cfg:     cfg,
		client:  c,
		store:   store,
		session: sess,
		events:  make(chan tea.Msg, 128),
	}
}

// Config returns the user configuration.
func (a *App) Config() *userconfig.Config {
	return a.cfg
}

// Session returns the currently open session.
func (a *App) Session() *session.Session {
	return a.session
}

// Store returns the session store.
func (a *App) Store() session.Store {
	return a.store
}

// Model returns the model identifier shown in the status bar.
func (a *App) Model() string {
	return a.client.Model()
}

// NewSession closes the current conversation and opens a fresh one.
func (a *App) NewSession(ctx context.Context) error {
	a.CancelStream()

	sess := session.New()
	if err := a.store.AddSession(ctx, sess); err != nil {
		return err
	}
	a.session = sess
	slog.Debug("New session opened", "session_id", sess.ID)
	return nil
}

// LoadSession replaces the current session with a stored one.
func (a *App) LoadSession(ctx context.Context, id string) (*session.Session, error) {
	a.CancelStream()

	sess, err := a.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	a.session = sess
	slog.Debug("Session loaded", "session_id", id, "messages", len(sess.Messages))
	return sess, nil
}

// DeleteSession removes a stored session. Deleting the open session leaves
// the in-memory conversation intact until a new one is started.
func (a *App) DeleteSession(ctx context.Context, id string) error {
	return a.store.DeleteSession(ctx, id)
}

// Run sends one prompt and streams the response. Deltas and terminal events
// arrive on the events channel consumed by Subscribe.
func (a *App) Run(ctx context.Context, prompt string) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancelFunc = cancel
	a.mu.Unlock()

	go func() {
		defer cancel()
		a.run(ctx, prompt)
	}()
}

// CancelStream aborts the in-flight response, if any.
func (a *App) CancelStream() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.cancelFunc = nil
	}
}

// Subscribe forwards backend events to the program until ctx is done.
func (a *App) Subscribe(ctx context.Context, program *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-a.events:
			if !ok {
				return
			}
			program.Send(msg)
		}
	}
}

func (a *App) run(ctx context.Context, prompt string) {
	// A "!" prefix runs the rest of the line in a local shell instead of
	// sending it to the model. The output stays out of the conversation
	// history.
	if strings.HasPrefix(prompt, "!") {
		out, _ := exec.CommandContext(ctx, "/bin/sh", "-c", prompt[1:]).CombinedOutput()
		a.events <- messages.ShellOutputMsg{Output: "$ " + prompt[1:] + "\n" + string(out)}
		return
	}

	sess := a.session

	if sess.Title == "" {
		sess.Title = session.TitleFromPrompt(prompt)
		if err := a.store.UpdateSessionTitle(ctx, sess.ID, sess.Title); err != nil {
			slog.Error("Failed to persist session title", "error", err)
		}
	}

	userMsg := session.UserMessage(prompt)
	if id, err := a.store.AddMessage(ctx, sess.ID, &userMsg); err != nil {
		slog.Error("Failed to persist user message", "error", err)
	} else {
		userMsg.ID = id
	}
	sess.AddMessage(userMsg)

	stream, err := a.client.StreamChat(ctx, sess.Messages)
	if err != nil {
		a.events <- messages.StreamErrorMsg{Err: err}
		return
	}
	defer stream.Close()

	// The assistant row is created up front so deltas have a stable ID to
	// finalize into.
	assistantMsg := session.AssistantMessage("")
	assistantID, err := a.store.AddMessage(ctx, sess.ID, &assistantMsg)
	if err != nil {
		slog.Error("Failed to persist assistant placeholder", "error", err)
	}

	a.events <- messages.StreamStartedMsg{}

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if err != nil {
			a.finishStream(sess, assistantID, sb.String(), err)
			return
		}
		sb.WriteString(delta)
		a.events <- messages.StreamDeltaMsg{Delta: delta}
	}
}

// finishStream persists whatever content arrived and emits the terminal
// event matching how the stream ended.
func (a *App) finishStream(sess *session.Session, assistantID int64, content string, err error) {
	// Finalization runs on a fresh context so a cancelled stream still gets
	// its partial content saved.
	ctx := context.Background()

	assistantMsg := session.AssistantMessage(content)
	assistantMsg.ID = assistantID
	if content != "" {
		sess.AddMessage(assistantMsg)
		if uerr := a.store.UpdateMessage(ctx, assistantID, &assistantMsg); uerr != nil {
			slog.Error("Failed to finalize assistant message", "error", uerr)
		}
	}

	switch {
	case errors.Is(err, io.EOF):
		slog.Debug("Stream complete", "session_id", sess.ID, "chars", len(content))
		a.events <- messages.StreamDoneMsg{Content: content}
	case errors.Is(err, context.Canceled):
		slog.Debug("Stream cancelled", "session_id", sess.ID)
		a.events <- messages.StreamCancelledMsg{}
	default:
		slog.Error("Stream failed", "error", err)
		a.events <- messages.StreamErrorMsg{Err: err}
	}
}
