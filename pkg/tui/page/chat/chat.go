// Package chat implements the main conversation page: message list on top,
// prompt editor at the bottom.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quillhq/quill/pkg/app"
	"github.com/quillhq/quill/pkg/history"
	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/tui/components/editor"
	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/components/messages"
	"github.com/quillhq/quill/pkg/tui/components/spinner"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/core/layout"
	msgtypes "github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/styles"
	"github.com/quillhq/quill/pkg/tui/types"
)

const welcomeText = "**Welcome to quill.** Type a message and press enter to send it.\n\n" +
	"Prefix a line with `!` to run it in a local shell instead."

// Page represents the main chat page
type Page interface {
	layout.Model
	layout.Sizeable
	layout.Help

	// Working reports whether a response stream is in flight.
	Working() bool

	// LoadSession replaces the transcript with a stored conversation.
	LoadSession(sess *session.Session) tea.Cmd

	// StartNewSession clears the transcript for a fresh conversation.
	StartNewSession() tea.Cmd

	// LastAssistantMarkdown returns the raw markdown of the most recent
	// assistant message, for link extraction.
	LastAssistantMarkdown() string
}

// KeyMap defines key bindings for the chat page
type KeyMap struct {
	Cancel key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// chatPage implements Page
type chatPage struct {
	width, height int

	messages messages.Model
	editor   editor.Editor
	spinner  spinner.Spinner

	working bool
	keyMap  KeyMap

	app     *app.App
	history *history.History

	chatHeight  int
	inputHeight int
}

// New creates a new chat page. All markdown rendering flows through the
// shared guard.
func New(a *app.App, guard *markdown.Guard) Page {
	historyStore, err := history.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize prompt history: %v\n", err)
	}

	ed := editor.New()
	ed.SetHistory(historyStore)

	return &chatPage{
		messages: messages.New(guard),
		editor:   ed,
		spinner:  spinner.New(spinner.ModeBoth, styles.SpinnerStyle),
		keyMap:   defaultKeyMap(),
		app:      a,
		history:  historyStore,
	}
}

// Init initializes the chat page
func (p *chatPage) Init() tea.Cmd {
	cmds := []tea.Cmd{
		p.messages.Init(),
		p.editor.Init(),
		p.editor.Focus(),
	}

	if sess := p.app.Session(); sess != nil && len(sess.Messages) > 0 {
		cmds = append(cmds, p.LoadSession(sess))
	} else {
		cmds = append(cmds, p.messages.AddWelcomeMessage(welcomeText))
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the page state
func (p *chatPage) Update(msg tea.Msg) (layout.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmdSize := p.SetSize(msg.Width, msg.Height)

		chatModel, chatCmd := p.messages.Update(msg)
		p.messages = chatModel.(messages.Model)

		editorModel, editorCmd := p.editor.Update(msg)
		p.editor = editorModel.(editor.Editor)
		return p, tea.Batch(cmdSize, chatCmd, editorCmd)

	case tea.KeyPressMsg:
		if key.Matches(msg, p.keyMap.Cancel) && p.working {
			p.app.CancelStream()
			return p, nil
		}

	case msgtypes.SendMsg:
		return p, p.handleSend(msg.Content)

	case msgtypes.StreamStartedMsg:
		// The pending spinner is already on screen; nothing to do until
		// the first delta lands.
		return p, nil

	case msgtypes.StreamDeltaMsg:
		wasAtBottom := p.messages.IsAtBottom()
		cmd := p.messages.AppendToLastMessage(types.MessageTypeAssistant, msg.Delta)
		if wasAtBottom {
			cmd = tea.Batch(cmd, p.messages.ScrollToBottom())
		}
		return p, cmd

	case msgtypes.StreamDoneMsg:
		p.messages.RemoveSpinner()
		p.messages.FinalizeLastMessage(types.MessageTypeAssistant)
		return p, tea.Batch(p.setWorking(false), p.messages.ScrollToBottom())

	case msgtypes.StreamCancelledMsg:
		p.messages.RemoveSpinner()
		p.messages.FinalizeLastMessage(types.MessageTypeAssistant)
		cmd := p.messages.AddErrorMessage("Response cancelled")
		return p, tea.Batch(p.setWorking(false), cmd)

	case msgtypes.StreamErrorMsg:
		p.messages.RemoveSpinner()
		cmd := p.messages.AddErrorMessage(msg.Err.Error())
		return p, tea.Batch(p.setWorking(false), cmd)

	case msgtypes.ShellOutputMsg:
		cmd := p.messages.AddShellMessage(msg.Output)
		return p, tea.Batch(p.setWorking(false), cmd)

	case msgtypes.RenderDowngradedMsg:
		// A message body fell back to plain text. The degradation is
		// silent in the UI, only the debug log records it.
		slog.Warn("Markdown rendering degraded to plain text", "reason", msg.Reason)
		return p, nil
	}

	chatModel, chatCmd := p.messages.Update(msg)
	p.messages = chatModel.(messages.Model)

	editorModel, editorCmd := p.editor.Update(msg)
	p.editor = editorModel.(editor.Editor)

	var spinnerCmd tea.Cmd
	if p.working {
		var model layout.Model
		model, spinnerCmd = p.spinner.Update(msg)
		p.spinner = model.(spinner.Spinner)
	}

	return p, tea.Batch(chatCmd, editorCmd, spinnerCmd)
}

// handleSend dispatches a prompt to the backend and records it locally.
func (p *chatPage) handleSend(content string) tea.Cmd {
	if p.working {
		return nil
	}

	if p.history != nil {
		if err := p.history.Add(content); err != nil {
			slog.Debug("Failed to save prompt history", "error", err)
		}
	}

	cmds := []tea.Cmd{
		p.messages.AddUserMessage(content),
		p.messages.AddAssistantMessage(),
		p.setWorking(true),
		p.messages.ScrollToBottom(),
	}

	p.app.Run(context.Background(), content)

	return tea.Batch(cmds...)
}

func (p *chatPage) setWorking(working bool) tea.Cmd {
	p.working = working

	cmds := []tea.Cmd{p.editor.SetWorking(working)}
	if working {
		p.spinner = p.spinner.Reset()
		cmds = append(cmds, p.spinner.Init())
	}
	return tea.Batch(cmds...)
}

// Working reports whether a response stream is in flight.
func (p *chatPage) Working() bool {
	return p.working
}

// LoadSession replaces the transcript with a stored conversation.
func (p *chatPage) LoadSession(sess *session.Session) tea.Cmd {
	msgs := make([]types.Message, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		switch m.Role {
		case session.MessageRoleUser:
			msgs = append(msgs, types.Message{Type: types.MessageTypeUser, Content: m.Content, ItemID: m.ID})
		case session.MessageRoleAssistant:
			// Placeholder rows from interrupted streams carry no content.
			if m.Content == "" {
				continue
			}
			msgs = append(msgs, types.Message{Type: types.MessageTypeAssistant, Content: m.Content, ItemID: m.ID})
		case session.MessageRoleReasoning:
			if p.app.Config().HideReasoning {
				continue
			}
			msgs = append(msgs, types.Message{Type: types.MessageTypeAssistantReasoning, Content: m.Content, ItemID: m.ID})
		case session.MessageRoleError:
			msgs = append(msgs, types.Message{Type: types.MessageTypeError, Content: m.Content, ItemID: m.ID})
		}
	}
	return p.messages.SetMessages(msgs)
}

// StartNewSession clears the transcript for a fresh conversation.
func (p *chatPage) StartNewSession() tea.Cmd {
	return tea.Batch(
		p.messages.SetMessages(nil),
		p.messages.AddWelcomeMessage(welcomeText),
		p.setWorking(false),
	)
}

// LastAssistantMarkdown returns the raw markdown of the most recent
// assistant message.
func (p *chatPage) LastAssistantMarkdown() string {
	return p.messages.LastMessageContent(types.MessageTypeAssistant)
}

// View renders the chat page
func (p *chatPage) View() string {
	chatView := lipgloss.NewStyle().
		Width(p.width).
		Height(p.chatHeight).
		Render(p.messages.View())

	statusLine := ""
	if p.working {
		statusLine = p.spinner.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		chatView,
		statusLine,
		p.editor.View(),
	)
}

// SetSize sets the dimensions of the page
func (p *chatPage) SetSize(width, height int) tea.Cmd {
	p.width = width
	p.height = height

	// Editor body is 3 lines plus a line of top padding, plus one line for
	// the working indicator.
	p.inputHeight = 5
	p.chatHeight = max(1, height-p.inputHeight)

	return tea.Batch(
		p.messages.SetSize(width, p.chatHeight),
		p.editor.SetSize(width, 3),
	)
}

// GetSize returns the current dimensions
func (p *chatPage) GetSize() (width, height int) {
	return p.width, p.height
}

// Bindings returns key bindings for the page
func (p *chatPage) Bindings() []key.Binding {
	var bindings []key.Binding
	if p.working {
		bindings = append(bindings, p.keyMap.Cancel)
	}
	bindings = append(bindings, p.editor.Bindings()...)
	return bindings
}

// Help returns the help information
func (p *chatPage) Help() help.KeyMap {
	return core.NewSimpleHelp(p.Bindings())
}
