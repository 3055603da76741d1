package message

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/core/layout"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/styles"
	"github.com/quillhq/quill/pkg/tui/types"
)

// Model represents a view that can render a message
type Model interface {
	layout.Model
	layout.Sizeable
	SetMessage(msg *types.Message)

	// TakeDowngradeCmd returns a command announcing that the last render
	// fell back to plain text, or nil. The command is emitted at most once
	// per message so the state change lands on the next frame, after the
	// current view is drawn.
	TakeDowngradeCmd() tea.Cmd
}

// messageModel implements Model
type messageModel struct {
	message *types.Message
	guard   *markdown.Guard
	width   int
	height  int
	spinner spinner.Model

	pendingDowngrade string
	downgradeSent    bool
}

// New creates a new message view. All markdown goes through the shared guard.
func New(guard *markdown.Guard, msg *types.Message) *messageModel {
	return &messageModel{
		message: msg,
		guard:   guard,
		width:   80,
		height:  1,
		spinner: spinner.New(spinner.WithSpinner(spinner.Points)),
	}
}

// Init initializes the message view
func (mv *messageModel) Init() tea.Cmd {
	if mv.message.Type == types.MessageTypeSpinner {
		return mv.spinner.Tick
	}
	return nil
}

func (mv *messageModel) SetMessage(msg *types.Message) {
	mv.message = msg
}

// Update handles messages and updates the message view state
func (mv *messageModel) Update(msg tea.Msg) (layout.Model, tea.Cmd) {
	if mv.message.Type == types.MessageTypeSpinner {
		var cmd tea.Cmd
		mv.spinner, cmd = mv.spinner.Update(msg)
		return mv, cmd
	}

	return mv, nil
}

// View renders the message view
func (mv *messageModel) View() string {
	return mv.Render(mv.width)
}

// Render renders the message view content
func (mv *messageModel) Render(width int) string {
	msg := mv.message
	switch msg.Type {
	case types.MessageTypeSpinner:
		return mv.spinner.View()
	case types.MessageTypeUser:
		body := strings.TrimRight(mv.markdown(msg.Content), "\n\r\t ")
		return styles.UserMessageBorderStyle.Render(body)
	case types.MessageTypeAssistant, types.MessageTypeWelcome:
		if msg.Content == "" {
			return mv.spinner.View()
		}
		return strings.TrimRight(mv.markdown(msg.Content), "\n\r\t ")
	case types.MessageTypeAssistantReasoning:
		if msg.Content == "" {
			return mv.spinner.View()
		}
		rendered := strings.TrimRight(mv.markdown("Thinking: "+msg.Content), "\n\r\t ")
		// Strip ANSI from inner rendering so the muted style fully applies
		return styles.MutedStyle.Italic(true).Render(ansi.Strip(rendered))
	case types.MessageTypeSeparator:
		if width < 3 {
			return ""
		}
		return styles.SeparatorStyle.Render("•" + strings.Repeat("─", width-2) + "•")
	case types.MessageTypeError:
		return styles.ErrorStyle.Render("│ " + msg.Content)
	case types.MessageTypeShell:
		return highlightShell(msg.Content)
	default:
		return msg.Content
	}
}

// markdown renders content through the guard, which never fails: it returns
// either a rich view or a plain-text fallback.
func (mv *messageModel) markdown(content string) string {
	result := mv.guard.View(content)
	if result.Downgraded && !mv.downgradeSent {
		mv.pendingDowngrade = "renderer failure"
	}
	return result.View
}

// TakeDowngradeCmd implements Model.
func (mv *messageModel) TakeDowngradeCmd() tea.Cmd {
	if mv.pendingDowngrade == "" || mv.downgradeSent {
		return nil
	}
	mv.downgradeSent = true
	reason := mv.pendingDowngrade
	mv.pendingDowngrade = ""
	return core.CmdHandler(messages.RenderDowngradedMsg{Reason: reason})
}

// Height calculates the height needed for this message view
func (mv *messageModel) Height(width int) int {
	content := mv.Render(width)
	return strings.Count(content, "\n") + 1
}

// Message returns the underlying message
func (mv *messageModel) Message() *types.Message {
	return mv.message
}

// SetSize sets the dimensions of the message view
func (mv *messageModel) SetSize(width, height int) tea.Cmd {
	mv.width = width
	mv.height = height
	return nil
}

// GetSize returns the current dimensions
func (mv *messageModel) GetSize() (width, height int) {
	return mv.width, mv.height
}
