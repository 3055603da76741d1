package editor

import (
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/quillhq/quill/pkg/history"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/core/layout"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/styles"
)

// historyNavigation describes which direction we want to pull from history.
type historyNavigation int

const (
	navigatePrevious historyNavigation = iota
	navigateNext
)

// Editor represents the prompt input component
type Editor interface {
	layout.Model
	layout.Sizeable
	layout.Focusable
	layout.Help
	SetHistory(hist *history.History)
	SetWorking(working bool) tea.Cmd
}

// editor implements [Editor]
type editor struct {
	textarea textarea.Model
	width    int
	height   int
	working  bool

	// hist is the shared prompt store backing up/down navigation.
	hist *history.History
	// draftInput holds the user's unsent text while they browse history.
	draftInput string
	// historyBrowsing marks that we're currently showing history entries.
	historyBrowsing bool
}

// New creates a new editor component
func New() Editor {
	ta := textarea.New()
	ta.SetStyles(styles.InputStyle)
	ta.Placeholder = "Type your message here..."
	ta.Prompt = "│ "
	ta.CharLimit = -1
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)

	return &editor{
		textarea: ta,
	}
}

// Init initializes the component
func (e *editor) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the component state
func (e *editor) Update(msg tea.Msg) (layout.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.textarea.SetWidth(msg.Width - 2)
		return e, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			if !e.textarea.Focused() {
				return e, nil
			}
			value := e.textarea.Value()
			if value != "" && !e.working {
				// Treat enter as send: clear input and exit history browse state.
				e.textarea.Reset()
				e.endHistoryBrowse()
				return e, core.CmdHandler(messages.SendMsg{Content: value})
			}
			return e, nil
		case "ctrl+c":
			return e, tea.Quit
		case "up":
			// Consume the key when we replace the buffer with an older prompt.
			if e.navigateHistory(navigatePrevious) {
				return e, nil
			}
		case "down":
			// Consume the key when we replace the buffer with a newer prompt.
			if e.navigateHistory(navigateNext) {
				return e, nil
			}
		default:
			// Any other key exits history browsing so input becomes fresh text.
			if e.historyBrowsing {
				e.endHistoryBrowse()
			}
		}
	}

	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	return e, cmd
}

// View renders the component
func (e *editor) View() string {
	return styles.EditorStyle.Render(e.textarea.View())
}

// SetSize sets the dimensions of the component
func (e *editor) SetSize(width, height int) tea.Cmd {
	e.width = width
	e.height = height

	e.textarea.SetWidth(max(width, 10))
	e.textarea.SetHeight(max(height, 3))

	return nil
}

// GetSize returns the current dimensions
func (e *editor) GetSize() (width, height int) {
	return e.width, e.height
}

// Focus gives focus to the component
func (e *editor) Focus() tea.Cmd {
	return e.textarea.Focus()
}

// Blur removes focus from the component
func (e *editor) Blur() tea.Cmd {
	e.textarea.Blur()
	return nil
}

// IsFocused reports whether the textarea has focus
func (e *editor) IsFocused() bool {
	return e.textarea.Focused()
}

// Bindings returns key bindings for the component
func (e *editor) Bindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
	}
}

// Help returns the help information
func (e *editor) Help() help.KeyMap {
	return core.NewSimpleHelp(e.Bindings())
}

func (e *editor) SetWorking(working bool) tea.Cmd {
	e.working = working
	return nil
}

func (e *editor) SetHistory(hist *history.History) {
	e.hist = hist
}

func (e *editor) navigateHistory(direction historyNavigation) bool {
	// Returning true tells Update to stop Bubble Tea's default cursor handling,
	// because we've already replaced the textarea content for this key press.
	if !e.canBrowseHistory() {
		return false
	}

	if !e.historyBrowsing {
		e.beginHistoryBrowse()
	}

	var entry string
	switch direction {
	case navigatePrevious:
		// Up arrow walks toward older prompts.
		entry = e.hist.Previous()
	case navigateNext:
		// Down arrow walks toward newer prompts.
		entry = e.hist.Next()
		if entry == "" {
			// Restore the draft when we step past the newest entry.
			e.restoreDraftFromHistory()
			return true
		}
	default:
		return false
	}

	if entry == "" {
		return true
	}

	e.textarea.SetValue(entry)
	// Place the cursor at the end so the user can immediately append or send.
	e.textarea.MoveToEnd()
	return true
}

func (e *editor) canBrowseHistory() bool {
	// We only take over arrow keys when there's at least one history entry
	// and the buffer is empty or already showing a history entry.
	return e.hist != nil && (e.historyBrowsing || e.textarea.Value() == "")
}

func (e *editor) beginHistoryBrowse() {
	if e.hist == nil {
		return
	}
	// Capture the in-progress text so we can restore it after browsing.
	e.draftInput = e.textarea.Value()
	e.historyBrowsing = true
	// Start from the newest entry so the first "up" pulls the latest prompt.
	e.moveHistoryCursorToLatest()
}

func (e *editor) restoreDraftFromHistory() {
	e.textarea.SetValue(e.draftInput)
	e.textarea.MoveToEnd()
	e.endHistoryBrowse()
}

func (e *editor) endHistoryBrowse() {
	e.historyBrowsing = false
	e.draftInput = ""
	if e.hist == nil {
		return
	}
	e.moveHistoryCursorToLatest()
}

func (e *editor) moveHistoryCursorToLatest() {
	if e.hist == nil {
		return
	}
	// Advance until Next returns empty, which positions the cursor just after
	// the most recent saved prompt.
	for e.hist.Next() != "" {
	}
}
