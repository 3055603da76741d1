package messages

import (
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/components/message"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/core/layout"
	"github.com/quillhq/quill/pkg/tui/types"
)

// Model represents a chat message list component
type Model interface {
	layout.Model
	layout.Sizeable
	layout.Focusable
	layout.Help

	AddUserMessage(content string) tea.Cmd
	AddErrorMessage(content string) tea.Cmd
	AddAssistantMessage() tea.Cmd
	AddSeparatorMessage() tea.Cmd
	AddWelcomeMessage(content string) tea.Cmd
	AddShellMessage(content string) tea.Cmd
	AppendToLastMessage(messageType types.MessageType, content string) tea.Cmd
	FinalizeLastMessage(messageType types.MessageType)
	LastMessageContent(messageType types.MessageType) string
	SetMessages(msgs []types.Message) tea.Cmd
	RemoveSpinner()
	ScrollToBottom() tea.Cmd
	PlainTextTranscript() string
	IsAtBottom() bool
}

// renderedItem represents a cached rendered message with position information
type renderedItem struct {
	view   string // Cached rendered content
	height int    // Height in lines
}

// model implements Model
type model struct {
	messages []types.Message
	views    []message.Model
	width    int
	height   int
	guard    *markdown.Guard

	scrollOffset  int                  // Current scroll position in lines
	rendered      string               // Complete rendered content string
	renderedItems map[int]renderedItem // Cache of rendered items
	totalHeight   int                  // Total height of all content in lines
}

// New creates a new message list component. All markdown rendering flows
// through the shared guard.
func New(guard *markdown.Guard) Model {
	return &model{
		width:         120,
		height:        24,
		guard:         guard,
		renderedItems: make(map[int]renderedItem),
	}
}

// Init initializes the component
func (m *model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, view := range m.views {
		if cmd := view.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the component state
func (m *model) Update(msg tea.Msg) (layout.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if cmd := m.SetSize(msg.Width, msg.Height); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.MouseWheelMsg:
		const mouseScrollAmount = 3
		switch msg.Button.String() {
		case "wheelup":
			for range mouseScrollAmount {
				m.scrollUp()
			}
		case "wheeldown":
			for range mouseScrollAmount {
				m.scrollDown()
			}
		}
		return m, nil

	case tea.KeyPressMsg:
		if dir, ok := core.GetScrollDirection(msg); ok {
			m.scroll(dir)
			return m, nil
		}
	}

	// Forward updates to all message views
	for i, view := range m.views {
		updatedView, cmd := view.Update(msg)
		if updatedView != nil {
			m.views[i] = updatedView.(message.Model)
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	// Collect deferred downgrade notifications recorded during the last
	// draw. They surface as commands so state changes land between frames.
	for _, view := range m.views {
		if cmd := view.TakeDowngradeCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if len(m.messages) == 0 {
		return ""
	}

	m.ensureAllItemsRendered()

	if m.totalHeight == 0 {
		return ""
	}

	maxScrollOffset := max(0, m.totalHeight-m.height)
	m.scrollOffset = max(0, min(m.scrollOffset, maxScrollOffset))

	lines := strings.Split(m.rendered, "\n")
	startLine := m.scrollOffset
	endLine := min(startLine+m.height, len(lines))
	if startLine >= endLine {
		return ""
	}

	return strings.Join(lines[startLine:endLine], "\n")
}

// SetSize sets the dimensions of the component
func (m *model) SetSize(width, height int) tea.Cmd {
	m.width = width
	m.height = height

	if width < 10 {
		width = 10
	}

	for _, view := range m.views {
		view.SetSize(width, 0)
	}

	// Size changes may affect item rendering, invalidate all items
	m.invalidateAllItems()
	return nil
}

// GetSize returns the current dimensions
func (m *model) GetSize() (width, height int) {
	return m.width, m.height
}

func (m *model) Focus() tea.Cmd {
	return nil
}

func (m *model) Blur() tea.Cmd {
	return nil
}

func (m *model) IsFocused() bool {
	return false
}

// Bindings returns key bindings for the component
func (m *model) Bindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
	}
}

// Help returns the help information
func (m *model) Help() help.KeyMap {
	return core.NewSimpleHelp(m.Bindings())
}

func (m *model) scroll(dir core.ScrollDirection) {
	switch dir {
	case core.ScrollUp:
		m.scrollUp()
	case core.ScrollDown:
		m.scrollDown()
	case core.ScrollPageUp:
		m.scrollOffset = max(0, m.scrollOffset-m.height)
	case core.ScrollPageDown:
		m.scrollOffset += m.height
	case core.ScrollToTop:
		m.scrollOffset = 0
	case core.ScrollToBottom:
		m.scrollToBottom()
	}
}

func (m *model) scrollUp() {
	if m.scrollOffset > 0 {
		m.scrollOffset--
	}
}

func (m *model) scrollDown() {
	m.scrollOffset++
}

func (m *model) scrollToBottom() {
	m.scrollOffset = 9_999_999 // Will be clamped in View()
}

// shouldCacheMessage determines if a message should be cached based on its
// type and content. Only static content is cached so spinners keep animating.
func (m *model) shouldCacheMessage(index int) bool {
	if index < 0 || index >= len(m.messages) {
		return false
	}

	msg := m.messages[index]
	switch msg.Type {
	case types.MessageTypeAssistant, types.MessageTypeAssistantReasoning:
		// Empty assistant messages show spinners and need constant
		// re-rendering. Streaming content changes every delta.
		return !msg.Streaming && strings.Trim(msg.Content, "\r\n\t ") != ""
	case types.MessageTypeUser, types.MessageTypeSeparator, types.MessageTypeError, types.MessageTypeWelcome, types.MessageTypeShell:
		return true
	default:
		return false
	}
}

// renderItem creates a renderedItem for a specific view with selective caching
func (m *model) renderItem(index int, view message.Model) renderedItem {
	if m.shouldCacheMessage(index) {
		if cached, exists := m.renderedItems[index]; exists {
			return cached
		}
	}

	rendered := view.View()
	height := strings.Count(rendered, "\n") + 1
	if rendered == "" {
		height = 0
	}

	item := renderedItem{
		view:   rendered,
		height: height,
	}

	if m.shouldCacheMessage(index) {
		m.renderedItems[index] = item
	}

	return item
}

// ensureAllItemsRendered ensures all message items are rendered and positioned
func (m *model) ensureAllItemsRendered() {
	if len(m.views) == 0 {
		m.rendered = ""
		m.totalHeight = 0
		return
	}

	var allLines []string
	for i, view := range m.views {
		item := m.renderItem(i, view)
		if item.view != "" {
			allLines = append(allLines, strings.Split(item.view, "\n")...)
		}

		// Blank line between messages, but not after the last one
		if i < len(m.views)-1 && item.view != "" {
			allLines = append(allLines, "")
		}
	}

	m.rendered = strings.Join(allLines, "\n")
	m.totalHeight = len(allLines)
}

func (m *model) invalidateItem(index int) {
	delete(m.renderedItems, index)
}

func (m *model) invalidateAllItems() {
	m.renderedItems = make(map[int]renderedItem)
	m.rendered = ""
	m.totalHeight = 0
}

// IsAtBottom returns true if the viewport is at the bottom
func (m *model) IsAtBottom() bool {
	if len(m.messages) == 0 {
		return true
	}
	maxScrollOffset := max(0, m.totalHeight-m.height)
	return m.scrollOffset >= maxScrollOffset
}

// AddUserMessage adds a user message to the chat
func (m *model) AddUserMessage(content string) tea.Cmd {
	return m.addMessage(&types.Message{
		Type:    types.MessageTypeUser,
		Content: content,
	})
}

func (m *model) AddErrorMessage(content string) tea.Cmd {
	return m.addMessage(&types.Message{
		Type:    types.MessageTypeError,
		Content: content,
	})
}

// AddAssistantMessage adds a pending assistant message shown as a spinner
func (m *model) AddAssistantMessage() tea.Cmd {
	return m.addMessage(&types.Message{
		Type: types.MessageTypeSpinner,
	})
}

func (m *model) AddWelcomeMessage(content string) tea.Cmd {
	return m.addMessage(&types.Message{
		Type:    types.MessageTypeWelcome,
		Content: content,
	})
}

// AddShellMessage adds the output of a local shell command to the chat
func (m *model) AddShellMessage(content string) tea.Cmd {
	m.RemoveSpinner()
	return m.addMessage(&types.Message{
		Type:    types.MessageTypeShell,
		Content: content,
	})
}

// AddSeparatorMessage adds a separator message to the chat
func (m *model) AddSeparatorMessage() tea.Cmd {
	m.RemoveSpinner()
	return m.addMessage(&types.Message{
		Type: types.MessageTypeSeparator,
	})
}

func (m *model) addMessage(msg *types.Message) tea.Cmd {
	wasAtBottom := m.IsAtBottom()
	m.messages = append(m.messages, *msg)

	view := m.createMessageView(&m.messages[len(m.messages)-1])
	m.views = append(m.views, view)

	var cmds []tea.Cmd
	if initCmd := view.Init(); initCmd != nil {
		cmds = append(cmds, initCmd)
	}

	if wasAtBottom {
		cmds = append(cmds, m.ScrollToBottom())
	}

	return tea.Batch(cmds...)
}

// AppendToLastMessage appends content to the last message (for streaming)
func (m *model) AppendToLastMessage(messageType types.MessageType, content string) tea.Cmd {
	m.RemoveSpinner()

	if len(m.messages) > 0 {
		lastIdx := len(m.messages) - 1
		lastMsg := &m.messages[lastIdx]

		if lastMsg.Type == messageType {
			lastMsg.Content += content
			lastMsg.Streaming = true
			m.views[lastIdx].SetMessage(lastMsg)
			m.invalidateItem(lastIdx)
			return nil
		}
	}

	return m.addMessage(&types.Message{
		Type:      messageType,
		Content:   content,
		Streaming: true,
	})
}

// FinalizeLastMessage clears the streaming flag on the last message of the
// given type, making it eligible for render caching.
func (m *model) FinalizeLastMessage(messageType types.MessageType) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Type == messageType {
			m.messages[i].Streaming = false
			m.views[i].SetMessage(&m.messages[i])
			m.invalidateItem(i)
			return
		}
	}
}

// LastMessageContent returns the content of the last message of the given
// type, or empty.
func (m *model) LastMessageContent(messageType types.MessageType) string {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Type == messageType {
			return m.messages[i].Content
		}
	}
	return ""
}

// SetMessages replaces the whole transcript, e.g. when loading a session.
func (m *model) SetMessages(msgs []types.Message) tea.Cmd {
	m.messages = nil
	m.views = nil
	m.invalidateAllItems()

	var cmds []tea.Cmd
	for i := range msgs {
		if cmd := m.addMessage(&msgs[i]); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, m.ScrollToBottom())
	return tea.Batch(cmds...)
}

// ScrollToBottom scrolls to the bottom of the chat
func (m *model) ScrollToBottom() tea.Cmd {
	return func() tea.Msg {
		m.scrollToBottom()
		return nil
	}
}

// PlainTextTranscript returns the conversation as plain text suitable for copying
func (m *model) PlainTextTranscript() string {
	var builder strings.Builder

	for i := range m.messages {
		msg := m.messages[i]
		switch msg.Type {
		case types.MessageTypeUser:
			writeTranscriptSection(&builder, "User", msg.Content)
		case types.MessageTypeAssistant:
			writeTranscriptSection(&builder, "Assistant", msg.Content)
		case types.MessageTypeAssistantReasoning:
			writeTranscriptSection(&builder, "Assistant (thinking)", msg.Content)
		case types.MessageTypeError:
			writeTranscriptSection(&builder, "Error", msg.Content)
		case types.MessageTypeShell:
			writeTranscriptSection(&builder, "Shell", msg.Content)
		}
	}

	return strings.TrimSpace(builder.String())
}

func (m *model) createMessageView(msg *types.Message) message.Model {
	view := message.New(m.guard, msg)
	view.SetSize(m.width, 0)
	return view
}

// RemoveSpinner removes the last message if it's a pending spinner
func (m *model) RemoveSpinner() {
	if len(m.messages) == 0 {
		return
	}
	lastIdx := len(m.messages) - 1
	if m.messages[lastIdx].Type == types.MessageTypeSpinner {
		m.messages = m.messages[:lastIdx]
		m.views = m.views[:lastIdx]
		m.invalidateItem(lastIdx)
	}
}

func writeTranscriptSection(builder *strings.Builder, title, content string) {
	text := strings.TrimSpace(content)
	if text == "" {
		return
	}
	if builder.Len() > 0 {
		builder.WriteString("\n\n")
	}
	builder.WriteString(title)
	builder.WriteString(":\n")
	builder.WriteString(text)
}
