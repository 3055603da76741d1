// Package tui provides the top-level TUI model wrapping the chat page.
package tui

import (
	"context"
	"log/slog"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quillhq/quill/pkg/app"
	"github.com/quillhq/quill/pkg/browser"
	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/components/statusbar"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/dialog"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/page/chat"
	"github.com/quillhq/quill/pkg/tui/styles"
)

// KeyMap defines the global key bindings.
type KeyMap struct {
	NewSession key.Binding
	Sessions   key.Binding
	OpenLink   key.Binding
	Quit       key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new session"),
		),
		Sessions: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "sessions"),
		),
		OpenLink: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open link"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// appModel is the top-level TUI model.
type appModel struct {
	application *app.App
	guard       *markdown.Guard
	renderer    *markdown.GlamourRenderer

	chatPage  chat.Page
	dialogMgr dialog.Manager
	statusBar statusbar.StatusBar

	keyMap KeyMap

	width, height int
	ready         bool
}

// New creates the top-level TUI model. The guard is shared with every
// markdown-rendering component.
func New(a *app.App, guard *markdown.Guard) tea.Model {
	page := chat.New(a, guard)

	m := &appModel{
		application: a,
		guard:       guard,
		chatPage:    page,
		dialogMgr:   dialog.New(),
		keyMap:      defaultKeyMap(),
	}
	m.statusBar = statusbar.New(m)
	m.statusBar.SetModel(a.Model())
	m.buildRenderer(80, styles.CurrentTheme().Dark)
	return m
}

// buildRenderer replaces the guard's renderer. Glamour bakes the wrap width
// and style in at construction, so any width or theme change lands here.
func (m *appModel) buildRenderer(width int, dark bool) {
	m.renderer = markdown.NewGlamourRenderer(
		width,
		styles.MarkdownStyle(),
		markdown.WithDarkMode(dark),
		markdown.WithLinkHandler(openLink),
	)
	m.guard.SetRenderer(m.renderer)
}

func openLink(text, href, title string) {
	if err := browser.Open(context.Background(), href); err != nil {
		slog.Warn("Failed to open link", "url", href, "error", err)
	}
}

// Init initializes the model.
func (m *appModel) Init() tea.Cmd {
	return tea.Batch(
		m.dialogMgr.Init(),
		m.chatPage.Init(),
	)
}

// Update handles messages.
func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		return m, m.handleResize(msg)

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case dialog.OpenDialogMsg, dialog.CloseDialogMsg, dialog.CloseAllDialogsMsg:
		u, cmd := m.dialogMgr.Update(msg)
		m.dialogMgr = u.(dialog.Manager)
		return m, cmd

	case messages.NewSessionMsg:
		if err := m.application.NewSession(context.Background()); err != nil {
			slog.Error("Failed to create session", "error", err)
			return m, nil
		}
		m.statusBar.InvalidateCache()
		return m, m.chatPage.StartNewSession()

	case messages.OpenSessionBrowserMsg:
		return m, m.openSessionBrowser()

	case messages.LoadSessionMsg:
		sess, err := m.application.LoadSession(context.Background(), msg.SessionID)
		if err != nil {
			slog.Error("Failed to load session", "session_id", msg.SessionID, "error", err)
			return m, nil
		}
		return m, m.chatPage.LoadSession(sess)

	case messages.DeleteSessionMsg:
		if err := m.application.DeleteSession(context.Background(), msg.SessionID); err != nil {
			slog.Error("Failed to delete session", "session_id", msg.SessionID, "error", err)
		}
		return m, nil

	case messages.ChangeThemeMsg:
		return m, m.applyTheme(msg.ThemeRef)

	case messages.ThemeFileChangedMsg:
		// The active theme file changed on disk, reload in place.
		return m, m.applyTheme(msg.ThemeRef)

	case messages.OpenURLMsg:
		link := markdown.Link{Href: msg.URL}
		renderer := m.renderer
		return m, func() tea.Msg {
			renderer.ActivateLink(link)
			return nil
		}
	}

	var cmds []tea.Cmd

	if m.dialogMgr.Open() {
		u, cmd := m.dialogMgr.Update(msg)
		m.dialogMgr = u.(dialog.Manager)
		cmds = append(cmds, cmd)
	}

	updated, cmd := m.chatPage.Update(msg)
	m.chatPage = updated.(chat.Page)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleResize propagates the new window size and rebuilds the markdown
// renderer, whose wrap width is baked in at construction.
func (m *appModel) handleResize(msg tea.WindowSizeMsg) tea.Cmd {
	renderWidth := max(20, msg.Width-2)
	m.buildRenderer(renderWidth, styles.CurrentTheme().Dark)
	m.guard.SetWrapWidth(renderWidth)

	m.statusBar.SetWidth(msg.Width)

	pageModel, pageCmd := m.chatPage.Update(tea.WindowSizeMsg{
		Width:  msg.Width,
		Height: msg.Height - m.statusBar.Height(),
	})
	m.chatPage = pageModel.(chat.Page)

	u, dialogCmd := m.dialogMgr.Update(msg)
	m.dialogMgr = u.(dialog.Manager)

	return tea.Batch(pageCmd, dialogCmd)
}

func (m *appModel) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// Dialogs capture all input while open.
	if m.dialogMgr.Open() {
		u, cmd := m.dialogMgr.Update(msg)
		m.dialogMgr = u.(dialog.Manager)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.application.CancelStream()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewSession):
		return m, core.CmdHandler(messages.NewSessionMsg{})

	case key.Matches(msg, m.keyMap.Sessions):
		return m, core.CmdHandler(messages.OpenSessionBrowserMsg{})

	case key.Matches(msg, m.keyMap.OpenLink):
		if links := markdown.Links(m.chatPage.LastAssistantMarkdown()); len(links) > 0 {
			return m, core.CmdHandler(messages.OpenURLMsg{URL: links[0].Href})
		}
		return m, nil
	}

	updated, cmd := m.chatPage.Update(msg)
	m.chatPage = updated.(chat.Page)
	return m, cmd
}

// openSessionBrowser fetches the stored summaries and opens the browser
// dialog over them.
func (m *appModel) openSessionBrowser() tea.Cmd {
	return func() tea.Msg {
		summaries, err := m.application.Store().GetSessionSummaries(context.Background())
		if err != nil {
			slog.Error("Failed to list sessions", "error", err)
			return nil
		}
		return dialog.OpenDialogMsg{Model: dialog.NewSessionBrowserDialog(summaries)}
	}
}

// applyTheme loads and activates a theme, then rebuilds every style-derived
// cache, including the glamour renderer inside the guard.
func (m *appModel) applyTheme(ref string) tea.Cmd {
	theme, err := styles.LoadTheme(ref)
	if err != nil {
		slog.Warn("Failed to load theme", "theme", ref, "error", err)
		return nil
	}
	styles.ApplyTheme(theme)

	renderWidth := max(20, m.width-2)
	m.buildRenderer(renderWidth, theme.Dark)
	m.statusBar.InvalidateCache()

	changed := messages.ThemeChangedMsg{}
	u, dialogCmd := m.dialogMgr.Update(changed)
	m.dialogMgr = u.(dialog.Manager)

	pageModel, pageCmd := m.chatPage.Update(changed)
	m.chatPage = pageModel.(chat.Page)

	return tea.Batch(dialogCmd, pageCmd)
}

// Help implements core.KeyMapHelp for the status bar: the page's bindings
// followed by the global ones.
func (m *appModel) Help() help.KeyMap {
	bindings := m.chatPage.Bindings()
	bindings = append(bindings,
		m.keyMap.NewSession,
		m.keyMap.Sessions,
		m.keyMap.OpenLink,
		m.keyMap.Quit,
	)
	return core.NewSimpleHelp(bindings)
}

// View renders the model.
func (m *appModel) View() tea.View {
	if !m.ready {
		return toFullscreenView(styles.MutedStyle.Render("Loading…"), m.windowTitle())
	}

	baseView := lipgloss.JoinVertical(
		lipgloss.Top,
		m.chatPage.View(),
		m.statusBar.View(),
	)

	if m.dialogMgr.Open() {
		root := lipgloss.NewLayer(baseView, m.dialogMgr.GetLayers()...)
		canvas := lipgloss.NewCanvas(m.width, m.height)
		canvas.Compose(root)
		return toFullscreenView(canvas.Render(), m.windowTitle())
	}

	return toFullscreenView(baseView, m.windowTitle())
}

func (m *appModel) windowTitle() string {
	if sess := m.application.Session(); sess != nil && sess.Title != "" {
		return sess.Title + " - quill"
	}
	return "quill"
}

func toFullscreenView(content, windowTitle string) tea.View {
	view := tea.NewView(content)
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	view.BackgroundColor = lipgloss.Color(styles.CurrentTheme().Colors.Background)
	view.WindowTitle = windowTitle
	return view
}
