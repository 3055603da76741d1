package dialog

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/core/layout"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/styles"
)

// sessionBrowserKeyMap defines key bindings for the session browser
type sessionBrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
	Delete key.Binding
}

const sessionBrowserListHeight = 12

// browserRow is either a date group header or a selectable session entry.
type browserRow struct {
	header  string
	summary session.Summary
}

func (r browserRow) isHeader() bool { return r.header != "" }

type sessionBrowserDialog struct {
	BaseDialog
	textInput textinput.Model
	sessions  []session.Summary
	rows      []browserRow
	selected  int // index into rows, always on a session row
	offset    int // first visible row
	keyMap    sessionBrowserKeyMap
	openedAt  time.Time // when dialog was opened, for stable time display
}

// NewSessionBrowserDialog creates a new session browser dialog. Summaries are
// expected newest first.
func NewSessionBrowserDialog(sessions []session.Summary) Dialog {
	ti := textinput.New()
	ti.Placeholder = "Type to search sessions…"
	ti.Focus()
	ti.CharLimit = 100
	ti.SetWidth(50)

	// Sessions without a title never received a prompt, hide them.
	titled := make([]session.Summary, 0, len(sessions))
	for _, s := range sessions {
		if s.Title != "" {
			titled = append(titled, s)
		}
	}

	d := &sessionBrowserDialog{
		textInput: ti,
		sessions:  titled,
		keyMap: sessionBrowserKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "ctrl+k")),
			Down:   key.NewBinding(key.WithKeys("down", "ctrl+j")),
			Enter:  key.NewBinding(key.WithKeys("enter")),
			Escape: key.NewBinding(key.WithKeys("esc")),
			Delete: key.NewBinding(key.WithKeys("ctrl+d")),
		},
		openedAt: time.Now(),
	}
	d.rebuildRows()
	return d
}

func (d *sessionBrowserDialog) Init() tea.Cmd {
	return textinput.Blink
}

func (d *sessionBrowserDialog) Update(msg tea.Msg) (layout.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return d, d.SetSize(msg.Width, msg.Height)

	case tea.KeyPressMsg:
		if cmd := HandleQuit(msg); cmd != nil {
			return d, cmd
		}

		switch {
		case key.Matches(msg, d.keyMap.Escape):
			return d, core.CmdHandler(CloseDialogMsg{})

		case key.Matches(msg, d.keyMap.Up):
			d.moveSelection(-1)
			return d, nil

		case key.Matches(msg, d.keyMap.Down):
			d.moveSelection(1)
			return d, nil

		case key.Matches(msg, d.keyMap.Enter):
			if s, ok := d.selectedSummary(); ok {
				return d, tea.Sequence(
					core.CmdHandler(CloseDialogMsg{}),
					core.CmdHandler(messages.LoadSessionMsg{SessionID: s.ID}),
				)
			}
			return d, nil

		case key.Matches(msg, d.keyMap.Delete):
			if s, ok := d.selectedSummary(); ok {
				d.removeSession(s.ID)
				return d, core.CmdHandler(messages.DeleteSessionMsg{SessionID: s.ID})
			}
			return d, nil

		default:
			var cmd tea.Cmd
			d.textInput, cmd = d.textInput.Update(msg)
			d.rebuildRows()
			return d, cmd
		}
	}

	return d, nil
}

// rebuildRows regroups the filtered sessions under date headers.
func (d *sessionBrowserDialog) rebuildRows() {
	query := strings.ToLower(strings.TrimSpace(d.textInput.Value()))

	d.rows = nil
	lastHeader := ""
	for _, sess := range d.sessions {
		if query != "" && !strings.Contains(strings.ToLower(sess.Title), query) {
			continue
		}

		header := d.groupLabel(sess.CreatedAt)
		if header != lastHeader {
			d.rows = append(d.rows, browserRow{header: header})
			lastHeader = header
		}
		d.rows = append(d.rows, browserRow{summary: sess})
	}

	d.selected = d.firstSessionRow()
	d.offset = 0
}

// groupLabel buckets a creation time relative to when the dialog opened.
func (d *sessionBrowserDialog) groupLabel(t time.Time) string {
	now := d.openedAt
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case !t.Before(today):
		return "Today"
	case !t.Before(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case !t.Before(today.AddDate(0, 0, -7)):
		return "This Week"
	default:
		return "Older"
	}
}

func (d *sessionBrowserDialog) firstSessionRow() int {
	for i, row := range d.rows {
		if !row.isHeader() {
			return i
		}
	}
	return -1
}

func (d *sessionBrowserDialog) moveSelection(delta int) {
	i := d.selected
	for {
		i += delta
		if i < 0 || i >= len(d.rows) {
			return
		}
		if !d.rows[i].isHeader() {
			d.selected = i
			d.ensureVisible()
			return
		}
	}
}

func (d *sessionBrowserDialog) ensureVisible() {
	if d.selected < d.offset {
		d.offset = d.selected
	}
	if d.selected >= d.offset+sessionBrowserListHeight {
		d.offset = d.selected - sessionBrowserListHeight + 1
	}
}

func (d *sessionBrowserDialog) selectedSummary() (session.Summary, bool) {
	if d.selected < 0 || d.selected >= len(d.rows) || d.rows[d.selected].isHeader() {
		return session.Summary{}, false
	}
	return d.rows[d.selected].summary, true
}

func (d *sessionBrowserDialog) removeSession(id string) {
	kept := d.sessions[:0]
	for _, s := range d.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	d.sessions = kept
	d.rebuildRows()
}

func (d *sessionBrowserDialog) dialogSize() (dialogWidth, contentWidth int) {
	dialogWidth = max(min(d.Width()*85/100, 96), 60)
	contentWidth = dialogWidth - 6
	return dialogWidth, contentWidth
}

func (d *sessionBrowserDialog) View() string {
	dialogWidth, contentWidth := d.dialogSize()
	d.textInput.SetWidth(contentWidth)

	var lines []string
	end := min(d.offset+sessionBrowserListHeight, len(d.rows))
	for i := d.offset; i < end; i++ {
		row := d.rows[i]
		if row.isHeader() {
			lines = append(lines, styles.GroupHeaderStyle.Render(row.header))
			continue
		}
		lines = append(lines, d.renderSession(row.summary, i == d.selected, contentWidth))
	}
	if len(lines) == 0 {
		lines = append(lines, "", styles.DialogContentStyle.
			Italic(true).Align(lipgloss.Center).Width(contentWidth).
			Render("No sessions found"))
	}
	for len(lines) < sessionBrowserListHeight {
		lines = append(lines, "")
	}

	content := NewContent(contentWidth).
		AddTitle("Sessions").
		AddSpace().
		AddContent(d.textInput.View()).
		AddSeparator().
		AddContent(strings.Join(lines, "\n")).
		AddSpace().
		AddHelpKeys("↑/↓", "navigate", "enter", "load", "ctrl+d", "delete", "esc", "close").
		Build()

	return styles.DialogStyle.Width(dialogWidth).Render(content)
}

func (d *sessionBrowserDialog) renderSession(sess session.Summary, selected bool, maxWidth int) string {
	suffix := fmt.Sprintf(" • %s", d.timeAgo(sess.CreatedAt))

	maxTitleWidth := max(1, maxWidth-runewidth.StringWidth(suffix)-4)
	title := runewidth.Truncate(sess.Title, maxTitleWidth, "…")

	line := "  " + title + styles.MutedStyle.Render(suffix)
	if selected {
		return styles.SelectedStyle.Render("› " + title + suffix)
	}
	return line
}

func (d *sessionBrowserDialog) timeAgo(t time.Time) string {
	elapsed := d.openedAt.Sub(t)
	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%ds ago", int(elapsed.Seconds()))
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func (d *sessionBrowserDialog) Position() (row, col int) {
	dialogWidth, _ := d.dialogSize()
	return CenterPosition(d.Width(), d.Height(), dialogWidth, sessionBrowserListHeight+8)
}
