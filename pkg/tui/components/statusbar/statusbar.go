package statusbar

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/quillhq/quill/pkg/tui/core"
	"github.com/quillhq/quill/pkg/tui/styles"
	"github.com/quillhq/quill/pkg/version"
)

// StatusBar displays key-binding help on the left and the model plus version
// info on the right.
type StatusBar struct {
	width int
	help  core.KeyMapHelp
	model string

	cached     string
	cacheDirty bool
}

// New creates a new StatusBar instance
func New(help core.KeyMapHelp) StatusBar {
	return StatusBar{
		help:       help,
		cacheDirty: true,
	}
}

// SetWidth sets the width of the status bar
func (s *StatusBar) SetWidth(width int) {
	if s.width != width {
		s.width = width
		s.cacheDirty = true
	}
}

// SetHelp sets the help provider for the status bar
func (s *StatusBar) SetHelp(help core.KeyMapHelp) {
	s.help = help
	s.cacheDirty = true
}

// SetModel sets the model name shown on the right.
func (s *StatusBar) SetModel(model string) {
	if s.model != model {
		s.model = model
		s.cacheDirty = true
	}
}

// Height returns the rendered height of the status bar (always 1).
func (s *StatusBar) Height() int {
	return 1
}

// InvalidateCache clears all cached values.
func (s *StatusBar) InvalidateCache() {
	s.cacheDirty = true
}

// rebuild renders the full status bar line.
func (s *StatusBar) rebuild() {
	s.cacheDirty = false

	// Build the styled right side: optional model name + version.
	right := styles.MutedStyle.Render("quill " + version.Version)
	if s.model != "" {
		right = styles.SecondaryStyle.Render(s.model) + styles.MutedStyle.Render(" │ ") + right
	}
	rightW := lipgloss.Width(right)

	// Build the styled left side: help bindings (possibly truncated).
	const pad = 1
	maxHelpW := s.width - rightW - 2*pad - 1

	var left string
	var leftW int
	if s.help != nil {
		if help := s.help.Help(); help != nil {
			var parts []string
			for _, b := range help.ShortHelp() {
				if b.Help().Key != "" && b.Help().Desc != "" {
					parts = append(parts,
						styles.HighlightStyle.Render(b.Help().Key)+
							" "+
							styles.SecondaryStyle.Render(b.Help().Desc))
				}
			}
			if len(parts) > 0 && maxHelpW > 0 {
				helpStr := strings.Join(parts, "  ")
				helpW := lipgloss.Width(helpStr)
				if helpW > maxHelpW {
					helpStr = ansi.Truncate(helpStr, maxHelpW, "...")
					helpW = lipgloss.Width(helpStr)
				}
				left = " " + helpStr
				leftW = pad + helpW
			}
		}
	}

	gap := max(1, s.width-leftW-rightW-pad)
	s.cached = left + strings.Repeat(" ", gap) + right + " "
}

// View renders the status bar.
//
// Layout: [ help text ...            model  quill VERSION ]
func (s *StatusBar) View() string {
	if s.cacheDirty {
		s.rebuild()
	}
	return s.cached
}
