// Package styles holds the themed lipgloss styles shared by the TUI
// components, plus the glamour and chroma style mappings derived from the
// active theme.
package styles

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/glamour/v2/ansi"
	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
)

const defaultListIndent = 2

// Styles derived from the active theme. Rebuilt by ApplyTheme; components
// read them directly during rendering.
var (
	MutedStyle             lipgloss.Style
	ErrorStyle             lipgloss.Style
	WarningStyle           lipgloss.Style
	SuccessStyle           lipgloss.Style
	TitleStyle             lipgloss.Style
	StatusBarStyle         lipgloss.Style
	SelectedStyle          lipgloss.Style
	SpinnerStyle           lipgloss.Style
	UserMessageBorderStyle lipgloss.Style
	SeparatorStyle         lipgloss.Style
	GroupHeaderStyle       lipgloss.Style
	EditorStyle            lipgloss.Style
	InputStyle             textarea.Styles
	HighlightStyle         lipgloss.Style
	SecondaryStyle         lipgloss.Style

	// Spinner text gradient, brightest at the moving light position.
	SpinnerTextBrightestStyle lipgloss.Style
	SpinnerTextBrightStyle    lipgloss.Style
	SpinnerTextDimStyle       lipgloss.Style
	SpinnerTextDimmestStyle   lipgloss.Style

	// Dialog chrome.
	DialogStyle          lipgloss.Style
	DialogTitleStyle     lipgloss.Style
	DialogSeparatorStyle lipgloss.Style
	DialogHelpStyle      lipgloss.Style
	DialogContentStyle   lipgloss.Style
)

func rebuildStyles(theme *Theme) {
	c := theme.Colors

	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Muted))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Warning))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Success))
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Accent)).Bold(true)
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.TextSecondary)).
		Background(lipgloss.Color(c.BackgroundAlt))
	SelectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.TextPrimary)).
		Background(lipgloss.Color(c.Selection))
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Accent))
	UserMessageBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(c.Accent)).
		PaddingLeft(1)
	SeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border))
	GroupHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Muted)).Bold(true)
	EditorStyle = lipgloss.NewStyle().Padding(1, 0, 0, 0)

	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextPrimary)).Bold(true)
	SecondaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextSecondary))

	SpinnerTextBrightestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextPrimary))
	SpinnerTextBrightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextSecondary))
	SpinnerTextDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Muted))
	SpinnerTextDimmestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border))

	DialogStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(c.Border)).
		Padding(1, 2)
	DialogTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Accent)).Bold(true)
	DialogSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Border))
	DialogHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Muted)).Italic(true)
	DialogContentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextSecondary))

	base := lipgloss.NewStyle().Foreground(lipgloss.Color(c.TextPrimary))
	InputStyle = textarea.Styles{
		Focused: textarea.StyleState{
			Base:        base,
			Placeholder: base.Foreground(lipgloss.Color(c.Muted)),
		},
		Blurred: textarea.StyleState{
			Base:        base,
			Placeholder: base.Foreground(lipgloss.Color(c.Muted)),
		},
		Cursor: textarea.CursorStyle{
			Color: lipgloss.Color(c.Accent),
		},
	}
}

// MarkdownStyle builds the glamour style config for the active theme.
func MarkdownStyle() ansi.StyleConfig {
	c := CurrentTheme().Colors

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(c.TextPrimary),
			},
			Margin: uintPtr(0),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(c.TextSecondary),
			},
			Indent: uintPtr(1),
		},
		List: ansi.StyleList{
			LevelIndent: defaultListIndent,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(c.Accent),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(c.Background),
				BackgroundColor: stringPtr(c.Accent),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## ", Color: stringPtr(c.Accent)},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### ", Color: stringPtr(c.TextSecondary)},
		},
		H4: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "#### ", Color: stringPtr(c.TextSecondary)},
		},
		H5: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "##### ", Color: stringPtr(c.TextSecondary)},
		},
		H6: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "###### ", Color: stringPtr(c.Muted)},
		},
		Strikethrough: ansi.StylePrimitive{
			CrossedOut: boolPtr(true),
		},
		Emph: ansi.StylePrimitive{
			Italic: boolPtr(true),
		},
		Strong: ansi.StylePrimitive{
			Color: stringPtr(c.TextPrimary),
			Bold:  boolPtr(true),
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(c.Border),
			Format: "\n--------\n",
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Enumeration: ansi.StylePrimitive{
			BlockPrefix: ". ",
		},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Link: ansi.StylePrimitive{
			Color:     stringPtr(c.Link),
			Underline: boolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: stringPtr(c.Accent),
			Bold:  boolPtr(true),
		},
		Image: ansi.StylePrimitive{
			Color:     stringPtr(c.Link),
			Underline: boolPtr(true),
		},
		ImageText: ansi.StylePrimitive{
			Color:  stringPtr(c.Muted),
			Format: "Image: {{.text}} →",
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(c.TextPrimary),
				BackgroundColor: stringPtr(c.BackgroundAlt),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{
					Color: stringPtr(c.TextPrimary),
				},
				Margin: uintPtr(1),
			},
			Chroma: chromaStyleConfig(),
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{},
			},
		},
	}
}

// Chroma syntax highlighting colors shared by both built-in themes.
const (
	chromaCommentColor       = "#676767"
	chromaKeywordColor       = "#00AAFF"
	chromaKeywordTypeColor   = "#6E6ED8"
	chromaOperatorColor      = "#EF8080"
	chromaPunctuationColor   = "#E8E8A8"
	chromaNameBuiltinColor   = "#FF8EC7"
	chromaNameFunctionColor  = "#00D787"
	chromaLiteralNumberColor = "#6EEFC0"
	chromaLiteralStringColor = "#C69669"
)

func chromaStyleConfig() *ansi.Chroma {
	return &ansi.Chroma{
		Text:            ansi.StylePrimitive{Color: stringPtr(CurrentTheme().Colors.TextPrimary)},
		Comment:         ansi.StylePrimitive{Color: stringPtr(chromaCommentColor)},
		Keyword:         ansi.StylePrimitive{Color: stringPtr(chromaKeywordColor)},
		KeywordType:     ansi.StylePrimitive{Color: stringPtr(chromaKeywordTypeColor)},
		Operator:        ansi.StylePrimitive{Color: stringPtr(chromaOperatorColor)},
		Punctuation:     ansi.StylePrimitive{Color: stringPtr(chromaPunctuationColor)},
		NameBuiltin:     ansi.StylePrimitive{Color: stringPtr(chromaNameBuiltinColor)},
		NameFunction:    ansi.StylePrimitive{Color: stringPtr(chromaNameFunctionColor)},
		LiteralNumber:   ansi.StylePrimitive{Color: stringPtr(chromaLiteralNumberColor)},
		LiteralString:   ansi.StylePrimitive{Color: stringPtr(chromaLiteralStringColor)},
		GenericEmph:     ansi.StylePrimitive{Italic: boolPtr(true)},
		GenericStrong:   ansi.StylePrimitive{Bold: boolPtr(true)},
		GenericDeleted:  ansi.StylePrimitive{Color: stringPtr(CurrentTheme().Colors.Error)},
		GenericInserted: ansi.StylePrimitive{Color: stringPtr(CurrentTheme().Colors.Success)},
	}
}

// ChromaStyle builds a chroma style for standalone code highlighting (shell
// output blocks outside the markdown pipeline).
func ChromaStyle() *chroma.Style {
	style, err := chroma.NewStyle("quill", chroma.StyleEntries{
		chroma.Text:          CurrentTheme().Colors.TextPrimary,
		chroma.Comment:       chromaCommentColor,
		chroma.Keyword:       chromaKeywordColor,
		chroma.KeywordType:   chromaKeywordTypeColor,
		chroma.Operator:      chromaOperatorColor,
		chroma.Punctuation:   chromaPunctuationColor,
		chroma.NameBuiltin:   chromaNameBuiltinColor,
		chroma.NameFunction:  chromaNameFunctionColor,
		chroma.LiteralNumber: chromaLiteralNumberColor,
		chroma.LiteralString: chromaLiteralStringColor,
	})
	if err != nil {
		panic(err)
	}
	return style
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
func uintPtr(u uint) *uint       { return &u }
