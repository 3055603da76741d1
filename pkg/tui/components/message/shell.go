package message

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/quillhq/quill/pkg/tui/styles"
)

// highlightShell renders shell output with console syntax highlighting.
// It stays outside the markdown pipeline so command output containing
// backticks or fences cannot confuse the parser.
func highlightShell(output string) string {
	lexer := lexers.Get("console")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, output)
	if err != nil {
		return output
	}

	style := styles.ChromaStyle()
	var sb strings.Builder
	for _, token := range iterator.Tokens() {
		if token.Value == "" {
			continue
		}
		sb.WriteString(chromaToLipgloss(token.Type, style).Render(token.Value))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func chromaToLipgloss(tokenType chroma.TokenType, style *chroma.Style) lipgloss.Style {
	entry := style.Get(tokenType)
	lipStyle := lipgloss.NewStyle()

	if entry.Colour.IsSet() {
		lipStyle = lipStyle.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		lipStyle = lipStyle.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		lipStyle = lipStyle.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		lipStyle = lipStyle.Underline(true)
	}

	return lipStyle
}
