package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  RejectReason
	}{
		{"plain text", "plain **bold** text", RejectNone},
		{"empty", "", RejectNone},
		{"headings and lists", "# Title\n\n- one\n- two", RejectNone},
		{"complete link", "see [docs](https://example.com)", RejectNone},
		{"complete image", "![alt](http://x/y.png)", RejectNone},

		{"custom tag", "before <function_calls> after", RejectUnknownTag},
		{"thinking tag", "<think>hmm</think>", RejectUnknownTag},
		{"allowed tag", "line one<br>line two", RejectNone},
		{"allowed closing tag", "<b>bold</b>", RejectNone},
		{"namespaced tag", `<tool:call arg="1">`, RejectNamespacedTag},
		{"custom tag in fence", "```\n<function_calls>\n```", RejectNone},
		{"custom tag in inline code", "use `<function_calls>` here", RejectNone},

		{"open image no bracket", "look ![loading", RejectOpenImage},
		{"open image no paren", "Check this: ![alt](http://x/y.png", RejectOpenImage},

		{"dangling asterisk", "emphasis starting *", RejectDanglingEmphasis},
		{"dangling asterisk run", "a *b* then *c* and *", RejectDanglingEmphasis},
		{"balanced emphasis", "this is **important**", RejectNone},
		{"dangling underscore", "emphasis starting _", RejectDanglingEmphasis},

		{"nested brackets", "[outer [inner](x)](y)", RejectNestedBrackets},
		{"sequential brackets", "[a](x) and [b](y)", RejectNone},
		{"task list", "- [ ] todo\n- [x] done", RejectNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CheckSafe(tt.input))
		})
	}
}

func TestIsSafeToRender(t *testing.T) {
	t.Parallel()

	assert.False(t, IsSafeToRender("before <function_calls> after"))
	assert.True(t, IsSafeToRender("plain **bold** text"))
}

func TestOutsideCode(t *testing.T) {
	t.Parallel()

	// After one fence line, positions are inside code.
	text := "```\n<tag>\n```\n<tag>"
	assert.False(t, outsideCode(text, 4))
	// After the closing fence, positions are outside again.
	assert.True(t, outsideCode(text, 14))

	// Same-line backtick parity.
	inline := "a `b<tag>` c <tag>"
	assert.False(t, outsideCode(inline, 4))
	assert.True(t, outsideCode(inline, 13))
}
