// Package markdown renders streaming assistant output in the terminal.
//
// Assistant responses arrive token by token, so the text handed to the
// markdown engine is frequently incomplete: open code fences, half-written
// links, dangling emphasis markers. The package wraps the underlying engine
// in a defensive pipeline: Sanitize closes truncated constructs, CheckSafe
// rejects known-crash patterns before parse, and Guard catches everything
// that still goes wrong and demotes the content to plain text.
package markdown

import (
	"regexp"
	"strings"
)

// openLink matches a link whose URL part is still streaming in, e.g.
// "[text](http://exa". Only ever applied to the final line. Image tokens
// ("![...") are deliberately excluded: an unfinished image is handled by the
// precheck, not patched up here.
var openLink = regexp.MustCompile(`(?:^|[^!])\[[^\]]*\]\([^()]*$`)

// isFenceLine reports whether the line opens or closes a fenced code block.
func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "```")
}

// Sanitize closes obviously unbalanced streaming-markdown constructs so the
// renderer sees syntactically complete input. It is deterministic, pure and
// idempotent: already-balanced input comes back unchanged, and content inside
// fenced blocks is never modified.
func Sanitize(raw string) string {
	if raw == "" {
		return raw
	}

	lines := strings.Split(raw, "\n")

	fences := 0
	inlineTicks := 0
	for _, line := range lines {
		if isFenceLine(line) {
			fences++
			continue
		}
		if fences%2 == 1 {
			// Inside an open fence; backticks here are literal.
			continue
		}
		inlineTicks += strings.Count(line, "`")
	}

	// An odd fence count means the tail of the input is inside an open code
	// block: close the fence first. Odd outside-fence backticks still need
	// closing, on a fresh line so the fence line stays a plain fence. The
	// link check does not apply, the final line is inside the fence.
	if fences%2 == 1 {
		out := raw
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += "```"
		if inlineTicks%2 == 1 {
			out += "\n`"
		}
		return out
	}

	out := raw
	if inlineTicks%2 == 1 {
		out += "`"
	}
	if openLink.MatchString(lines[len(lines)-1]) {
		out += ")"
	}
	return out
}
