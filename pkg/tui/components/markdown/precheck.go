package markdown

import (
	"regexp"
	"strings"
)

// RejectReason identifies which precheck rule refused a piece of content.
// RejectNone means the content is safe to hand to the renderer.
type RejectReason int

const (
	RejectNone RejectReason = iota
	// RejectNamespacedTag: a colon-qualified pseudo-XML tag like <ns:name>.
	RejectNamespacedTag
	// RejectUnknownTag: an angle-bracket tag outside the allow-list of
	// standard formatting tags.
	RejectUnknownTag
	// RejectOpenImage: an image token still streaming in at end of input.
	RejectOpenImage
	// RejectDanglingEmphasis: a trailing emphasis-marker run with an odd
	// total marker count.
	RejectDanglingEmphasis
	// RejectNestedBrackets: a square bracket opened inside another unclosed
	// bracket.
	RejectNestedBrackets
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectNamespacedTag:
		return "namespaced_tag"
	case RejectUnknownTag:
		return "unknown_tag"
	case RejectOpenImage:
		return "open_image"
	case RejectDanglingEmphasis:
		return "dangling_emphasis"
	case RejectNestedBrackets:
		return "nested_brackets"
	default:
		return "unknown"
	}
}

var (
	namespacedTag = regexp.MustCompile(`<[A-Za-z][\w.-]*:[A-Za-z][\w.-]*(\s[^>]*)?/?>`)
	anyTag        = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9_-]*)(\s[^>]*)?/?>`)

	// openImage covers both truncation points of a streaming image token:
	// "![alt" (bracket never closed) and "![alt](uri" (paren never closed).
	openImage = regexp.MustCompile(`!\[[^\]]*$|!\[[^\]]*\]\([^()]*$`)
)

// allowedTags are standard formatting tags the renderer is known to handle.
// Anything else gets rejected: custom tags are the single most common crash
// source with model output (tool-call markup, pseudo-XML protocols, ...).
var allowedTags = map[string]struct{}{
	"a": {}, "abbr": {}, "b": {}, "blockquote": {}, "br": {}, "code": {},
	"del": {}, "details": {}, "em": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {}, "hr": {}, "i": {}, "img": {}, "ins": {},
	"kbd": {}, "li": {}, "mark": {}, "ol": {}, "p": {}, "pre": {}, "s": {},
	"small": {}, "span": {}, "strong": {}, "sub": {}, "summary": {},
	"sup": {}, "table": {}, "tbody": {}, "td": {}, "th": {}, "thead": {},
	"tr": {}, "u": {}, "ul": {},
}

// CheckSafe runs static heuristics over text and reports the first rule that
// refuses it. The rules are deliberately over-cautious: a false positive
// costs formatting, a false negative costs the whole frame.
func CheckSafe(text string) RejectReason {
	for _, loc := range namespacedTag.FindAllStringIndex(text, -1) {
		if outsideCode(text, loc[0]) {
			return RejectNamespacedTag
		}
	}

	for _, m := range anyTag.FindAllStringSubmatchIndex(text, -1) {
		if !outsideCode(text, m[0]) {
			continue
		}
		name := strings.ToLower(text[m[2]:m[3]])
		if _, ok := allowedTags[name]; !ok {
			return RejectUnknownTag
		}
	}

	if loc := openImage.FindStringIndex(text); loc != nil && outsideCode(text, loc[0]) {
		return RejectOpenImage
	}

	if danglingEmphasis(text) {
		return RejectDanglingEmphasis
	}

	if nestedBrackets(text) {
		return RejectNestedBrackets
	}

	return RejectNone
}

// IsSafeToRender is a convenience wrapper for callers that do not care which
// rule fired.
func IsSafeToRender(text string) bool {
	return CheckSafe(text) == RejectNone
}

// outsideCode reports whether pos falls outside code regions: even fence
// parity on the lines before it, and even backtick parity on the current
// line before it.
func outsideCode(text string, pos int) bool {
	fences := 0
	lineStart := 0
	for i := range pos {
		if text[i] == '\n' {
			if isFenceLine(text[lineStart:i]) {
				fences++
			}
			lineStart = i + 1
		}
	}
	if fences%2 == 1 {
		return false
	}
	ticks := strings.Count(text[lineStart:pos], "`")
	return ticks%2 == 0
}

// danglingEmphasis reports whether text ends in a run of emphasis markers
// whose total count in the input is odd, i.e. an emphasis span that is still
// streaming in.
func danglingEmphasis(text string) bool {
	if text == "" {
		return false
	}
	marker := text[len(text)-1]
	if marker != '*' && marker != '_' {
		return false
	}
	end := len(text) - 1
	if !outsideCode(text, end) {
		return false
	}
	return strings.Count(text, string(marker))%2 == 1
}

// nestedBrackets reports whether a square bracket opens while another one is
// still unclosed, outside code regions. The underlying parser has been seen
// to choke on constructs like "[a [b](c)](d)".
func nestedBrackets(text string) bool {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			if !outsideCode(text, i) {
				continue
			}
			depth++
			if depth > 1 {
				return true
			}
		case ']':
			if depth > 0 {
				depth--
			}
		}
	}
	return false
}
