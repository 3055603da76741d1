package markdown

import (
	"path"
	"regexp"
	"strings"

	"charm.land/glamour/v2"
	"charm.land/glamour/v2/ansi"
)

// Renderer turns markdown text into a styled terminal view. The production
// implementation delegates to glamour; the Guard treats any implementation as
// opaque and potentially panicking.
type Renderer interface {
	Render(text string) (string, error)
}

// ImageRequest carries everything an image resolver needs to turn an image
// reference into something displayable.
type ImageRequest struct {
	URI      string
	Title    string
	Alt      string
	BasePath string
	Dark     bool
}

// ImageResolver maps an image reference to replacement markdown. Returning
// an empty string keeps the original reference untouched.
type ImageResolver func(ImageRequest) string

// LinkHandler is invoked when the user activates a link in a rendered
// message.
type LinkHandler func(text, href, title string)

// GlamourRenderer renders markdown with glamour using a theme-derived style.
type GlamourRenderer struct {
	tr           *glamour.TermRenderer
	basePath     string
	dark         bool
	resolveImage ImageResolver
	handleLink   LinkHandler
}

// RendererOption configures a GlamourRenderer.
type RendererOption func(*GlamourRenderer)

// WithBasePath sets the base path used to resolve relative image links.
func WithBasePath(base string) RendererOption {
	return func(r *GlamourRenderer) { r.basePath = base }
}

// WithDarkMode records whether the surrounding theme is dark. The flag is
// passed through to the image resolver.
func WithDarkMode(dark bool) RendererOption {
	return func(r *GlamourRenderer) { r.dark = dark }
}

// WithImageResolver sets the callback used to rewrite image references
// before parse.
func WithImageResolver(resolve ImageResolver) RendererOption {
	return func(r *GlamourRenderer) { r.resolveImage = resolve }
}

// WithLinkHandler sets the callback invoked by ActivateLink.
func WithLinkHandler(handle LinkHandler) RendererOption {
	return func(r *GlamourRenderer) { r.handleLink = handle }
}

// NewGlamourRenderer creates a renderer for the given width and style.
func NewGlamourRenderer(width int, style ansi.StyleConfig, opts ...RendererOption) *GlamourRenderer {
	tr, _ := glamour.NewTermRenderer(
		glamour.WithWordWrap(min(width, 120)),
		glamour.WithStyles(style),
	)

	r := &GlamourRenderer{tr: tr}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render resolves image references and hands the text to glamour. Errors and
// panics propagate to the caller; the Guard is responsible for containment.
func (r *GlamourRenderer) Render(text string) (string, error) {
	return r.tr.Render(r.applyImages(text))
}

// ActivateLink forwards a link to the configured handler. Without a handler
// it is a no-op.
func (r *GlamourRenderer) ActivateLink(l Link) {
	if r.handleLink != nil {
		r.handleLink(l.Text, l.Href, l.Title)
	}
}

// imageRef matches a complete image reference: ![alt](uri "title").
var imageRef = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)

func (r *GlamourRenderer) applyImages(text string) string {
	if r.resolveImage == nil {
		return text
	}
	return imageRef.ReplaceAllStringFunc(text, func(ref string) string {
		m := imageRef.FindStringSubmatch(ref)
		replacement := r.resolveImage(ImageRequest{
			Alt:      m[1],
			URI:      m[2],
			Title:    m[3],
			BasePath: r.basePath,
			Dark:     r.dark,
		})
		if replacement == "" {
			return ref
		}
		return replacement
	})
}

// ResolveLocalImage is the default image resolver: relative URIs are joined
// onto the base path and the reference is kept as a labelled link, since the
// terminal cannot display the pixels inline.
func ResolveLocalImage(req ImageRequest) string {
	uri := req.URI
	if req.BasePath != "" && !strings.Contains(uri, "://") && !path.IsAbs(uri) {
		uri = path.Join(req.BasePath, uri)
	}
	label := req.Alt
	if label == "" {
		label = req.Title
	}
	if label == "" {
		label = "image"
	}
	return "[" + label + "](" + uri + ")"
}

// Links extracts the links of a rendered message so the TUI can offer them
// for opening. Order follows appearance in the source text.
func Links(text string) []Link {
	var links []Link
	for _, m := range linkRef.FindAllStringSubmatch(text, -1) {
		links = append(links, Link{Text: m[1], Href: m[2], Title: m[3]})
	}
	return links
}

// Link is one link occurrence in message text.
type Link struct {
	Text  string
	Href  string
	Title string
}

var linkRef = regexp.MustCompile(`(?:^|[^!])\[([^\]]+)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)
