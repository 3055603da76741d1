package markdown

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// DefaultCacheLimit bounds the render cache. When the cache is full and a
// new fingerprint arrives, the whole cache is dropped; distinct message
// content is unbounded, the memory for it must not be.
const DefaultCacheLimit = 50

// Result is the outcome of one Guard.View pass.
type Result struct {
	// View is always a displayable string, rich or plain.
	View string
	// Plain is true when the content was degraded to plain text.
	Plain bool
	// Downgraded is true when this pass observed a render failure and
	// registered the fingerprint. The component should schedule a repaint
	// for the next frame rather than mutating state mid-build.
	Downgraded bool
	// Reason names the precheck rule that refused the content, if any.
	Reason RejectReason
}

// Guard wraps a Renderer in an error boundary with two process-wide caches:
// a failure registry that permanently demotes content known to crash the
// renderer, and a bounded cache of successful renders keyed by content
// fingerprint.
//
// A Guard is owned by the application's composition root and injected into
// the rendering components. All methods are safe for concurrent use; in
// practice Bubble Tea confines calls to the program goroutine.
type Guard struct {
	mu        sync.Mutex
	renderer  Renderer
	failures  map[Fingerprint]struct{}
	cache     map[Fingerprint]cacheEntry
	limit     int
	wrapWidth int
}

// cacheEntry keeps the sanitized text next to the view so a cache hit can be
// confirmed by equality instead of trusting the hash alone.
type cacheEntry struct {
	text string
	view string
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithCacheLimit overrides the render cache capacity.
func WithCacheLimit(n int) GuardOption {
	return func(g *Guard) { g.limit = n }
}

// WithWrapWidth word-wraps plain-text fallbacks to the given width. Zero
// leaves fallback text untouched.
func WithWrapWidth(w int) GuardOption {
	return func(g *Guard) { g.wrapWidth = w }
}

// NewGuard creates a Guard around r.
func NewGuard(r Renderer, opts ...GuardOption) *Guard {
	g := &Guard{
		renderer: r,
		failures: make(map[Fingerprint]struct{}),
		cache:    make(map[Fingerprint]cacheEntry),
		limit:    DefaultCacheLimit,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetRenderer swaps the underlying renderer (width or theme change) and
// drops the render cache, whose views were produced by the old renderer.
// The failure registry survives: failures are a property of the content,
// not of the renderer configuration.
func (g *Guard) SetRenderer(r Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renderer = r
	clear(g.cache)
}

// SetWrapWidth updates the wrap width for plain-text fallbacks.
func (g *Guard) SetWrapWidth(w int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wrapWidth = w
}

// View renders raw through the defensive pipeline and always returns a
// displayable view. Render failures never escape: they are logged, recorded
// by fingerprint and silently degraded to plain text.
func (g *Guard) View(raw string) Result {
	sanitized := Sanitize(raw)
	fp := FingerprintOf(sanitized)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, failed := g.failures[fp]; failed {
		return Result{View: g.plainText(raw), Plain: true}
	}

	if entry, ok := g.cache[fp]; ok && entry.text == sanitized {
		return Result{View: entry.view}
	}

	if reason := CheckSafe(sanitized); reason != RejectNone {
		// A preventive skip, not an observed failure: the registry stays
		// untouched so a later, completed version of the content can still
		// render rich.
		slog.Debug("markdown precheck rejected content", "reason", reason, "fingerprint", fp)
		return Result{View: g.plainText(raw), Plain: true, Reason: reason}
	}

	view, err := g.renderSafely(sanitized)
	if err != nil {
		g.failures[fp] = struct{}{}
		slog.Warn("markdown render failed, demoting content to plain text", "fingerprint", fp, "error", err)
		return Result{View: g.plainText(raw), Plain: true, Downgraded: true}
	}

	if len(g.cache) >= g.limit {
		if _, present := g.cache[fp]; !present {
			clear(g.cache)
		}
	}
	g.cache[fp] = cacheEntry{text: sanitized, view: view}

	return Result{View: view}
}

// renderSafely invokes the renderer and converts panics into errors. The
// underlying engine is third-party code fed adversarial input; a panic here
// must not take the UI frame down with it.
func (g *Guard) renderSafely(text string) (view string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("markdown renderer panicked: %v", r)
		}
	}()
	return g.renderer.Render(text)
}

func (g *Guard) plainText(raw string) string {
	if g.wrapWidth > 0 {
		return ansi.Wordwrap(raw, g.wrapWidth, "")
	}
	return raw
}
