package markdown

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyRenderer counts render calls and fails on demand.
type spyRenderer struct {
	calls    int
	lastText string
	failOn   string
	panicOn  string
}

func (s *spyRenderer) Render(text string) (string, error) {
	s.calls++
	s.lastText = text
	switch text {
	case s.failOn:
		return "", errors.New("boom")
	case s.panicOn:
		panic("renderer assertion")
	}
	return "rich:" + text, nil
}

func TestFingerprintDeterminism(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FingerprintOf("hello"), FingerprintOf("hello"))
	assert.NotEqual(t, FingerprintOf("hello"), FingerprintOf("hello!"))
	assert.NotEqual(t, FingerprintOf(""), FingerprintOf(" "))
}

func TestGuardCachesSuccessfulRenders(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{}
	g := NewGuard(spy)

	first := g.View("hello **world**")
	second := g.View("hello **world**")

	assert.Equal(t, first, second)
	assert.False(t, first.Plain)
	assert.Equal(t, 1, spy.calls, "unchanged content must not re-render")

	g.View("hello **world**!")
	assert.Equal(t, 2, spy.calls, "changed content must re-render")
}

func TestGuardFailurePermanence(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{failOn: "X"}
	g := NewGuard(spy)

	res := g.View("X")
	assert.True(t, res.Plain)
	assert.True(t, res.Downgraded)
	assert.Equal(t, "X", res.View)
	require.Equal(t, 1, spy.calls)

	// Every subsequent pass short-circuits without touching the renderer.
	for range 5 {
		res = g.View("X")
		assert.True(t, res.Plain)
		assert.False(t, res.Downgraded)
	}
	assert.Equal(t, 1, spy.calls)

	// Other content still renders rich.
	res = g.View("Y")
	assert.False(t, res.Plain)
	assert.Equal(t, "rich:Y", res.View)
}

func TestGuardRecoversFromRendererPanic(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{panicOn: "X"}
	g := NewGuard(spy)

	var res Result
	require.NotPanics(t, func() { res = g.View("X") })
	assert.True(t, res.Plain)
	assert.True(t, res.Downgraded)
	assert.Equal(t, "X", res.View)

	res = g.View("X")
	assert.False(t, res.Downgraded)
	assert.Equal(t, 1, spy.calls)
}

func TestGuardPrecheckSkipIsNotAFailure(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{}
	g := NewGuard(spy)

	res := g.View("before <function_calls> after")
	assert.True(t, res.Plain)
	assert.False(t, res.Downgraded)
	assert.Equal(t, RejectUnknownTag, res.Reason)
	assert.Zero(t, spy.calls, "precheck rejection must not invoke the renderer")

	// The rejection is preventive: no failure registered, so the completed
	// version of the content renders rich.
	res = g.View("before `<function_calls>` after")
	assert.False(t, res.Plain)
	assert.Equal(t, 1, spy.calls)
}

func TestGuardUnterminatedImageDegradesToLiteralText(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{}
	g := NewGuard(spy)

	input := "Check this: ![alt](http://x/y.png"
	res := g.View(input)

	assert.True(t, res.Plain)
	assert.Equal(t, RejectOpenImage, res.Reason)
	assert.Equal(t, input, res.View, "fallback must be the literal input")
	assert.Zero(t, spy.calls)
}

func TestGuardSanitizesBeforeRender(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{}
	g := NewGuard(spy)

	res := g.View("Some `code")
	assert.False(t, res.Plain)
	assert.Equal(t, "Some `code`", spy.lastText)
}

func TestGuardCacheEvictAllOnOverflow(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{}
	g := NewGuard(spy, WithCacheLimit(3))

	for i := range 3 {
		g.View(fmt.Sprintf("message %d", i))
	}
	require.Equal(t, 3, spy.calls)

	// Cached keys do not trigger eviction.
	g.View("message 0")
	assert.Equal(t, 3, spy.calls)

	// A new key at capacity drops the whole cache.
	g.View("message 3")
	assert.Equal(t, 4, spy.calls)
	g.View("message 0")
	assert.Equal(t, 5, spy.calls, "previous entries were evicted")
}

func TestGuardSetRendererDropsCacheKeepsFailures(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{failOn: "X"}
	g := NewGuard(spy)

	g.View("hello")
	g.View("X")

	next := &spyRenderer{}
	g.SetRenderer(next)

	g.View("hello")
	assert.Equal(t, 1, next.calls, "render cache must not survive a renderer swap")

	res := g.View("X")
	assert.True(t, res.Plain)
	assert.Equal(t, 1, next.calls, "failure registry survives a renderer swap")
}

func TestGuardWrapsPlainFallback(t *testing.T) {
	t.Parallel()

	spy := &spyRenderer{failOn: "a very long line of text that should wrap"}
	g := NewGuard(spy, WithWrapWidth(10))

	res := g.View("a very long line of text that should wrap")
	assert.True(t, res.Plain)
	assert.Contains(t, res.View, "\n")
}
