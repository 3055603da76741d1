package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/pkg/tui/styles"
)

func TestLinksExtraction(t *testing.T) {
	t.Parallel()

	text := "See [docs](https://example.com/docs \"Docs\") and [home](https://example.com).\n" +
		"Images are not links: ![logo](logo.png)"

	links := Links(text)
	require.Len(t, links, 2)
	assert.Equal(t, Link{Text: "docs", Href: "https://example.com/docs", Title: "Docs"}, links[0])
	assert.Equal(t, Link{Text: "home", Href: "https://example.com"}, links[1])
}

func TestLinksEmptyText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Links("no links here"))
}

func TestLinksAtStartOfText(t *testing.T) {
	t.Parallel()

	links := Links("[docs](https://example.com) trailing")
	require.Len(t, links, 1)
	assert.Equal(t, Link{Text: "docs", Href: "https://example.com"}, links[0])
}

func TestResolveLocalImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  ImageRequest
		want string
	}{
		{
			name: "relative uri joined onto base path",
			req:  ImageRequest{URI: "img/a.png", Alt: "chart", BasePath: "/tmp/session"},
			want: "[chart](/tmp/session/img/a.png)",
		},
		{
			name: "absolute uri left alone",
			req:  ImageRequest{URI: "/var/a.png", Alt: "chart", BasePath: "/tmp"},
			want: "[chart](/var/a.png)",
		},
		{
			name: "remote uri left alone",
			req:  ImageRequest{URI: "https://example.com/a.png", Title: "remote", BasePath: "/tmp"},
			want: "[remote](https://example.com/a.png)",
		},
		{
			name: "falls back to generic label",
			req:  ImageRequest{URI: "a.png"},
			want: "[image](a.png)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveLocalImage(tt.req))
		})
	}
}

func TestActivateLinkInvokesHandler(t *testing.T) {
	t.Parallel()

	var got Link
	r := NewGlamourRenderer(80, styles.MarkdownStyle(), WithLinkHandler(func(text, href, title string) {
		got = Link{Text: text, Href: href, Title: title}
	}))

	r.ActivateLink(Link{Text: "docs", Href: "https://example.com", Title: "Docs"})
	assert.Equal(t, Link{Text: "docs", Href: "https://example.com", Title: "Docs"}, got)
}

func TestActivateLinkWithoutHandlerIsNoop(t *testing.T) {
	t.Parallel()

	r := NewGlamourRenderer(80, styles.MarkdownStyle())
	r.ActivateLink(Link{Href: "https://example.com"})
}

func TestImageResolverRewritesReferences(t *testing.T) {
	t.Parallel()

	r := NewGlamourRenderer(80, styles.MarkdownStyle(),
		WithBasePath("/data"),
		WithImageResolver(ResolveLocalImage),
	)

	out, err := r.Render("before ![pic](shots/p.png) after")
	require.NoError(t, err)
	assert.Contains(t, out, "pic")
	assert.NotContains(t, out, "![pic]")
}
