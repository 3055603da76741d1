package messages

// Theme messages control theme selection and hot-reload.
type (
	// ChangeThemeMsg applies the specified theme.
	ChangeThemeMsg struct {
		ThemeRef string // Theme reference to apply
	}

	// ThemeChangedMsg notifies components that the theme has changed (for cache invalidation).
	ThemeChangedMsg struct{}

	// ThemeFileChangedMsg notifies TUI that the theme file was modified on disk (hot reload).
	// The TUI should load and apply the theme on the main goroutine to avoid race conditions.
	ThemeFileChangedMsg struct {
		ThemeRef string // The theme ref that was modified
	}
)
