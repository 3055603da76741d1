package root

import (
	"fmt"
	"log/slog"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/app"
	"github.com/quillhq/quill/pkg/client"
	"github.com/quillhq/quill/pkg/paths"
	"github.com/quillhq/quill/pkg/session"
	"github.com/quillhq/quill/pkg/tui"
	"github.com/quillhq/quill/pkg/tui/components/markdown"
	"github.com/quillhq/quill/pkg/tui/messages"
	"github.com/quillhq/quill/pkg/tui/styles"
	"github.com/quillhq/quill/pkg/userconfig"
)

type runFlags struct {
	session string
	model   string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the chat TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.session, "session", "s", "", "Resume a stored session by ID")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Override the configured model")

	return cmd
}

func runChat(cmd *cobra.Command, flags runFlags) error {
	ctx := cmd.Context()

	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}

	theme, err := styles.LoadTheme(cfg.Theme)
	if err != nil {
		slog.Warn("Failed to load configured theme, using default", "theme", cfg.Theme, "error", err)
		theme = styles.DarkTheme()
	}
	styles.ApplyTheme(theme)

	c, err := client.New(cfg)
	if err != nil {
		return err
	}

	store, err := session.NewSQLiteStore(filepath.Join(paths.GetDataDir(), "sessions.db"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close session store", "error", err)
		}
	}()

	var sess *session.Session
	if flags.session != "" {
		if sess, err = store.GetSession(ctx, flags.session); err != nil {
			return fmt.Errorf("failed to resume session %s: %w", flags.session, err)
		}
	} else {
		sess = session.New()
		if err := store.AddSession(ctx, sess); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	a := app.New(cfg, c, store, sess)

	// The initial width is a placeholder, the first WindowSizeMsg rebuilds
	// the renderer at the real terminal width.
	guard := markdown.NewGuard(markdown.NewGlamourRenderer(
		80,
		styles.MarkdownStyle(),
		markdown.WithDarkMode(theme.Dark),
	))

	m := tui.New(a, guard)

	// Alt screen and mouse mode are set per frame on the tea.View.
	p := tea.NewProgram(m, tea.WithContext(ctx))

	watcher := styles.NewThemeWatcher(func(ref string) {
		p.Send(messages.ThemeFileChangedMsg{ThemeRef: ref})
	})
	if err := watcher.Watch(cfg.Theme); err != nil {
		slog.Debug("Theme file watching unavailable", "error", err)
	}
	defer watcher.Stop()

	go a.Subscribe(ctx, p)

	_, err = p.Run()
	return err
}
