package root

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/paths"
	"github.com/quillhq/quill/pkg/session"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a stored chat session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsDelete,
	})

	return cmd
}

func openStore() (session.Store, error) {
	store, err := session.NewSQLiteStore(filepath.Join(paths.GetDataDir(), "sessions.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.GetSessionSummaries(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTITLE")
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), title)
	}
	return w.Flush()
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
	return nil
}
