package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/simpletasks/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently dispatched actions from the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of actions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(cfg.Journal.Path); os.IsNotExist(err) {
		fmt.Fprintln(out, "No journal found. Set journal.enabled to start recording.")
		return nil
	}

	s, err := store.NewSQLiteStore(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer s.Close()

	return printHistory(cmd.Context(), out, s, limit)
}

func printHistory(ctx context.Context, w io.Writer, s store.Store, limit int) error {
	recs, err := s.RecentActions(ctx, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No actions recorded.")
		return nil
	}

	fmt.Fprintf(w, "Recent actions (%d):\n\n", len(recs))
	for _, r := range recs {
		fmt.Fprintf(w, "  %s  %-16s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Flow,
			r.Action)
	}
	return nil
}
