package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nhle/simpletasks/internal/credential"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return logout(cmd.OutOrStdout(), credential.NewKeyringStore(cfg.Session))
}

func logout(w io.Writer, session credential.Store) error {
	token, err := session.Get()
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if token == "" {
		fmt.Fprintln(w, "Not signed in.")
		return nil
	}
	if err := session.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Fprintln(w, "Signed out.")
	return nil
}
