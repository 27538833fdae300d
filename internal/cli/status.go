package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nhle/simpletasks/internal/credential"
	"github.com/nhle/simpletasks/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and API settings",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return printStatus(cmd.OutOrStdout(), cfg, resolveConfigPath(), credential.NewKeyringStore(cfg.Session))
}

func printStatus(w io.Writer, cfg *model.AppConfig, path string, session credential.Store) error {
	fmt.Fprintf(w, "Config:   %s\n", path)
	fmt.Fprintf(w, "API:      %s\n", cfg.API.BaseURL)

	token, err := session.Get()
	switch {
	case err != nil:
		fmt.Fprintf(w, "Session:  unavailable (%v)\n", err)
	case token == "":
		fmt.Fprintln(w, "Session:  signed out")
	default:
		fmt.Fprintln(w, "Session:  signed in")
	}

	if cfg.Journal.Enabled {
		fmt.Fprintf(w, "Journal:  %s\n", cfg.Journal.Path)
	} else {
		fmt.Fprintln(w, "Journal:  disabled")
	}
	return nil
}
