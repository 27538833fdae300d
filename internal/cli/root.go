// Package cli wires configuration, storage and the terminal UI behind the
// simpletasks command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/simpletasks/internal/model"
)

var (
	configPath string
	baseURL    string
	verbose    bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "simpletasks",
		Short: "Manage your tasks from the terminal",
		Long: `simpletasks is a terminal client for the Simple Tasks REST API.

Sign in or register, then browse, add, edit and delete tasks.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/simpletasks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Override the API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newVersionCmd(version))

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// resolveConfigPath returns the --config value or the default location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return model.DefaultConfigPath()
}

// loadConfig reads the config file and applies flag overrides in memory.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, baseURL)
	return cfg, nil
}

func applyOverrides(cfg *model.AppConfig, url string) {
	if url != "" {
		cfg.API.BaseURL = url
	}
}
