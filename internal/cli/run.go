package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nhle/simpletasks/internal/api"
	"github.com/nhle/simpletasks/internal/app"
	"github.com/nhle/simpletasks/internal/credential"
	"github.com/nhle/simpletasks/internal/flow"
	"github.com/nhle/simpletasks/internal/logging"
	"github.com/nhle/simpletasks/internal/model"
	"github.com/nhle/simpletasks/internal/store"
	"github.com/nhle/simpletasks/internal/ui/tasklist"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Path:    cfg.Log.Path,
		Level:   cfg.Log.Level,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	session := credential.NewKeyringStore(cfg.Session)
	client := api.NewClient(cfg.API.BaseURL, session, time.Duration(cfg.API.TimeoutSec)*time.Second)

	observers := flow.Observers{logging.Observer(logger)}
	if cfg.Journal.Enabled {
		journal, closeJournal, err := openJournal(cfg.Journal, logger)
		if err != nil {
			return err
		}
		defer closeJournal()
		observers = append(observers, journal)
	}

	m := app.New(client, session, appOptions(cfg, logger, observers))

	logger.Info("starting", "base_url", cfg.API.BaseURL)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// appOptions maps configuration onto the root model's options.
func appOptions(cfg *model.AppConfig, logger *log.Logger, obs flow.Observer) app.Options {
	return app.Options{
		Tasks: tasklist.Options{
			DefaultDue:           time.Duration(cfg.Tasks.DefaultDueHours) * time.Hour,
			LogoutOnUnauthorized: cfg.Session.LogoutOnUnauthorized,
		},
		Observer: obs,
		Logger:   logger,
		BaseURL:  cfg.API.BaseURL,
	}
}

// openJournal opens the SQLite journal and starts its writer. The returned
// func flushes pending actions and closes the database.
func openJournal(cfg model.JournalConfig, logger *log.Logger) (*store.Journal, func(), error) {
	s, err := store.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}
	j := store.NewJournal(s, logger)
	closeFn := func() {
		_ = j.Close()
		if err := s.Close(); err != nil {
			logger.Error("closing journal", "err", err)
		}
	}
	return j, closeFn, nil
}
