package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/petr-muller/jironimo/internal/config"
	"github.com/petr-muller/jironimo/internal/jironimo/jira"
	"github.com/petr-muller/jironimo/internal/jironimo/service"
	"github.com/petr-muller/jironimo/internal/jironimo/storage"
	"github.com/petr-muller/jironimo/internal/mappings"
)

const logFileName = "jironimo.log"

// app holds everything a command needs to talk to JIRA
type app struct {
	cfg      *config.Config
	client   *jira.Client
	service  *service.Service
	store    *storage.Store
	mappings *mappings.Mappings

	closeLog func() error
}

// newApp loads the configuration and wires the client, the service and the
// stores. When logToFile is set and no log file is configured, logs go to a
// file in the config directory.
func newApp(logToFile bool) (*app, error) {
	cfg, err := config.Load(jiraOptions.ConfigFile, jiraOptions.ConfigOption())
	if err != nil {
		return nil, err
	}

	if logToFile && cfg.Logging.File == "" {
		dir := config.MustJironimoConfigDir()
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create config directory: %w", err)
		}
		cfg.Logging.File = filepath.Join(dir, logFileName)
	}
	closeLog, err := config.SetupLogging(cfg.Logging)
	if err != nil {
		return nil, err
	}

	client, err := jira.NewClient(cfg.Account.JiraAccount(), jira.WithRateLimit(cfg.Account.RateLimit, 1))
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("cannot create JIRA client: %w", err)
	}

	colors, err := mappings.LoadMappings()
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("cannot load color mappings: %w", err)
	}

	dataDir, err := storage.JironimoDataDir()
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("cannot determine data directory: %w", err)
	}

	return &app{
		cfg:      cfg,
		client:   client,
		service:  service.NewService(client, colors, nil),
		store:    storage.NewStore(dataDir),
		mappings: colors,
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() {
	_ = a.closeLog()
}
