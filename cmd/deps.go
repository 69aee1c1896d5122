package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/courseflow/internal/catalog"
	"github.com/abhisek/courseflow/internal/config"
	"github.com/abhisek/courseflow/internal/feedback"
	"github.com/abhisek/courseflow/internal/llm"
	"github.com/abhisek/courseflow/internal/logger"
	"github.com/abhisek/courseflow/internal/progress"
	"github.com/abhisek/courseflow/internal/store"
)

// deps holds what a command needs once config is resolved.
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	catalog  *catalog.Catalog
	progress *progress.Service
}

func (d *deps) Close() {
	if d.store != nil {
		d.store.Close()
	}
	if d.log != nil {
		d.log.Sync()
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, falling back to the
// default XDG location.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStoreOnly opens the database without loading the catalog.
func openStoreOnly(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if d.store, err = store.Open(dbPath); err != nil {
		d.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return d, nil
}

// setup opens the database and loads the catalog. The TUI logs to a file
// next to the database unless log.file is set.
func setup(cmd *cobra.Command, tui bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	logFile := cfg.LogFile
	if tui && logFile == "" {
		logFile = filepath.Join(filepath.Dir(dbPath), "courseflow.log")
	}
	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Level: cfg.LogLevel, OutputPath: logFile})
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log.With("student", cfg.StudentID)}

	if d.store, err = store.Open(dbPath); err != nil {
		d.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d.catalog, err = catalog.Load(cfg.CatalogPath); err != nil {
		d.Close()
		return nil, err
	}
	for _, issue := range d.catalog.Issues() {
		d.log.Warn("catalog question will not be graded", "issue", issue)
	}

	d.progress = progress.NewService(d.catalog, d.store.ProgressRepo(), d.store.LedgerRepo(), d.store.EventRepo(), d.log)
	return d, nil
}

// newFeedback builds the feedback service, or returns nil when feedback is
// disabled or no provider is configured.
func newFeedback(ctx context.Context, d *deps) *feedback.Service {
	if !d.cfg.FeedbackEnabled {
		return nil
	}
	cfg, ok := d.cfg.LLM.Discover()
	if !ok {
		d.log.Warn("feedback is enabled but no LLM API key was found")
		return nil
	}
	provider, err := llm.NewProvider(ctx, cfg, d.store.EventRepo(), d.log)
	if err != nil {
		d.log.Warn("LLM provider not configured", "error", err)
		return nil
	}
	return feedback.NewService(provider, feedback.DefaultConfig(), d.log)
}
