package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mdtabs/internal/config"
	"github.com/jask/mdtabs/internal/database"
	"github.com/jask/mdtabs/internal/database/repository"
	"github.com/jask/mdtabs/internal/loader"
	"github.com/jask/mdtabs/internal/logging"
	"github.com/jask/mdtabs/internal/render"
	"github.com/jask/mdtabs/internal/session"
	"github.com/jask/mdtabs/internal/storage"
	"github.com/jask/mdtabs/internal/tui"
	"github.com/jask/mdtabs/internal/watch"
)

func main() {
	ephemeral := flag.Bool("ephemeral", false, "keep the session in memory only")
	reset := flag.Bool("reset", false, "forget the saved session before starting")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: mdtabs [-ephemeral] [-reset] [file|glob ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closer, err := logging.Open(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: logging to file disabled: %v\n", err)
	}
	defer closer.Close()

	var store storage.Store = storage.NewMemoryStore()
	if !*ephemeral {
		db, err := openDatabase(cfg.Database.Path)
		if err == nil {
			defer db.Close()
			store = repository.NewKVRepo(db)
		} else if fs, ferr := fileStore(); ferr == nil {
			logger.Warn("database unavailable, using file store", slog.Any("error", err))
			store = fs
		} else {
			logger.Warn("session storage unavailable, using memory", slog.Any("error", err), slog.Any("file_error", ferr))
			fmt.Fprintf(os.Stderr, "warn: session will not be saved: %v\n", err)
		}
	}

	adapter := storage.NewAdapter(store,
		storage.WithKey(cfg.Session.Key),
		storage.WithMaxBytes(cfg.Session.MaxBytes),
	)
	if *reset {
		if err := adapter.Reset(ctx); err != nil {
			logger.Warn("session not reset", slog.Any("error", err))
		}
	}

	reg := session.NewRegistry()
	sync := session.NewSynchronizer(adapter, logger)
	sync.Restore(ctx, reg)

	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		watcher, err = watch.New(logger)
		if err != nil {
			logger.Warn("file watching disabled", slog.Any("error", err))
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	app := tui.New(ctx, cfg, tui.Deps{
		Registry:   reg,
		Sync:       sync,
		Terminal:   render.NewTerminal(cfg.Render.Style, cfg.Render.Width, logger),
		HTML:       render.NewHTML(cfg.Render.Style),
		Loader:     loader.Loader{MaxBytes: cfg.Loader.MaxBytes},
		Watcher:    watcher,
		Logger:     logger,
		SaveConfig: config.Save,
	}, flag.Args())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func openDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func fileStore() (*storage.FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return storage.NewFileStore(filepath.Join(dir, "mdtabs", "session"))
}
