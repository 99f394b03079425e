package commands

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/shelf/internal/category"
	"github.com/mmcdole/shelf/internal/collection"
	"github.com/mmcdole/shelf/internal/config"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/prefs"
	"github.com/mmcdole/shelf/internal/store"
)

// OpenApp opens the library under cfg.Library.DataDir and builds its
// services. The returned func closes the store.
func OpenApp(cfg *config.Config, logger *slog.Logger) (*App, func() error, error) {
	defaults, err := cfg.PreferenceDefaults()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.Open(cfg.Library.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open library: %w", err)
	}

	categories := category.NewService(db, logger)
	if _, err := categories.HideEmptyDefault(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare categories: %w", err)
	}

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Categories:  categories,
		Collections: collection.NewService(db, logger),
		Queries:     library.NewQueries(db, logger),
		Commands:    library.NewCommands(db, logger),
		Prefs:       prefs.NewLibrary(db, defaults, logger),
	}
	return app, db.Close, nil
}
