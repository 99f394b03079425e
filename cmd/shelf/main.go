package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/shelf/internal/commands"
	"github.com/mmcdole/shelf/internal/config"
	"github.com/mmcdole/shelf/internal/history"
	"github.com/mmcdole/shelf/internal/log"
	"github.com/mmcdole/shelf/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := commands.New(Version, openLibrary, browse).Execute(); err != nil {
		os.Exit(1)
	}
}

// openLibrary loads the configuration, sets up logging and opens the store.
func openLibrary(cmd *cobra.Command) (*commands.App, func() error, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, closeLog = log.NullLogger(), func() error { return nil }
	}
	slog.SetDefault(logger)

	logger.Info("opening library", "version", Version, "command", cmd.CommandPath(), "dataDir", cfg.Library.DataDir)

	app, closeStore, err := commands.OpenApp(cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	release := func() error {
		err := closeStore()
		closeLog()
		return err
	}
	return app, release, nil
}

// browse runs the interactive history screen.
func browse(cmd *cobra.Command, app *commands.App) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("shelf needs an interactive terminal; see shelf --help for the non-interactive commands")
	}

	loc, err := app.Config.Location()
	if err != nil {
		return err
	}
	logger := app.Logger

	screen := history.NewScreen(history.Config{
		History:    app.Queries,
		Remover:    app.Commands,
		Favorites:  app.Commands,
		Categories: app.Categories,
		Sources:    app.Queries,
		Prefs:      app.Prefs,
		LastUsed:   history.NewLastUsedCategory(app.Prefs.LastUsedCategoryID),
		Location:   loc,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go screen.Run(ctx, history.Upstream{
		Categories: app.Categories.Subscribe(ctx),
		Library:    app.Queries.SubscribeLibraryManga(ctx),
	})

	// Create TUI model
	model := tui.NewModel(ctx, screen, app.Queries, tui.Options{
		DateFormat: app.Config.UI.DateFormat,
		Location:   loc,
	})

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
