// Package commands wires the shelf command line: the interactive history
// browser on the root command and subcommands that edit the library.
package commands

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/category"
	"github.com/mmcdole/shelf/internal/collection"
	"github.com/mmcdole/shelf/internal/config"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/prefs"
)

// App is an opened library with the services commands act on.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Categories  *category.Service
	Collections *collection.Service
	Queries     *library.Queries
	Commands    *library.Commands
	Prefs       *prefs.Library
}

// Opener opens the library for a single command. The returned func
// releases it.
type Opener func(cmd *cobra.Command) (*App, func() error, error)

// Browser runs the interactive history screen.
type Browser func(cmd *cobra.Command, app *App) error

// New builds the root command. Without a subcommand it opens the browser.
func New(version string, open Opener, browse Browser) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shelf",
		Short:        "Manga library and reading history on the command line.",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(app *App) error {
				return browse(cmd, app)
			})
		},
	}
	cmd.SetVersionTemplate("shelf {{.Version}}\n")

	AddCommands(cmd, open)
	return cmd
}

func AddCommands(topLevel *cobra.Command, open Opener) {
	addCategory(topLevel, open)
	addCollection(topLevel, open)
	addManga(topLevel, open)
	addSource(topLevel, open)
	addRead(topLevel, open)
	addHistory(topLevel, open)
}

// withApp opens the library, runs fn and releases the library again.
func withApp(cmd *cobra.Command, open Opener, fn func(app *App) error) error {
	app, release, err := open(cmd)
	if err != nil {
		return err
	}
	err = fn(app)
	if cerr := release(); err == nil {
		err = cerr
	}
	return err
}

// run adapts fn into a RunE that opens the library first.
func run(open Opener, fn func(cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, open, func(app *App) error {
			return fn(cmd, app, args)
		})
	}
}

func groupHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newTable starts a table with a bold header row.
func newTable(header ...string) *uitable.Table {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = bold.Sprint(h)
	}
	tbl.AddRow(row...)
	return tbl
}

func printTable(cmd *cobra.Command, tbl *uitable.Table) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
