package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/domain"
)

// askCategory is the default category preference value that always asks.
const askCategory int64 = -1

func addCategory(topLevel *cobra.Command, open Opener) {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage library categories",
		RunE:    groupHelp,
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: run(open, func(cmd *cobra.Command, app *App, _ []string) error {
			cats, err := app.Categories.UserCategories()
			if all {
				cats, err = app.Categories.All()
			}
			if err != nil {
				return err
			}
			def := app.Prefs.DefaultCategory.Get()
			tbl := newTable("ID", "NAME", "HIDDEN", "DEFAULT")
			for _, c := range cats {
				tbl.AddRow(c.ID, c.VisualName(), yesNo(c.Hidden), yesNo(c.ID == def))
			}
			printTable(cmd, tbl)
			return nil
		}),
	}
	list.Flags().BoolVar(&all, "all", false, "include the system default category")

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category at the end of the list",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := app.Categories.Create(args[0])
			if err != nil {
				return err
			}
			printf(cmd, "Created category %d\n", id)
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Categories.Rename(id, args[1])
		}),
	}

	reorder := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the category order",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Categories.Reorder(ids)
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its manga fall back to the default category",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Categories.Delete(id)
		}),
	}

	assign := &cobra.Command{
		Use:   "assign <manga-id> [category-id...]",
		Short: "Replace the categories of a manga; none moves it to the default category",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Categories.SetMangaCategories(ids[0], ids[1:])
		}),
	}

	def := &cobra.Command{
		Use:   "default [category-id|ask]",
		Short: "Show or set the category manga join when added to the library",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			if len(args) == 0 {
				printf(cmd, "%s\n", describeDefault(app, app.Prefs.DefaultCategory.Get()))
				return nil
			}
			id := askCategory
			if args[0] != "ask" {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
				if _, ok := findCategory(app, id); !ok && id != domain.UncategorizedID {
					return domain.ErrCategoryNotFound
				}
			}
			return app.Prefs.DefaultCategory.Set(id)
		}),
	}

	cmd.AddCommand(list, add, rename, newHiddenCmd(open, true), newHiddenCmd(open, false), reorder, del, assign, def)
	topLevel.AddCommand(cmd)
}

func newHiddenCmd(open Opener, hidden bool) *cobra.Command {
	use, short := "unhide <id>", "Show a hidden category again"
	if hidden {
		use, short = "hide <id>", "Hide a category from the library"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Categories.SetHidden(id, hidden)
		}),
	}
}

// findCategory looks up a user category by id.
func findCategory(app *App, id int64) (domain.Category, bool) {
	cats, err := app.Categories.UserCategories()
	if err != nil {
		return domain.Category{}, false
	}
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

func describeDefault(app *App, id int64) string {
	if id == domain.UncategorizedID {
		return domain.DefaultCategoryLabel
	}
	if c, ok := findCategory(app, id); ok {
		return fmt.Sprintf("%s (%d)", c.Name, c.ID)
	}
	return "ask"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
