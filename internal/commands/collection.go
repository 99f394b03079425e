package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/domain"
)

func addCollection(topLevel *cobra.Command, open Opener) {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"collections"},
		Short:   "Manage curated manga collections",
		RunE:    groupHelp,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: run(open, func(cmd *cobra.Command, app *App, _ []string) error {
			cols, err := app.Collections.List()
			if err != nil {
				return err
			}
			printCollections(cmd, cols)
			return nil
		}),
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := app.Collections.Create(args[0], description)
			if err != nil {
				return err
			}
			printf(cmd, "Created collection %d\n", id)
			return nil
		}),
	}
	create.Flags().StringVarP(&description, "description", "d", "", "collection description")

	cmd.AddCommand(list, create, newCollectionEditCmd(open))

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the manga in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.Collections.WithItems(id)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", c.Collection.Name)
			if c.Collection.Description != "" {
				printf(cmd, "%s\n", c.Collection.Description)
			}
			tbl := newTable("ITEM", "MANGA", "TITLE", "BADGE")
			for _, it := range c.Items {
				tbl.AddRow(it.Item.ID, it.Manga.ID, it.Manga.Title, it.Item.Badge)
			}
			printTable(cmd, tbl)
			return nil
		}),
	}

	var badge string
	add := &cobra.Command{
		Use:   "add <collection-id> <manga-id>",
		Short: "Append a manga to a collection",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			itemID, err := app.Collections.AddManga(ids[0], ids[1], badge)
			if err != nil {
				return err
			}
			printf(cmd, "Added item %d\n", itemID)
			return nil
		}),
	}
	add.Flags().StringVarP(&badge, "badge", "b", "", "label shown on the item")

	remove := &cobra.Command{
		Use:   "remove <collection-id> <manga-id>",
		Short: "Remove a manga from a collection",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Collections.RemoveManga(ids[0], ids[1])
		}),
	}

	reorder := &cobra.Command{
		Use:   "reorder <item-id>...",
		Short: "Set the order of collection items",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Collections.Reorder(ids)
		}),
	}

	move := &cobra.Command{
		Use:   "move <item-id> <position>",
		Short: "Set the sort position of one item",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}
			return app.Collections.MoveItem(id, pos)
		}),
	}

	setBadge := &cobra.Command{
		Use:   "badge <item-id> [badge]",
		Short: "Label an item; no badge clears it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			label := ""
			if len(args) == 2 {
				label = args[1]
			}
			return app.Collections.SetBadge(id, label)
		}),
	}

	cover := &cobra.Command{
		Use:   "cover <collection-id> <manga-id>",
		Short: "Pick the manga whose cover represents a collection",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return app.Collections.SetCover(ids[0], ids[1])
		}),
	}

	link := &cobra.Command{
		Use:   "link <collection-id> [category-id...]",
		Short: "Show or replace the categories a collection belongs to",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 1 {
				printf(cmd, "%v\n", app.Collections.Categories(ids[0]))
				return nil
			}
			return app.Collections.SetCategories(ids[0], ids[1:])
		}),
	}

	containing := &cobra.Command{
		Use:   "for <manga-id>",
		Short: "List the collections containing a manga",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cols, err := app.Collections.ForManga(id)
			if err != nil {
				return err
			}
			printCollections(cmd, cols)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a collection and its items",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Collections.Delete(id)
		}),
	}

	cmd.AddCommand(show, add, remove, reorder, move, setBadge, cover, link, containing, del)
	topLevel.AddCommand(cmd)
}

func newCollectionEditCmd(open Opener) *cobra.Command {
	var name, description string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the name or description of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := app.Collections.Get(id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				cur.Name = name
			}
			if cmd.Flags().Changed("description") {
				cur.Description = description
			}
			return app.Collections.Update(id, cur.Name, cur.Description)
		}),
	}
	edit.Flags().StringVarP(&name, "name", "n", "", "new name")
	edit.Flags().StringVarP(&description, "description", "d", "", "new description")
	return edit
}

func printCollections(cmd *cobra.Command, cols []domain.Collection) {
	tbl := newTable("ID", "NAME", "DESCRIPTION")
	for _, c := range cols {
		tbl.AddRow(c.ID, c.Name, c.Description)
	}
	printTable(cmd, tbl)
}
