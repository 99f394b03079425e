package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/shelf/internal/domain"
)

var statusNames = map[string]int64{
	"unknown":   domain.StatusUnknown,
	"ongoing":   domain.StatusOngoing,
	"completed": domain.StatusCompleted,
	"licensed":  domain.StatusLicensed,
	"finished":  domain.StatusPublishingFinished,
	"cancelled": domain.StatusCancelled,
	"hiatus":    domain.StatusOnHiatus,
}

func parseStatus(s string) (int64, error) {
	status, ok := statusNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

func addManga(topLevel *cobra.Command, open Opener) {
	cmd := &cobra.Command{
		Use:   "manga",
		Short: "Add manga and manage the library",
		RunE:  groupHelp,
	}

	var (
		source    int64
		author    string
		genres    []string
		status    string
		inLibrary bool
	)
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a manga",
		Args:  cobra.ExactArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			code, err := parseStatus(status)
			if err != nil {
				return err
			}
			id, err := app.Commands.AddManga(domain.Manga{
				Source:   source,
				Title:    strings.TrimSpace(args[0]),
				Author:   author,
				Genre:    genres,
				Status:   code,
				Favorite: inLibrary,
			})
			if err != nil {
				return err
			}
			printf(cmd, "Added manga %d\n", id)
			return nil
		}),
	}
	add.Flags().Int64VarP(&source, "source", "s", 0, "source id (0 is the local source)")
	add.Flags().StringVarP(&author, "author", "a", "", "author")
	add.Flags().StringSliceVarP(&genres, "genre", "g", nil, "genres, comma separated")
	add.Flags().StringVar(&status, "status", "unknown", "publishing status: ongoing, completed, licensed, finished, cancelled, hiatus or unknown")
	add.Flags().BoolVarP(&inLibrary, "library", "l", false, "add to the library right away")

	list := &cobra.Command{
		Use:   "list",
		Short: "List manga in the library",
		Args:  cobra.NoArgs,
		RunE: run(open, func(cmd *cobra.Command, app *App, _ []string) error {
			lib, err := app.Queries.LibraryManga()
			if err != nil {
				return err
			}
			tbl := newTable("ID", "TITLE", "SOURCE", "CATEGORIES")
			for _, m := range lib {
				tbl.AddRow(m.Manga.ID, m.Manga.Title, app.Queries.SourceName(m.Manga.Source), joinIDs(m.Categories))
			}
			printTable(cmd, tbl)
			return nil
		}),
	}

	cmd.AddCommand(add, newFavoriteCmd(open, true), newFavoriteCmd(open, false), list)
	topLevel.AddCommand(cmd)
}

func newFavoriteCmd(open Opener, favorite bool) *cobra.Command {
	use, short := "unfavorite <manga-id>", "Remove a manga from the library"
	if favorite {
		use, short = "favorite <manga-id> [category-id...]", "Add a manga to the library in the given categories"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if !favorite {
				return app.Commands.UpdateFavorite(ids[0], false)
			}
			if len(ids) > 1 {
				if err := app.Categories.SetMangaCategories(ids[0], ids[1:]); err != nil {
					return err
				}
			}
			return app.Commands.UpdateFavorite(ids[0], true)
		}),
	}
}

func addSource(topLevel *cobra.Command, open Opener) {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Register manga sources",
		RunE:  groupHelp,
	}

	var lang string
	add := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Register or rename a source",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Commands.RegisterSource(domain.Source{ID: id, Name: args[1], Lang: lang})
		}),
	}
	add.Flags().StringVar(&lang, "lang", "", "source language code")

	cmd.AddCommand(add)
	topLevel.AddCommand(cmd)
}

func addRead(topLevel *cobra.Command, open Opener) {
	var (
		chapterID int64
		at        string
		duration  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "read <manga-id> <chapter-number>",
		Short: "Record reading a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			mangaID, err := parseID(args[0])
			if err != nil {
				return err
			}
			chapter, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid chapter number %q", args[1])
			}
			readAt := time.Now()
			if at != "" {
				if readAt, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}
			if _, err := app.Queries.Manga(mangaID); err != nil {
				return err
			}
			id, err := app.Commands.RecordRead(mangaID, chapterID, chapter, readAt, duration)
			if err != nil {
				return err
			}
			printf(cmd, "Recorded read %d\n", id)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&chapterID, "chapter-id", 0, "chapter id")
	cmd.Flags().StringVar(&at, "at", "", "read time in RFC 3339 (default now)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "time spent reading")

	topLevel.AddCommand(cmd)
}

func addHistory(topLevel *cobra.Command, open Opener) {
	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "Print the latest read of every manga, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(open, func(cmd *cobra.Command, app *App, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			loc, err := app.Config.Location()
			if err != nil {
				return err
			}
			entries, err := app.Queries.History(query)
			if err != nil {
				return err
			}
			tbl := newTable("ID", "READ", "TITLE", "CHAPTER", "LIBRARY")
			for _, e := range entries {
				tbl.AddRow(e.ID, e.ReadAt.In(loc).Format("2006-01-02 15:04"), e.Title,
					strconv.FormatFloat(e.ChapterNumber, 'f', -1, 64), yesNo(e.InLibrary))
			}
			printTable(cmd, tbl)
			return nil
		}),
	}
	topLevel.AddCommand(cmd)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
