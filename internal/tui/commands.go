package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/history"
)

// Command factories for async operations

// WaitForStateCmd blocks until the screen publishes a new state
func WaitForStateCmd(ch <-chan history.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return StateMsg{State: st}
	}
}

// WaitForEventCmd blocks until the screen sends an event
func WaitForEventCmd(ch <-chan history.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return EventMsg{Event: e}
	}
}

// DeleteEntryCmd removes a single read event
func DeleteEntryCmd(screen Screen, entry domain.HistoryEntry) tea.Cmd {
	return func() tea.Msg {
		if err := screen.DeleteEntry(entry); err != nil {
			return ErrMsg{Err: err, Context: "removing history entry"}
		}
		return StatusMsg{Message: "Removed: " + entry.Title}
	}
}

// DeleteAllForMangaCmd removes all read events of a manga
func DeleteAllForMangaCmd(screen Screen, entry domain.HistoryEntry) tea.Cmd {
	return func() tea.Msg {
		if err := screen.DeleteAllForManga(entry.MangaID); err != nil {
			return ErrMsg{Err: err, Context: "removing manga history"}
		}
		return StatusMsg{Message: "Removed all history of " + entry.Title}
	}
}

// ClearHistoryCmd clears the active section or everything. Success is
// reported through EventHistoryCleared.
func ClearHistoryCmd(screen Screen, scope domain.DeletionScope) tea.Cmd {
	return func() tea.Msg {
		if err := screen.ClearHistory(scope); err != nil {
			return ErrMsg{Err: err, Context: "clearing history"}
		}
		return nil
	}
}

// AddFavoriteCmd adds a manga outside the library to it, or opens the
// category dialog when the user has to choose.
func AddFavoriteCmd(screen Screen, entry domain.HistoryEntry) tea.Cmd {
	return func() tea.Msg {
		added, err := screen.AddFavorite(entry)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding to library"}
		}
		if !added {
			return dialogOpenedMsg{}
		}
		return StatusMsg{Message: "Added to library: " + entry.Title}
	}
}

// MoveToCategoriesCmd applies the chosen categories and adds the manga to
// the library
func MoveToCategoriesCmd(screen Screen, entry domain.HistoryEntry, categoryIDs []int64) tea.Cmd {
	return func() tea.Msg {
		if err := screen.MoveToCategoriesAndAddToLibrary(entry, categoryIDs); err != nil {
			return ErrMsg{Err: err, Context: "adding to library"}
		}
		return StatusMsg{Message: "Added to library: " + entry.Title}
	}
}

// SelectSectionCmd switches the active section
func SelectSectionCmd(screen Screen, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := screen.SelectSection(id); err != nil {
			return ErrMsg{Err: err, Context: "selecting section"}
		}
		return nil
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
