package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/history"
	"github.com/mmcdole/shelf/internal/library"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// View renders the history screen
func (m Model) View() string {
	if m.Width == 0 {
		return ""
	}

	body := strings.Join([]string{
		m.renderTitle(),
		m.renderSectionBar(),
		m.renderSearch(),
		m.renderList(),
		m.renderFooter(),
	}, "\n")

	// Modals replace the list while open
	switch {
	case m.picker.IsVisible():
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.picker.View(m.Width))
	case m.state.Dialog != nil:
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.renderDialog())
	}
	return body
}

func (m Model) renderTitle() string {
	title := styles.TitleStyle.Render("History")
	if m.state.HasExternal {
		label := "hidden"
		if m.state.ShowExternal || !m.state.ScopeEnabled {
			label = "shown"
		}
		title += styles.DimStyle.Render("  non-library: " + label)
	}
	return title
}

// renderSectionBar renders tabs or a dropdown label for the active section
func (m Model) renderSectionBar() string {
	if !m.state.ScopeEnabled || len(m.state.Sections) == 0 {
		return styles.DimStyle.Render(m.state.ScopeMode.String())
	}

	if m.state.NavigationMode == domain.NavigationTabs {
		tabs := make([]string, 0, len(m.state.Sections))
		for _, s := range m.state.Sections {
			label := fmt.Sprintf("%s %d", s.Name, len(m.state.SectionHistories[s.ID]))
			if s.ID == m.state.ActiveSectionID {
				tabs = append(tabs, styles.ActiveTabStyle.Render(label))
			} else {
				tabs = append(tabs, styles.TabStyle.Render(label))
			}
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	}

	name := "None"
	if m.state.ActiveSection != nil {
		name = m.state.ActiveSection.Name
	}
	pos := 0
	for i, s := range m.state.Sections {
		if s.ID == m.state.ActiveSectionID {
			pos = i + 1
			break
		}
	}
	return styles.AccentStyle.Render("▾ "+name) +
		styles.DimStyle.Render(fmt.Sprintf("  %d/%d", pos, len(m.state.Sections)))
}

func (m Model) renderSearch() string {
	if m.searching {
		return m.search.View()
	}
	if m.state.SearchQuery != "" {
		return styles.FilterPromptStyle.Render("/ ") + m.state.SearchQuery
	}
	return ""
}

func (m Model) renderList() string {
	h := m.listHeight()
	lines := make([]string, 0, h)

	switch {
	case !m.state.Loaded:
		lines = append(lines, styles.DimStyle.Render(" Loading..."))
	case len(m.state.Items) == 0 && m.state.SearchQuery != "":
		lines = append(lines, styles.DimStyle.Render(" No history matches \""+m.state.SearchQuery+"\""))
	case len(m.state.Items) == 0:
		lines = append(lines, styles.DimStyle.Render(" Nothing read yet"))
	default:
		end := min(m.offset+h, len(m.state.Items))
		for i := m.offset; i < end; i++ {
			switch row := m.state.Items[i].(type) {
			case history.Header:
				lines = append(lines, styles.DayHeaderStyle.Render(m.dayLabel(row.Date)))
			case history.Item:
				lines = append(lines, m.renderItem(row.Entry, i == m.cursor))
			}
		}
	}

	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// dayLabel names a day header relative to today
func (m Model) dayLabel(day time.Time) string {
	now := m.now().In(m.loc)
	y, mo, d := now.Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, m.loc)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format(m.dateFormat)
	}
}

func (m Model) renderItem(e domain.HistoryEntry, selected bool) string {
	accent, red, dim := styles.Amber, styles.Red, styles.DimGray

	var badges []styles.RowPart
	sourceName := ""
	if m.sources != nil {
		sourceName = m.sources.SourceName(e.SourceID)
	}
	if library.IsMature(e.SourceID, sourceName, e.Genre) {
		badges = append(badges, styles.RowPart{Text: " 18+", Foreground: &red})
	}
	if e.IsExternal() {
		badges = append(badges, styles.RowPart{Text: " ext", Foreground: &dim})
	}

	meta := " " + e.ReadAt.In(m.loc).Format("15:04")
	if e.ChapterNumber >= 0 {
		meta = " Ch. " + formatChapter(e.ChapterNumber) + meta
	}

	fixed := lipgloss.Width(meta) + 2
	for _, b := range badges {
		fixed += lipgloss.Width(b.Text)
	}
	title := styles.Truncate(e.Title, max(m.Width-fixed-1, 1))

	parts := []styles.RowPart{{Text: title}}
	parts = append(parts, badges...)
	parts = append(parts, styles.RowPart{Text: meta, Foreground: &accent})
	return styles.RenderListRow(parts, selected, m.Width)
}

// formatChapter renders 12 as "12" and 12.5 as "12.5"
func formatChapter(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusMsg)
		}
		return styles.SuccessStyle.Render(m.StatusMsg)
	}
	return m.help.View(m.keys)
}

func (m Model) renderDialog() string {
	var b strings.Builder
	switch d := m.state.Dialog.(type) {
	case history.DeleteDialog:
		b.WriteString(styles.ModalTitleStyle.Render("Remove from history"))
		b.WriteString("\n")
		b.WriteString(d.Entry.Title)
		b.WriteString("\n\n")
		b.WriteString(styles.AccentStyle.Render("y") + " this chapter  ")
		b.WriteString(styles.AccentStyle.Render("a") + " all chapters  ")
		b.WriteString(styles.AccentStyle.Render("n") + " cancel")
	case history.DeleteAllDialog:
		b.WriteString(styles.ModalTitleStyle.Render("Clear history"))
		b.WriteString("\n")
		switch {
		case d.Scope == domain.DeleteEverything:
			b.WriteString("Remove all reading history?")
		case m.state.ActiveSection != nil:
			b.WriteString("Remove all history in " + m.state.ActiveSection.Name + "?")
		default:
			b.WriteString("Nothing to remove outside a section.")
		}
		b.WriteString("\n\n")
		b.WriteString(styles.AccentStyle.Render("y") + " confirm  ")
		b.WriteString(styles.AccentStyle.Render("n") + " cancel")
	case history.ChangeCategoryDialog:
		b.WriteString(styles.ModalTitleStyle.Render("Set categories"))
		b.WriteString("\n")
		b.WriteString(d.Entry.Title)
		b.WriteString("\n\n")
		for i, c := range d.Categories {
			box := "[ ] "
			if d.IsSelected(c.ID) {
				box = "[x] "
			}
			line := box + c.Name
			if i == m.catCursor {
				line = styles.AccentStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.AccentStyle.Render("space") + " toggle  ")
		b.WriteString(styles.AccentStyle.Render("y") + " add  ")
		b.WriteString(styles.AccentStyle.Render("n") + " cancel")
	}
	return styles.ModalStyle.Width(min(m.Width-4, 50)).Render(b.String())
}
