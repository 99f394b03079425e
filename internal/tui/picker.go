package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/search"
	"github.com/mmcdole/shelf/internal/tui/styles"
)

// SectionPicker is the dropdown for choosing a history section by name
type SectionPicker struct {
	visible  bool
	input    textinput.Model
	sections []domain.Section
	matches  []search.SectionMatch
	cursor   int
}

// NewSectionPicker creates a hidden picker
func NewSectionPicker() SectionPicker {
	ti := textinput.New()
	ti.Placeholder = "Filter sections..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Prompt = "> "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return SectionPicker{input: ti}
}

// Show opens the picker over sections with the cursor on activeID
func (p *SectionPicker) Show(sections []domain.Section, activeID int64) {
	p.visible = true
	p.sections = sections
	p.input.SetValue("")
	p.input.Focus()
	p.refilter()
	for i, m := range p.matches {
		if m.Section.ID == activeID {
			p.cursor = i
			break
		}
	}
}

// Hide dismisses the picker
func (p *SectionPicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the picker is shown
func (p SectionPicker) IsVisible() bool {
	return p.visible
}

// Matches returns the sections matching the current filter, best first
func (p SectionPicker) Matches() []search.SectionMatch {
	return p.matches
}

func (p *SectionPicker) refilter() {
	p.matches = search.RankSections(p.input.Value(), p.sections)
	p.cursor = 0
}

// Update handles input events, returns (picker, cmd, chosen section or nil)
func (p SectionPicker) Update(msg tea.Msg) (SectionPicker, tea.Cmd, *domain.Section) {
	if !p.visible {
		return p, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if p.cursor < len(p.matches) {
				sec := p.matches[p.cursor].Section
				p.Hide()
				return p, nil, &sec
			}
			return p, nil, nil
		case "esc":
			p.Hide()
			return p, nil, nil
		case "up", "ctrl+p", "ctrl+k":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, nil
		case "down", "ctrl+n", "ctrl+j":
			if p.cursor < len(p.matches)-1 {
				p.cursor++
			}
			return p, nil, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.refilter()
	}
	return p, cmd, nil
}

// View renders the picker
func (p SectionPicker) View(width int) string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Go to section"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.matches) == 0 {
		b.WriteString(styles.DimStyle.Render("No matching sections"))
	}
	for i, m := range p.matches {
		name := highlightMatches(m.Section.Name, m.MatchedIndexes)
		if i == p.cursor {
			b.WriteString(styles.AccentStyle.Render("> ") + name)
		} else {
			b.WriteString("  " + name)
		}
		if i < len(p.matches)-1 {
			b.WriteString("\n")
		}
	}

	return styles.ModalStyle.Width(min(width-4, 40)).Render(b.String())
}

// highlightMatches styles the runes of s starting at the matched byte offsets
func highlightMatches(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(styles.MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
