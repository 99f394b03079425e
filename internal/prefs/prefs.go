// Package prefs exposes typed, observable preferences persisted in the store.
package prefs

import (
	"context"
	"log/slog"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/stream"
)

// Backend persists raw preference values.
type Backend interface {
	GetPref(key string, dest interface{}) bool
	SetPref(key string, value interface{}) error
}

// Preference is a single typed key with a default value.
// Reads never fail: a missing or undecodable value yields the default.
type Preference[T comparable] struct {
	key     string
	def     T
	backend Backend
	value   *stream.Value[T]
}

func newPreference[T comparable](backend Backend, key string, def T) *Preference[T] {
	v := def
	if !backend.GetPref(key, &v) {
		v = def
	}
	return &Preference[T]{key: key, def: def, backend: backend, value: stream.NewValue(v)}
}

func (p *Preference[T]) Key() string { return p.key }

func (p *Preference[T]) Get() T {
	v, _ := p.value.Get()
	return v
}

// Set persists v and notifies observers. Setting the current value is a no-op.
func (p *Preference[T]) Set(v T) error {
	if p.Get() == v {
		return nil
	}
	if err := p.backend.SetPref(p.key, v); err != nil {
		return err
	}
	p.value.Set(v)
	return nil
}

// Changes emits the current value and every later distinct value.
func (p *Preference[T]) Changes(ctx context.Context) <-chan T {
	return p.value.Subscribe(ctx)
}

// Library holds the library and history preferences.
type Library struct {
	GroupLibraryBy           *Preference[int]
	LastUsedHistorySectionID *Preference[int64]
	LastUsedCategoryID       *Preference[int64]
	LastUsedCategory         *Preference[int]
	HistorySectionNavigation *Preference[bool]
	CategoryNavigationMode   *Preference[domain.NavigationMode]
	ShowHiddenCategories     *Preference[bool]
	DefaultCategory          *Preference[int64]
}

// Defaults seeds preferences that have never been written.
type Defaults struct {
	ScopeMode         domain.ScopeMode
	NavigationMode    domain.NavigationMode
	SectionNavigation bool
	ShowHidden        bool
}

// NewLibrary binds the library preferences to backend.
func NewLibrary(backend Backend, defaults Defaults, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Library{
		GroupLibraryBy:           newPreference(backend, "pref_group_library_by", defaults.ScopeMode.LibraryGroup()),
		LastUsedHistorySectionID: newPreference(backend, "last_used_history_section_id", int64(0)),
		LastUsedCategoryID:       newPreference(backend, "last_used_category_id", domain.UncategorizedID),
		LastUsedCategory:         newPreference(backend, "last_used_category", 0),
		HistorySectionNavigation: newPreference(backend, "history_section_navigation", defaults.SectionNavigation),
		CategoryNavigationMode:   newPreference(backend, "category_navigation_mode", defaults.NavigationMode),
		ShowHiddenCategories:     newPreference(backend, "show_hidden_categories", defaults.ShowHidden),
		DefaultCategory:          newPreference(backend, "default_category", int64(-1)),
	}
	logger.Debug("loaded library preferences",
		"scopeMode", domain.ScopeModeFromLibraryGroup(l.GroupLibraryBy.Get()),
		"navigationMode", l.CategoryNavigationMode.Get())
	return l
}

// ScopeModeChanges maps the grouping preference to distinct scope modes.
func (l *Library) ScopeModeChanges(ctx context.Context) <-chan domain.ScopeMode {
	return stream.Map(ctx, l.GroupLibraryBy.Changes(ctx), domain.ScopeModeFromLibraryGroup)
}
