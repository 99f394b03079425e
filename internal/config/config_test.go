package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/prefs"
)

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := DefaultConfig()
	want.Library.DataDir = "/srv/shelf"
	want.History.ScopeMode = "source"
	want.History.NavigationMode = "tabs"
	want.History.SectionNavigation = false
	want.UI.Timezone = "Europe/Berlin"
	want.Logging.Level = "DEBUG"

	if err := SaveConfigTo(want, dir); err != nil {
		t.Fatalf("SaveConfigTo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("SHELF_LOGGING_LEVEL", "ERROR")
	t.Setenv("SHELF_HISTORY_SCOPE_MODE", "status")

	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Logging.Level != "ERROR" || cfg.History.ScopeMode != "status" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigFrom_ExpandsHomeInPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	yaml := "library:\n  data_dir: ~/manga\nlogging:\n  file: ~/logs/shelf.log\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if want := filepath.Join(home, "manga"); cfg.Library.DataDir != want {
		t.Errorf("data_dir = %q, want %q", cfg.Library.DataDir, want)
	}
	if want := filepath.Join(home, "logs", "shelf.log"); cfg.Logging.File != want {
		t.Errorf("logging.file = %q, want %q", cfg.Logging.File, want)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := map[string]string{
		"~":            home,
		"~/shelf":      filepath.Join(home, "shelf"),
		"/srv/shelf":   "/srv/shelf",
		"relative/dir": "relative/dir",
		"~other/shelf": "~other/shelf",
		"":             "",
	}
	for in, want := range tests {
		got, err := ExpandPath(in)
		if err != nil {
			t.Fatalf("ExpandPath(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadConfigFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("history: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFrom(dir); err == nil {
		t.Error("expected an error for malformed config")
	}
}

func TestPreferenceDefaults(t *testing.T) {
	tests := []struct {
		name    string
		history HistoryConfig
		want    prefs.Defaults
		wantErr bool
	}{
		{
			name:    "defaults",
			history: DefaultConfig().History,
			want: prefs.Defaults{
				ScopeMode:         domain.ScopeByCategory,
				NavigationMode:    domain.NavigationDropdown,
				SectionNavigation: true,
			},
		},
		{
			name:    "source tabs with hidden",
			history: HistoryConfig{ScopeMode: "Source", NavigationMode: "tabs", ShowHiddenSections: true},
			want: prefs.Defaults{
				ScopeMode:      domain.ScopeBySource,
				NavigationMode: domain.NavigationTabs,
				ShowHidden:     true,
			},
		},
		{
			name:    "blank navigation falls back to dropdown",
			history: HistoryConfig{ScopeMode: "ungrouped"},
			want:    prefs.Defaults{ScopeMode: domain.ScopeUngrouped, NavigationMode: domain.NavigationDropdown},
		},
		{name: "unknown scope", history: HistoryConfig{ScopeMode: "genre"}, wantErr: true},
		{name: "unknown navigation", history: HistoryConfig{NavigationMode: "carousel"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{History: tt.history}
			got, err := cfg.PreferenceDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("defaults (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("empty timezone = %v, %v; want Local", loc, err)
	}

	cfg.UI.Timezone = "UTC"
	if loc, err := cfg.Location(); err != nil || loc.String() != "UTC" {
		t.Errorf("UTC = %v, %v", loc, err)
	}

	cfg.UI.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
