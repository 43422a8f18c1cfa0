package store

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PLANNER_CONFIG_PATH", t.TempDir())
	t.Setenv("PLANNER_API_URL", "https://planner.example.com/api/v1/")
	t.Setenv("PLANNER_LAYOUT_SIDEBAR_BREAKPOINT", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.APIURL(); got != "https://planner.example.com/api/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", got)
	}
	if got := cfg.AuthURL(); got != "https://planner.example.com/auth/google" {
		t.Fatalf("unexpected derived auth url %q", got)
	}
	if got := cfg.SidebarBreakpoint(); got != DefaultSidebarBreakpoint {
		t.Fatalf("expected default breakpoint for 0, got %d", got)
	}
	if got := cfg.CalendarID(); got != "primary" {
		t.Fatalf("expected primary calendar, got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got, want := expandHome("~/planner/session"), filepath.Join(home, "planner", "session"); got != want {
		t.Fatalf("expandHome = %q, want %q", got, want)
	}
	if got := expandHome("/var/lib/planner"); got != "/var/lib/planner" {
		t.Fatalf("absolute paths must be kept, got %q", got)
	}
	if got := expandHome("~other/x"); got != "~other/x" {
		t.Fatalf("unexpandable paths must be kept, got %q", got)
	}
}
