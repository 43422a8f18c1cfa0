package store

import (
	"context"
	"testing"
	"time"
)

type testConfig struct {
	fileConfig
}

func newTestConfig(path string) Config {
	return &testConfig{fileConfig{Path: path}}
}

func TestPersistenceRoundTripAndClear(t *testing.T) {
	p, err := Load(newTestConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	if _, err := p.ReadToken(); err == nil {
		t.Fatalf("expected empty store to have no token")
	}
	if err := p.Write("tok", []byte(`{"id":"u1"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	tok, err := p.ReadToken()
	if err != nil || tok != "tok" {
		t.Fatalf("token = %q, %v", tok, err)
	}
	user, err := p.ReadUser()
	if err != nil || string(user) != `{"id":"u1"}` {
		t.Fatalf("user = %s, %v", user, err)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := p.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if _, err := p.ReadToken(); err == nil {
		t.Fatalf("token survived clear")
	}
}

func TestPersistenceWatchEmitsSessionChanges(t *testing.T) {
	p, err := Load(newTestConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Write("tok", []byte(`{}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventSessionChanged {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for session change event")
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("PLANNER_CONFIG_PATH", t.TempDir())
	t.Setenv("PLANNER_API_URL", "http://example.test/api/v1/")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIURL() != "http://example.test/api/v1" {
		t.Fatalf("api url = %q", cfg.APIURL())
	}
	if cfg.AuthURL() != "http://example.test/auth/google" {
		t.Fatalf("auth url = %q", cfg.AuthURL())
	}
	if cfg.SidebarBreakpoint() != DefaultSidebarBreakpoint {
		t.Fatalf("breakpoint = %d", cfg.SidebarBreakpoint())
	}
}
