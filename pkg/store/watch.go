package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventSessionChanged indicates the token or user was written, typically
	// by `planner login` running in another terminal.
	EventSessionChanged EventType = iota

	// EventSessionCleared indicates the token was removed.
	EventSessionCleared
)

// Event is emitted by Persistence.Watch when the session files change.
type Event struct {
	Type EventType
}

func (e Event) String() string {
	if e.Type == EventSessionCleared {
		return "session cleared"
	}
	return "session changed"
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel. The channel is closed once ctx is done or the watcher
// encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	if err := watcher.Add(p.basePath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	events := make(chan Event, 8)

	go func() {
		defer close(events)
		defer func() {
			if err := watcher.Close(); err != nil {
				slog.Warn("store: watcher close", "err", err)
			}
		}()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Consumer busy; the next event still reflects the latest state.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("store: watcher error", "err", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(evt.Name) != keyToken {
					continue
				}
				if evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					throttle.Enqueue(Event{Type: EventSessionCleared}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventSessionChanged}, send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications; only the last event of
// a burst is delivered.
type eventThrottle struct {
	mu    sync.Mutex
	timer *time.Timer
	last  Event
	delay time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{delay: delay}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.last = ev
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	ev := t.last
	t.timer = nil
	t.mu.Unlock()
	send(ev)
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
