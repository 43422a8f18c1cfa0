package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/planner/pkg/store"
)

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

func startWatchCmd(parent context.Context, persist store.Persistence) tea.Cmd {
	if persist == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := persist.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

type sessionExpiredMsg struct{}

func (m *Model) waitForExpiry() tea.Cmd {
	if m.expired == nil {
		return nil
	}
	ch, done := m.expired, m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-ch:
			return sessionExpiredMsg{}
		case <-done:
			return nil
		}
	}
}
