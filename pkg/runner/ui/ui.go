// Package ui launches the interactive terminal planner.
package ui

import (
	"context"
	"errors"
	"log/slog"

	"tableflip.dev/planner/pkg/session"
	"tableflip.dev/planner/pkg/store"
	teaui "tableflip.dev/planner/pkg/tui/app"
	"tableflip.dev/planner/pkg/tui/layout"
)

type UI struct {
	Config      store.Config
	Persistence store.Persistence
	Session     *session.Session
	API         teaui.Service
	Logger      *slog.Logger
	// Expired signals that the API client cleared the session after a 401.
	Expired <-chan struct{}
}

func (u *UI) Do(ctx context.Context) error {
	if u.API == nil || u.Session == nil {
		return errors.New("ui: api and session are required")
	}
	breakpoint := store.DefaultSidebarBreakpoint
	if u.Config != nil {
		breakpoint = u.Config.SidebarBreakpoint()
	}
	if u.Logger != nil {
		u.Logger.Info("ui starting", "authenticated", u.Session.Authenticated(), "sidebar_breakpoint", breakpoint)
	}
	return teaui.Run(ctx, teaui.Options{
		API:     u.API,
		Session: u.Session,
		Store:   u.Persistence,
		Layout:  layout.Policy{SidebarBreakpoint: breakpoint},
		Logger:  u.Logger,
		Expired: u.Expired,
	})
}
