package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"tableflip.dev/planner/pkg/api"
	"tableflip.dev/planner/pkg/logging"
	"tableflip.dev/planner/pkg/session"
	"tableflip.dev/planner/pkg/store"
)

var errSignedOut = errors.New("not signed in, run planner login")

// env is everything a command needs to talk to the backend.
type env struct {
	cfg     store.Config
	persist store.Persistence
	sess    *session.Session
	client  *api.Client
	log     *slog.Logger
	closer  io.Closer

	// expired receives a value each time the client cleared the session
	// after a 401.
	expired chan struct{}
}

// loadEnv reads the config, opens the log file and restores the session.
func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.Open(cfg.LogFile(), logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	sess := session.New(p)
	if err := sess.Load(); err != nil && !errors.Is(err, session.ErrNoSession) {
		log.Warn("session load failed", "err", err)
	}
	expired := make(chan struct{}, 1)
	onExpired := func() {
		log.Warn("session expired, cleared")
		select {
		case expired <- struct{}{}:
		default:
		}
	}
	return &env{
		cfg:     cfg,
		persist: p,
		sess:    sess,
		client:  api.New(cfg.APIURL(), sess, api.WithLogger(log), api.OnUnauthorized(onExpired)),
		log:     log,
		closer:  closer,
		expired: expired,
	}, nil
}

// loadSignedIn is loadEnv for commands that call the API.
func loadSignedIn() (*env, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if !e.sess.Authenticated() {
		e.Close()
		return nil, errSignedOut
	}
	return e, nil
}

func (e *env) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// explain rewrites errors whose default text does not tell the user what
// to do next.
func explain(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return errors.New("session expired, run planner login")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
