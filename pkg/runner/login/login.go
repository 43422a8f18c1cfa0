// Package login completes the backend's browser login by receiving its
// redirect on a local callback server.
package login

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"

	"tableflip.dev/planner/pkg/session"
)

const CallbackPath = "/auth/callback"

// Login serves CallbackPath on Addr until the backend redirects back with a
// token, then persists the session.
type Login struct {
	Session *session.Session
	Addr    string
	AuthURL string
	Out     io.Writer
	Logger  *slog.Logger
	Timeout time.Duration

	OnListening func(net.Addr)
}

type result struct {
	user session.User
	err  error
}

// Do blocks until a callback arrives, ctx ends or the timeout passes.
func (l *Login) Do(ctx context.Context) (session.User, error) {
	if l.Session == nil {
		return session.User{}, errors.New("login: session is required")
	}
	out := l.Out
	if out == nil {
		out = color.Output
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return session.User{}, fmt.Errorf("login: listen on %s: %w", l.Addr, err)
	}
	if l.OnListening != nil {
		l.OnListening(ln.Addr())
	}

	results := make(chan result, 1)
	srv := &http.Server{
		Handler:      NewRouter(l.Session, l.Logger, results),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- result{err: fmt.Errorf("login: serve: %w", err)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	link, err := AuthLink(l.AuthURL, "http://"+ln.Addr().String()+CallbackPath)
	if err != nil {
		return session.User{}, err
	}
	_, _ = fmt.Fprintln(out, "Open this URL in your browser to sign in:")
	_, _ = color.New(color.Bold).Fprintln(out, link)

	select {
	case r := <-results:
		return r.user, r.err
	case <-ctx.Done():
		return session.User{}, ctx.Err()
	case <-time.After(timeout):
		return session.User{}, errors.New("login: timed out waiting for the browser")
	}
}

// AuthLink appends redirect_uri to the backend's auth URL.
func AuthLink(authURL, redirect string) (string, error) {
	u, err := url.Parse(authURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("login: invalid auth url %q", authURL)
	}
	q := u.Query()
	q.Set("redirect_uri", redirect)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewRouter returns the callback handler. Each request publishes one result
// without blocking.
func NewRouter(sess *session.Session, log *slog.Logger, results chan<- result) *gin.Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	publish := func(r result) {
		select {
		case results <- r:
		default:
		}
	}

	router.GET(CallbackPath, func(c *gin.Context) {
		token, user, err := session.FromCallback(c.Request.URL.Query())
		if err != nil {
			log.Warn("login callback rejected", "err", err)
			c.Data(http.StatusBadRequest, "text/html; charset=utf-8", page("Sign-in failed", err.Error()+". Return to the terminal and run planner login again."))
			publish(result{err: err})
			return
		}
		if err := sess.Save(token, user); err != nil {
			log.Error("login save failed", "err", err)
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", page("Sign-in failed", err.Error()))
			publish(result{err: err})
			return
		}
		log.Info("login complete", "email", user.Email)
		c.Data(http.StatusOK, "text/html; charset=utf-8", page("Signed in", "You can close this window and return to the terminal."))
		publish(result{user: user})
	})
	return router
}

func page(title, body string) []byte {
	return []byte(fmt.Sprintf("<!doctype html><html><head><title>%[1]s</title></head><body><h1>%[1]s</h1><p>%[2]s</p></body></html>",
		html.EscapeString(title), html.EscapeString(body)))
}
