package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewCalendar returns a Calendar service authorised with the desktop client
// in credsPath. The user token is cached at tokenPath; when it is missing the
// consent link is written to out and a loopback server waits for the code.
func NewCalendar(ctx context.Context, credsPath, tokenPath string, out io.Writer) (*calendar.Service, error) {
	b, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("export: read client credentials %s: %w", credsPath, err)
	}
	cfg, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("export: parse client credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = tokenFromWeb(ctx, cfg, out)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			return nil, err
		}
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("export: calendar service: %w", err)
	}
	return srv, nil
}

func tokenFromWeb(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("export: listen for oauth redirect: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://%s/oauth2callback", ln.Addr())

	state := fmt.Sprintf("planner-%d", time.Now().UnixNano())
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/oauth2callback", func(c *gin.Context) {
		if c.Query("state") != state {
			c.String(http.StatusBadRequest, "State mismatch.")
			return
		}
		code := c.Query("code")
		if code == "" {
			c.String(http.StatusBadRequest, "Authorization code not found.")
			select {
			case errs <- errors.New("export: authorization code not found in redirect"):
			default:
			}
			return
		}
		c.String(http.StatusOK, "Calendar access granted. You can close this window.")
		select {
		case codes <- code:
		default:
		}
	})

	srv := &http.Server{Handler: router, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	link := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	_, _ = fmt.Fprintf(out, "Open this URL to allow planner to manage calendar events:\n%s\n", link)

	select {
	case code := <-codes:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("export: exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("export: authorization timed out")
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("export: decode token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("export: create token dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("export: cache token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
