package login

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tableflip.dev/planner/pkg/session"
)

type memStore struct {
	token string
	user  []byte
}

func (m *memStore) ReadToken() (string, error) { return m.token, nil }
func (m *memStore) ReadUser() ([]byte, error)  { return m.user, nil }
func (m *memStore) Write(token string, user []byte) error {
	m.token, m.user = token, user
	return nil
}
func (m *memStore) Clear() error {
	m.token, m.user = "", nil
	return nil
}

func callbackQuery(token, user string) string {
	q := url.Values{}
	if token != "" {
		q.Set("token", token)
	}
	if user != "" {
		q.Set("user", user)
	}
	return CallbackPath + "?" + q.Encode()
}

func TestCallbackSavesSession(t *testing.T) {
	st := &memStore{}
	sess := session.New(st)
	results := make(chan result, 1)
	router := NewRouter(sess, nil, results)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, callbackQuery("tok", `{"id":"u1","email":"ada@example.com"}`), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Signed in") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	r := <-results
	if r.err != nil || r.user.Email != "ada@example.com" {
		t.Fatalf("result = %+v", r)
	}
	if st.token != "tok" || !sess.Authenticated() {
		t.Fatalf("session not persisted: %+v", st)
	}
}

func TestCallbackRejectsMissingUser(t *testing.T) {
	sess := session.New(&memStore{})
	results := make(chan result, 1)
	router := NewRouter(sess, nil, results)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, callbackQuery("tok", ""), nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	r := <-results
	if !errors.Is(r.err, session.ErrCallback) {
		t.Fatalf("err = %v", r.err)
	}
	if sess.Authenticated() {
		t.Fatalf("session should stay logged out")
	}
}

func TestAuthLink(t *testing.T) {
	got, err := AuthLink("http://localhost:8080/auth/google?prompt=select", "http://127.0.0.1:5173/auth/callback")
	if err != nil {
		t.Fatalf("AuthLink: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("redirect_uri") != "http://127.0.0.1:5173/auth/callback" || u.Query().Get("prompt") != "select" {
		t.Fatalf("link = %s", got)
	}
	if _, err := AuthLink("not a url", "x"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestDoCompletesOnCallback(t *testing.T) {
	sess := session.New(&memStore{})
	var out strings.Builder
	addrCh := make(chan net.Addr, 1)
	l := &Login{
		Session:     sess,
		Addr:        "127.0.0.1:0",
		AuthURL:     "http://backend.test/auth/google",
		Out:         &out,
		Timeout:     5 * time.Second,
		OnListening: func(a net.Addr) { addrCh <- a },
	}

	done := make(chan error, 1)
	go func() {
		_, err := l.Do(context.Background())
		done <- err
	}()

	addr := <-addrCh
	resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, callbackQuery("tok", `{"email":"ada@example.com"}`)))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	_ = resp.Body.Close()

	if err := <-done; err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(out.String(), "redirect_uri=") {
		t.Fatalf("auth link not printed: %q", out.String())
	}
	if u, ok := sess.User(); !ok || u.Email != "ada@example.com" {
		t.Fatalf("user = %+v", u)
	}
}
