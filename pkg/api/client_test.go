package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/session"
	"tableflip.dev/planner/pkg/task"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(nil)
	if err := s.Save("secret", session.User{ID: "u1"}); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListTasksSendsBearerAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		if r.URL.Path != "/api/v1/tasks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":"t1","title":"A","status":"todo"},{"id":"t2","title":"B","status":"done"}]`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/v1/", newSession(t), WithLogger(quietLogger()))
	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].Status != task.StatusDone {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sess := newSession(t)
	hooked := false
	c := New(srv.URL, sess, WithLogger(quietLogger()), OnUnauthorized(func() { hooked = true }))
	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if sess.Authenticated() {
		t.Fatalf("session should be cleared after 401")
	}
	if !hooked {
		t.Fatalf("unauthorized hook not called")
	}

	// The next call fails locally without a token.
	if _, err := c.ListTasks(context.Background()); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("second call err = %v", err)
	}
}

func TestErrorBodyDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not_found","message":"Task not found"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	_, err := c.GetTask(context.Background(), "missing")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v", err, err)
	}
	if apiErr.Code != "not_found" || apiErr.Message != "Task not found" || !IsNotFound(err) {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestPatchSendsOnlyPresentFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if strings.TrimSpace(string(body)) != `{"status":"in_progress"}` {
			t.Errorf("body = %s", body)
		}
		_, _ = io.WriteString(w, `{"id":"t1","title":"A","status":"in_progress"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	got, err := c.PatchTask(context.Background(), "t1", task.StatusPatch(task.StatusInProgress))
	if err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	if got.Status != task.StatusInProgress {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestDeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	if err := c.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestApproveItemEmbedsDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/interpretation-items/i1/approve" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req interpretation.ApproveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Data.Title() != "Edited" {
			t.Errorf("draft title = %q", req.Data.Title())
		}
		_, _ = io.WriteString(w, `{"resource_id":"t9"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	id, err := c.ApproveItem(context.Background(), "i1", interpretation.Data{"title": "Edited"})
	if err != nil {
		t.Fatalf("ApproveItem: %v", err)
	}
	if id != "t9" {
		t.Fatalf("resource id = %q", id)
	}
}

func TestApproveItemRequiresResourceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"resource_id":""}`)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	id, err := c.ApproveItem(context.Background(), "i1", nil)
	if !errors.Is(err, ErrNoResource) {
		t.Fatalf("err = %v, want ErrNoResource", err)
	}
	if id != "" {
		t.Fatalf("resource id = %q", id)
	}
}

func TestListInterpretationsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "20" || r.URL.Query().Get("offset") != "0" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"interpretations":[{"id":"a","input_text":"x"}],"total":1,"limit":20,"offset":0}`)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t), WithLogger(quietLogger()))
	page, err := c.ListInterpretations(context.Background(), 0, -5)
	if err != nil {
		t.Fatalf("ListInterpretations: %v", err)
	}
	if len(page.Interpretations) != 1 || page.HasMore() {
		t.Fatalf("page = %+v", page)
	}
}
