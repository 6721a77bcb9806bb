package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codewithkim/todo-api/internal/config"
	"github.com/codewithkim/todo-api/internal/testutil"

	"github.com/gin-gonic/gin"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{App: config.AppConfig{Env: "test", Version: "v0.0.1"}}
	return NewWithRepo(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), testutil.NewTestRepo(t))
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	w := serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestTodoRoutesMountedTwice(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/todos", "/api/todos"} {
		w := serve(a, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}

	body := strings.NewReader(`{"title":"A"}`)
	w := serve(a, httptest.NewRequest(http.MethodPost, "/api/todos", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/todos = %d %s", w.Code, w.Body.String())
	}
	w = serve(a, httptest.NewRequest(http.MethodGet, "/todos?search=a", nil))
	if !strings.Contains(w.Body.String(), `"title":"A"`) {
		t.Errorf("both prefixes should share one store, got %s", w.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	a := newTestApp(t)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/version", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = serve(a, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t)
	serve(a, httptest.NewRequest(http.MethodGet, "/todos/999", nil))

	w := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	want := `todo_http_requests_total{method="GET",route="/todos/:id",status="404"} 1`
	if !strings.Contains(w.Body.String(), want) {
		t.Errorf("metrics output missing %s", want)
	}
}

func TestPanicBecomesJSON500(t *testing.T) {
	a := newTestApp(t)
	a.Router().GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(a, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "internal server error") {
		t.Errorf("panic = %d %s", w.Code, w.Body.String())
	}
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	a := newTestApp(t)
	var order []int
	a.closers = []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("close order = %v, want [2 1]", order)
	}
}

func TestCloseHonoursContext(t *testing.T) {
	a := newTestApp(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	a.closers = []func(){func() { <-release }}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("close = %v, want a deadline error", err)
	}
}
