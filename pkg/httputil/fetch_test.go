package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/routetrace/pkg/errors"
)

func testFetcher(m *Mirror) *Fetcher {
	f := NewFetcher(m, log.New(io.Discard))
	f.Delay = time.Millisecond
	return f
}

// flaky fails the first n requests with status, then serves body.
func flaky(t *testing.T, n int32, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= n {
			w.WriteHeader(status)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"https://example.org/a.json", true},
		{"http://localhost:8000/a.json", true},
		{"data/Transports.json", false},
		{"/srv/https.json", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.path); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFetcherGet(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		status    int
		wantCalls int32
		wantCode  errs.Code
	}{
		{"OK", 0, 0, 1, ""},
		{"RetriesServerError", 2, http.StatusBadGateway, 3, ""},
		{"RetriesTooManyRequests", 1, http.StatusTooManyRequests, 2, ""},
		{"GivesUp", 5, http.StatusServiceUnavailable, 3, errs.ErrCodeSourceUnavailable},
		{"NotFound", 5, http.StatusNotFound, 1, errs.ErrCodeFileNotFound},
		{"Forbidden", 5, http.StatusForbidden, 1, errs.ErrCodeSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := flaky(t, tt.failures, tt.status, "[]")
			data, err := testFetcher(nil).Get(context.Background(), srv.URL)
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantCode == "" {
				if err != nil || string(data) != "[]" {
					t.Fatalf("Get = %q, %v", data, err)
				}
				return
			}
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestFetcherMirror(t *testing.T) {
	m, err := NewMirror(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	srv, calls := flaky(t, 0, 0, "fresh")
	f := testFetcher(m)

	for range 2 {
		data, err := f.Get(context.Background(), srv.URL)
		if err != nil || string(data) != "fresh" {
			t.Fatalf("Get = %q, %v", data, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, second Get should hit the mirror", calls.Load())
	}
}

func TestFetcherServesStaleMirror(t *testing.T) {
	m, err := NewMirror(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	srv, _ := flaky(t, 100, http.StatusInternalServerError, "")
	if err := m.Set(srv.URL, []byte("old")); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(m.path(srv.URL), past, past); err != nil {
		t.Fatal(err)
	}

	data, err := testFetcher(m).Get(context.Background(), srv.URL)
	if err != nil || string(data) != "old" {
		t.Fatalf("Get = %q, %v; want stale copy", data, err)
	}
}

func TestMirrorGet(t *testing.T) {
	m, _ := NewMirror(t.TempDir(), time.Minute)
	if data, err := m.Get("https://example.org/x"); data != nil || err != nil {
		t.Errorf("miss = %q, %v", data, err)
	}
	_ = m.Set("https://example.org/x", []byte("x"))
	past := time.Now().Add(-2 * time.Minute)
	_ = os.Chtimes(m.path("https://example.org/x"), past, past)
	if data, err := m.Get("https://example.org/x"); string(data) != "x" || !errors.Is(err, ErrExpired) {
		t.Errorf("expired = %q, %v", data, err)
	}
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("boom")}
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}

func TestRetryPermanentError(t *testing.T) {
	calls := 0
	perm := errors.New("permanent")
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return perm
	})
	if err != perm || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}
