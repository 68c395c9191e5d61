package upload

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type received struct {
	path  string
	query string
	auth  string
	key   string
	body  string
}

// fakeServer records import requests and answers each with status, or 200
// and a result once status is zero.
func fakeServer(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []received
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, received{
			path:  r.URL.Path,
			query: r.URL.RawQuery,
			auth:  r.Header.Get("Authorization"),
			key:   r.Header.Get("X-API-Key"),
			body:  string(body),
		})
		mu.Unlock()
		if status != 0 {
			http.Error(w, `{"error":"nope"}`, status)
			return
		}
		json.NewEncoder(w).Encode(Result{Received: 2, Written: 2})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), reqs...)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newUploader(t *testing.T, url, dir, unit string, dryRun bool) *Uploader {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { state.Close() })
	return New(NewClient(url, "tok", "key"), state, dir, unit, dryRun, discardLogger())
}

// TestRunPushesNewFilesOnce verifies files are routed by extension and not resent.
func TestRunPushesNewFilesOnce(t *testing.T) {
	srv, reqs := fakeServer(t, 0)
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "csv-data")
	writeFile(t, dir, "nested/b.json", `[]`)
	writeFile(t, dir, "notes.txt", "ignored")

	u := newUploader(t, srv.URL, dir, "minutes", false)
	stats, err := u.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesTotal != 2 || stats.FilesUploaded != 2 || stats.SessionsWritten != 4 {
		t.Errorf("stats = %+v", stats)
	}

	got := reqs()
	if len(got) != 2 {
		t.Fatalf("requests = %d, want 2", len(got))
	}
	if got[0].path != "/api/v1/import/alpha" || got[0].body != "csv-data" || got[0].query != "" {
		t.Errorf("first request = %+v", got[0])
	}
	if got[1].path != "/api/v1/import/legacy" || got[1].query != "unit=minutes" {
		t.Errorf("second request = %+v", got[1])
	}
	if got[0].auth != "Bearer tok" || got[0].key != "key" {
		t.Errorf("credentials = %q %q", got[0].auth, got[0].key)
	}

	again := New(u.client, u.state, dir, "minutes", false, discardLogger())
	stats, err = again.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 2 || len(reqs()) != 2 {
		t.Errorf("rerun stats = %+v, requests = %d", stats, len(reqs()))
	}
}

// TestRunSkipsLegacyWithoutUnit verifies JSON exports need an explicit unit.
func TestRunSkipsLegacyWithoutUnit(t *testing.T) {
	srv, reqs := fakeServer(t, 0)
	dir := t.TempDir()
	writeFile(t, dir, "old.json", `[]`)

	stats, err := newUploader(t, srv.URL, dir, "", false).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 1 || len(reqs()) != 0 {
		t.Errorf("stats = %+v, requests = %d", stats, len(reqs()))
	}
}

// TestRunDryRun verifies nothing is sent or recorded.
func TestRunDryRun(t *testing.T) {
	srv, reqs := fakeServer(t, 0)
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x")

	u := newUploader(t, srv.URL, dir, "", true)
	stats, err := u.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesUploaded != 1 || len(reqs()) != 0 {
		t.Errorf("stats = %+v, requests = %d", stats, len(reqs()))
	}
	hash, _ := HashFile(filepath.Join(dir, "a.csv"))
	if pushed, _ := u.state.IsPushed("a.csv", 1, hash); pushed {
		t.Error("dry run recorded state")
	}
}

// TestPushClientErrorNotRetried verifies a 4xx is returned after one attempt.
func TestPushClientErrorNotRetried(t *testing.T) {
	srv, reqs := fakeServer(t, http.StatusBadRequest)
	c := NewClient(srv.URL, "", "")
	c.backoff = time.Millisecond

	if _, err := c.Push(context.Background(), "alpha", "", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if n := len(reqs()); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

// TestPushServerErrorRetried verifies 5xx responses are retried three times.
func TestPushServerErrorRetried(t *testing.T) {
	srv, reqs := fakeServer(t, http.StatusBadGateway)
	c := NewClient(srv.URL, "", "")
	c.backoff = time.Millisecond

	if _, err := c.Push(context.Background(), "alpha", "", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if n := len(reqs()); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
	if reqs()[0].auth != "" {
		t.Error("unexpected Authorization header")
	}
}

// TestRunFailedFileCounted verifies a rejected file is counted and not recorded.
func TestRunFailedFileCounted(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusBadRequest)
	dir := t.TempDir()
	writeFile(t, dir, "bad.csv", "garbage")

	u := newUploader(t, srv.URL, dir, "", false)
	stats, err := u.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 1 || stats.FilesUploaded != 0 {
		t.Errorf("stats = %+v", stats)
	}
	hash, _ := HashFile(filepath.Join(dir, "bad.csv"))
	if pushed, _ := u.state.IsPushed("bad.csv", 7, hash); pushed {
		t.Error("rejected file recorded as pushed")
	}
}
