package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestHubFetchSingleFile(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/org/repo/resolve/main/weights.gguf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("weights-bytes"))
	}))
	defer srv.Close()

	target := t.TempDir()
	h := NewHubFetcher(srv.URL, zerolog.Nop())
	path, err := h.Fetch(context.Background(), FetchRequest{
		RepoID:    "org/repo",
		Filename:  "weights.gguf",
		TargetDir: target,
		CacheDir:  t.TempDir(),
		Token:     "tok123",
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if path != filepath.Join(target, "weights.gguf") {
		t.Fatalf("unexpected path %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "weights-bytes" {
		t.Fatalf("unexpected content %q", b)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestHubFetchWholeRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/models/org/repo":
			w.Write([]byte(`{"siblings":[{"rfilename":"config.json"},{"rfilename":"weights.gguf"}]}`))
		case "/org/repo/resolve/main/config.json":
			w.Write([]byte(`{}`))
		case "/org/repo/resolve/main/weights.gguf":
			w.Write([]byte("weights"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	target := t.TempDir()
	h := NewHubFetcher(srv.URL, zerolog.Nop())
	path, err := h.Fetch(context.Background(), FetchRequest{
		RepoID:    "org/repo",
		TargetDir: target,
		CacheDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if path != target {
		t.Fatalf("expected target dir %q, got %q", target, path)
	}
	for _, name := range []string{"config.json", "weights.gguf"} {
		if _, err := os.Stat(filepath.Join(target, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestHubFetchEmptyRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"siblings":[]}`))
	}))
	defer srv.Close()

	h := NewHubFetcher(srv.URL, zerolog.Nop())
	_, err := h.Fetch(context.Background(), FetchRequest{RepoID: "org/empty", TargetDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for empty repository")
	}
}

func TestHubFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	h := NewHubFetcher(srv.URL, zerolog.Nop())
	_, err := h.Fetch(context.Background(), FetchRequest{
		RepoID:    "org/missing",
		Filename:  "weights.gguf",
		TargetDir: t.TempDir(),
	})
	if err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}

func TestHubFetchLeavesNoPartialOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	target := t.TempDir()
	cache := t.TempDir()
	h := NewHubFetcher(srv.URL, zerolog.Nop())
	_, err := h.Fetch(context.Background(), FetchRequest{
		RepoID:    "org/repo",
		Filename:  "weights.gguf",
		TargetDir: target,
		CacheDir:  cache,
	})
	if err == nil {
		t.Fatalf("expected error for truncated transfer")
	}
	if _, serr := os.Stat(filepath.Join(target, "weights.gguf")); serr == nil {
		t.Fatalf("truncated artifact placed at final path")
	}
	entries, _ := os.ReadDir(cache)
	if len(entries) != 0 {
		t.Fatalf("partial file left in cache: %v", entries)
	}
}
