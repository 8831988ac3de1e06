package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.yaml", "addr: \":9090\"\nmodels_dir: /data/models\nmax_concurrent_downloads: 2\ncors_enabled: true\ncors_allowed_origins: [\"*\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.ModelsDir != "/data/models" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.MaxConcurrentDownloads != 2 {
		t.Fatalf("expected 2 downloads, got %d", cfg.MaxConcurrentDownloads)
	}
	if !cfg.CORSEnabled || len(cfg.CORSAllowedOrigins) != 1 {
		t.Fatalf("cors config not parsed: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.json", `{"addr":":9091","hub_base_url":"https://hub.example","log_level":"debug"}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9091" || cfg.HubBaseURL != "https://hub.example" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.toml", "addr = \":9092\"\ndata_dir = \"/var/lib/modelmgrd\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9092" || cfg.DataDir != "/var/lib/modelmgrd" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	p := writeFile(t, t.TempDir(), "cfg.ini", "addr=:9093")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "models") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %q", got)
	}
	if got, _ := ExpandHome(""); got != "" {
		t.Fatalf("empty path changed: %q", got)
	}
}
