package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty,
	// for envDefault to apply.
	for _, key := range []string{"STORYWEAVE_API_URL", "STORYWEAVE_DATA_DIR", "STORYWEAVE_HTTP_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api/v1" {
		t.Errorf("unexpected default api url %q", cfg.APIURL)
	}
	if filepath.Base(cfg.DataDir) != ".storyweave" {
		t.Errorf("unexpected default data dir %q", cfg.DataDir)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("unexpected default timeout %v", cfg.HTTPTimeout)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORYWEAVE_API_URL", "https://story.example.com/api/v1")
	t.Setenv("STORYWEAVE_DATA_DIR", "/tmp/sw-data")
	t.Setenv("STORYWEAVE_HTTP_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIURL != "https://story.example.com/api/v1" {
		t.Errorf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.DataDir != "/tmp/sw-data" {
		t.Errorf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("unexpected timeout %v", cfg.HTTPTimeout)
	}
}
