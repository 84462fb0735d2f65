package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linkhoard/linkhoard/internal/config"
)

func TestLoad_MissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HistoryLimit != 100 {
		t.Errorf("historyLimit = %d, want 100", cfg.HistoryLimit)
	}
	if cfg.Health.Timeout != 10*time.Second {
		t.Errorf("health.timeout = %v", cfg.Health.Timeout)
	}
	if cfg.StoragePath != filepath.Join(filepath.Dir(path), "linkhoard.db") {
		t.Errorf("storagePath = %q", cfg.StoragePath)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `historyLimit: 25
health:
  excludeDomains: [private.example]
domains:
  news: [mynews.example]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HistoryLimit != 25 {
		t.Errorf("historyLimit = %d, want 25", cfg.HistoryLimit)
	}
	if cfg.Health.Timeout != 10*time.Second {
		t.Errorf("health.timeout = %v, want default", cfg.Health.Timeout)
	}
	if len(cfg.Health.ExcludeDomains) != 1 || cfg.Health.ExcludeDomains[0] != "private.example" {
		t.Errorf("excludeDomains = %v", cfg.Health.ExcludeDomains)
	}
	if len(cfg.Domains.News) != 1 || cfg.Domains.News[0] != "mynews.example" {
		t.Errorf("domains.news = %v", cfg.Domains.News)
	}
	if cfg.Domains.Media != nil {
		t.Errorf("domains.media = %v, want nil (keep built-ins)", cfg.Domains.Media)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("historyLimit: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := config.Default()
	want.StoragePath = "/tmp/db.sqlite"
	want.HistoryLimit = 42
	want.Domains.Social = []string{"social.example"}

	if err := config.Save(path, &want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.StoragePath != want.StoragePath || got.HistoryLimit != 42 {
		t.Errorf("got %+v", got)
	}
	if len(got.Domains.Social) != 1 || got.Domains.Social[0] != "social.example" {
		t.Errorf("domains.social = %v", got.Domains.Social)
	}
}
