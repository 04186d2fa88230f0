package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CATALOG_SOURCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Catalog.Source != SourceEmbedded {
		t.Fatalf("expected embedded source, got %s", cfg.Catalog.Source)
	}
	if cfg.Latency.Search != 1200*time.Millisecond {
		t.Fatalf("expected 1.2s search delay, got %s", cfg.Latency.Search)
	}
	if cfg.Log.MaxBytes != 2*1024*1024 {
		t.Fatalf("expected 2MB log size, got %d", cfg.Log.MaxBytes)
	}
	if cfg.Assistant != nil {
		t.Fatalf("expected no assistant override")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CATALOG_SOURCE", "sqlite")
	t.Setenv("CATALOG_DB", "/var/lib/raks/catalog.db")
	t.Setenv("RELOAD_INTERVAL", "15m")
	t.Setenv("SEARCH_DELAY_MS", "0")
	t.Setenv("SIMULATE_LATENCY", "false")
	t.Setenv("LOG_MAX_BYTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Catalog.Source != SourceSQLite || cfg.Catalog.DBPath != "/var/lib/raks/catalog.db" {
		t.Fatalf("unexpected catalog config %+v", cfg.Catalog)
	}
	if cfg.Scheduler.Interval != 15*time.Minute {
		t.Fatalf("expected 15m interval, got %s", cfg.Scheduler.Interval)
	}
	if cfg.Latency.Enabled || cfg.Latency.Search != 0 {
		t.Fatalf("unexpected latency config %+v", cfg.Latency)
	}
	if cfg.Log.MaxBytes != 2*1024*1024 {
		t.Fatalf("invalid LOG_MAX_BYTES should fall back to default, got %d", cfg.Log.MaxBytes)
	}
}

func TestLoad_RejectsIncompleteSource(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}

	t.Setenv("CATALOG_SOURCE", "ftp")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestLoad_AssistantConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	data := []byte("company: Raks Properties\ncountry: Botswana\nlocations: [Francistown, Gaborone, Maun, Kasane]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ASSISTANT_CONFIG", path)
	t.Setenv("CATALOG_SOURCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Assistant == nil || len(cfg.Assistant.Locations) != 4 || cfg.Assistant.Locations[3] != "Kasane" {
		t.Fatalf("unexpected assistant config %+v", cfg.Assistant)
	}
}
