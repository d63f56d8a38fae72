package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8347" || cfg.Server.DataDir != "data" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Focus.BatchSize != 3 {
		t.Fatalf("unexpected batch size default: %d", cfg.Focus.BatchSize)
	}
	if cfg.Grinds.MaxTotal != 10 || cfg.Grinds.MaxActive != 2 {
		t.Fatalf("unexpected grind limits: %+v", cfg.Grinds)
	}
	if !cfg.Refresh.Enabled || cfg.Refresh.Schedule != "5 0 * * *" {
		t.Fatalf("unexpected refresh defaults: %+v", cfg.Refresh)
	}
}

func TestLoad_PartialFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yml")
	body := `
server:
  addr: ":9000"
focus:
  batch_size: 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected addr override, got %s", cfg.Server.Addr)
	}
	if cfg.Server.DataDir != "data" {
		t.Fatalf("expected data dir default, got %s", cfg.Server.DataDir)
	}
	if cfg.Focus.BatchSize != 5 {
		t.Fatalf("expected batch size 5, got %d", cfg.Focus.BatchSize)
	}
	if cfg.Grinds.MaxTotal != 10 {
		t.Fatalf("expected grind limit default, got %d", cfg.Grinds.MaxTotal)
	}
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("BLESSEDMIND_ADDR", ":7777")
	t.Setenv("BLESSEDMIND_DATA_DIR", "/tmp/bm")
	t.Setenv("BLESSEDMIND_BATCH_SIZE", "6")
	t.Setenv("BLESSEDMIND_MAX_GRINDS", "20")
	t.Setenv("BLESSEDMIND_MAX_ACTIVE_GRINDS", "4")
	t.Setenv("BLESSEDMIND_REFRESH_DISABLED", "1")

	cfg := ApplyEnv(Default())
	if cfg.Server.Addr != ":7777" || cfg.Server.DataDir != "/tmp/bm" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Focus.BatchSize != 6 {
		t.Fatalf("expected batch size 6, got %d", cfg.Focus.BatchSize)
	}
	if cfg.Grinds.MaxTotal != 20 || cfg.Grinds.MaxActive != 4 {
		t.Fatalf("unexpected grind limits: %+v", cfg.Grinds)
	}
	if cfg.Refresh.Enabled {
		t.Fatalf("expected refresh disabled")
	}
}

func TestApplyEnv_IgnoresGarbageInts(t *testing.T) {
	t.Setenv("BLESSEDMIND_BATCH_SIZE", "many")

	cfg := ApplyEnv(Default())
	if cfg.Focus.BatchSize != 3 {
		t.Fatalf("expected default batch size kept, got %d", cfg.Focus.BatchSize)
	}
}
