package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.SizeMB != 256 {
		t.Errorf("default cache size = %d, want 256", cfg.Cache.SizeMB)
	}
	if cfg.Cache.MetadataTTLMin != 5 {
		t.Errorf("default metadata TTL = %d, want 5", cfg.Cache.MetadataTTLMin)
	}
	if cfg.UI.ArtworkSize != 160 {
		t.Errorf("default artwork size = %d, want 160", cfg.UI.ArtworkSize)
	}
	if cfg.Library.DatabasePath == "" {
		t.Error("default database path should be set")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Cache.SizeMB = 512
	cfg.UI.Theme = "mono"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Cache.SizeMB != 512 {
		t.Errorf("loaded cache size = %d, want 512", loaded.Cache.SizeMB)
	}
	if loaded.UI.Theme != "mono" {
		t.Errorf("loaded theme = %q, want mono", loaded.UI.Theme)
	}
}

func TestSaveCacheSize(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveCacheSize(384); err != nil {
		t.Fatalf("SaveCacheSize failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if _, err := os.Stat(filepath.Join(home, ".config", "aria", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Cache.SizeMB != 384 {
		t.Errorf("loaded cache size = %d, want 384", loaded.Cache.SizeMB)
	}
}
