package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Load(filepath.Join(t.TempDir(), "nope.yaml"), false); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.LiveTable.RefreshRate != DefaultRefreshRate {
		t.Errorf("refresh rate = %v, want default", cfg.LiveTable.RefreshRate)
	}
}

func TestConfigLoadMissingFileForced(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Error("forced load of missing file should error")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livetable.yaml")

	cfg := NewConfig()
	cfg.LiveTable.RefreshRate = 7
	cfg.LiveTable.DefaultProfile = "orders"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := NewConfig()
	if err := loaded.Load(path, true); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.LiveTable.RefreshRate != 7 {
		t.Errorf("refresh rate = %v, want 7", loaded.LiveTable.RefreshRate)
	}
	if loaded.LiveTable.DefaultProfile != "orders" {
		t.Errorf("profile = %q, want orders", loaded.LiveTable.DefaultProfile)
	}
}

func TestConfigValidateRepairsRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livetable.yaml")
	if err := os.WriteFile(path, []byte("livetable:\n  refreshRate: -1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := cfg.Load(path, true); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LiveTable.RefreshRate != DefaultRefreshRate {
		t.Errorf("refresh rate = %v, want repaired default", cfg.LiveTable.RefreshRate)
	}
}

func TestOverride(t *testing.T) {
	lt := NewLiveTable()
	f := NewFlags()
	*f.RefreshRate = 9
	*f.Profile = "orders"
	*f.Headless = true

	lt.Override(f)
	if lt.RefreshRate != 9 || lt.DefaultProfile != "orders" || !lt.Headless {
		t.Errorf("override result = %+v", lt)
	}
}
