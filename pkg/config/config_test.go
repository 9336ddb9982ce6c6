package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Sampling.Modalities) != 1 || cfg.Sampling.Modalities[0] != "FLAIR" {
		t.Errorf("Unexpected default modalities: %v", cfg.Sampling.Modalities)
	}
	if cfg.Sampling.Dims != [3]int{70, 86, 86} {
		t.Errorf("Unexpected default dims: %v", cfg.Sampling.Dims)
	}
	if cfg.Augmentation.Seed != 42 {
		t.Errorf("Unexpected default seed: %d", cfg.Augmentation.Seed)
	}
	if len(cfg.Augmentation.Kinds) != 4 {
		t.Errorf("Unexpected default augmentation kinds: %v", cfg.Augmentation.Kinds)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Sampling.Channels != 3 {
		t.Errorf("Expected default channels 3, got %d", cfg.Sampling.Channels)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "gbmset.yaml")

	cfg := DefaultConfig()
	cfg.Data.ImageDir = "/srv/volumes"
	cfg.Sampling.Channels = 4
	cfg.Augmentation.Enabled = true
	cfg.Augmentation.Kinds = []string{"flip"}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Data.ImageDir != "/srv/volumes" {
		t.Errorf("ImageDir not round-tripped: %q", loaded.Data.ImageDir)
	}
	if loaded.Sampling.Channels != 4 {
		t.Errorf("Channels not round-tripped: %d", loaded.Sampling.Channels)
	}
	if !loaded.Augmentation.Enabled || len(loaded.Augmentation.Kinds) != 1 {
		t.Errorf("Augmentation settings not round-tripped: %+v", loaded.Augmentation)
	}
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- nope"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
