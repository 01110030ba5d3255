package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Output.Path != "pcb_analysis.yaml" {
		t.Errorf("default output path = %q", cfg.Output.Path)
	}
	if cfg.Budget.TokenLimit != 100000 {
		t.Errorf("default token limit = %d", cfg.Budget.TokenLimit)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Budget.Encoding != "cl100k_base" {
		t.Errorf("got %q, want default encoding", cfg.Budget.Encoding)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Budget.TokenLimit = 50000
	cfg.Compaction.BusNetThreshold = 24

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Budget.TokenLimit != 50000 {
		t.Errorf("tokenLimit = %d, want 50000", loaded.Budget.TokenLimit)
	}
	if loaded.Compaction.BusNetThreshold != 24 {
		t.Errorf("busNetThreshold = %d, want 24", loaded.Compaction.BusNetThreshold)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".pcbfuse")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	partial := []byte(`{"version": 1, "budget": {"tokenLimit": 2000}}`)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), partial, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Budget.TokenLimit != 2000 {
		t.Errorf("tokenLimit = %d, want 2000", cfg.Budget.TokenLimit)
	}
	if cfg.Compaction.PinSampleCap != 8 {
		t.Errorf("pinSampleCap = %d, want default 8", cfg.Compaction.PinSampleCap)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default", func(c *Config) {}, true},
		{"bad version", func(c *Config) { c.Version = 9 }, false},
		{"zero budget", func(c *Config) { c.Budget.TokenLimit = 0 }, false},
		{"tiny bus threshold", func(c *Config) { c.Compaction.BusNetThreshold = 1 }, false},
		{"zero sample cap", func(c *Config) { c.Compaction.PinSampleCap = 0 }, false},
		{"elision class of one", func(c *Config) { c.Compaction.MinElisionClass = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() error = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}
