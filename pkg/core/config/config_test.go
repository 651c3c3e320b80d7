package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.ChunkMaxChars != 3000 {
		t.Errorf("ChunkMaxChars = %d, want 3000", cfg.ChunkMaxChars)
	}
	if cfg.TimeoutSeconds != 60 || cfg.Retries != 3 || cfg.MaxWorkers != 2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.PriorityModels) == 0 || cfg.PriorityModels[0] != "gemini-2.5-flash" {
		t.Errorf("PriorityModels = %v", cfg.PriorityModels)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "model: gemini-2.5-pro\nchunk_max_chars: 1500\nmax_workers: 3\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.ChunkMaxChars != 1500 {
		t.Errorf("ChunkMaxChars = %d, want 1500", cfg.ChunkMaxChars)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d, want default 3", cfg.Retries)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: from-file\nllm_retries: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_MODEL", "from-env")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("PRIORITY_MODELS", "gemini-2.5-pro, gemini-2.0-flash")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-env" {
		t.Errorf("Model = %q, env should win", cfg.Model)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Retries != 5 {
		t.Errorf("Retries = %d, want 5 from file", cfg.Retries)
	}
	want := []string{"gemini-2.5-pro", "gemini-2.0-flash"}
	if len(cfg.PriorityModels) != 2 || cfg.PriorityModels[0] != want[0] || cfg.PriorityModels[1] != want[1] {
		t.Errorf("PriorityModels = %v, want %v", cfg.PriorityModels, want)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file should error")
	}
}

func TestInvalidEnvIntIgnored(t *testing.T) {
	t.Setenv("MAX_WORKERS", "not-a-number")
	t.Setenv("LLM_RETRIES", "-1")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxWorkers != 2 || cfg.Retries != 3 {
		t.Errorf("invalid env values should be ignored: %+v", cfg)
	}
}
