// Copyright 2025 Certen Protocol

package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KVBackend != "memdb" {
		t.Fatalf("KVBackend = %q, want memdb", cfg.KVBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	os.Setenv("HTM_KV_BACKEND", "rocksdb")
	defer os.Unsetenv("HTM_KV_BACKEND")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown KV backend")
	}
}

func TestWorldConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/world.yaml"
	if err := os.WriteFile(path, []byte("environment: test\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWorldConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.CanonicalResolution != 6 {
		t.Fatalf("CanonicalResolution = %d, want 6", cfg.World.CanonicalResolution)
	}
	tag, err := cfg.World.Tag()
	if err != nil {
		t.Fatal(err)
	}
	if tag != 0 { // statistic.Count
		t.Fatalf("Tag() = %v, want Count", tag)
	}
}

func TestWorldConfigEnvSubstitution(t *testing.T) {
	os.Setenv("HTM_TEST_RESOLUTION_SOURCE", "mean_accumulate")
	defer os.Unsetenv("HTM_TEST_RESOLUTION_SOURCE")

	dir := t.TempDir()
	path := dir + "/world.yaml"
	content := "world:\n  statistic_type: ${HTM_TEST_RESOLUTION_SOURCE}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWorldConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.StatisticType != "mean_accumulate" {
		t.Fatalf("StatisticType = %q, want mean_accumulate", cfg.World.StatisticType)
	}
}
