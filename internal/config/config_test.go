package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Path != "model.onnx" {
		t.Errorf("Model.Path = %q, want model.onnx", cfg.Model.Path)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("Session.Store = %q, want memory", cfg.Session.Store)
	}
	if cfg.Session.MemoryMaxEntries != 1000 {
		t.Errorf("Session.MemoryMaxEntries = %d, want 1000", cfg.Session.MemoryMaxEntries)
	}
	if got := cfg.HTTPAddr(); got != "0.0.0.0:8080" {
		t.Errorf("HTTPAddr() = %q", got)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[app]
port = 9090

[model]
source = "s3"
artifact_id = "models/classifier.onnx"

[model.s3]
bucket = "artifacts"

[catalog]
source = "file"
path = "configs/catalog.toml"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("VISION_APPLY_SOFTMAX", "false")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Port != 7070 {
		t.Errorf("App.Port = %d, want env override 7070", cfg.App.Port)
	}
	if cfg.Model.Source != "s3" || cfg.Model.S3.Bucket != "artifacts" {
		t.Errorf("model s3 settings not decoded: %+v", cfg.Model)
	}
	if cfg.Vision.ApplySoftmax {
		t.Error("Vision.ApplySoftmax should be disabled by env")
	}
	if len(cfg.App.AllowedOrigins) != 2 || cfg.App.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.App.AllowedOrigins)
	}
}

func TestLoadRejectsUnknownSources(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("MODEL_SOURCE", "ftp")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown model source")
	}
}
