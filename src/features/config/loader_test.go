package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	// default paths are relative
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	path := filepath.Join(dir, "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
	cfg := manager.Get()
	if cfg.Matching.Tolerance != 0.5 {
		t.Errorf("expected default tolerance 0.5, got %v", cfg.Matching.Tolerance)
	}
	if cfg.Library.Path != "./data/dup.gob" || cfg.Library.Format != "binary" {
		t.Errorf("unexpected default library %+v", cfg.Library)
	}
	if cfg.Matching.IgnoreMarker != DefaultIgnoreMarker {
		t.Errorf("expected default ignore marker, got %q", cfg.Matching.IgnoreMarker)
	}

	// The written file must load back to the same values
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading default config failed: %v", err)
	}
	if again.Get().Library.Path != cfg.Library.Path {
		t.Errorf("expected library path %q, got %q", cfg.Library.Path, again.Get().Library.Path)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	libPath := filepath.Join(dir, "db", "dup.json")
	content := "library:\n  path: " + libPath + "\n  format: json\nmatching:\n  tolerance: 1.25\n  phonetic: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := manager.Get()
	if cfg.Library.Format != "json" || cfg.Library.Path != libPath {
		t.Errorf("unexpected library config %+v", cfg.Library)
	}
	if cfg.Matching.Tolerance != 1.25 || cfg.Matching.Phonetic {
		t.Errorf("unexpected matching config %+v", cfg.Matching)
	}
	if len(cfg.Matching.Extensions) != 1 || cfg.Matching.Extensions[0] != ".mp3" {
		t.Errorf("expected default extensions to survive, got %v", cfg.Matching.Extensions)
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("expected library directory to be created: %v", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[library]\npath = '" + filepath.Join(dir, "dup.db") + "'\nformat = 'sqlite'\noverwrite = true\n\n[matching]\nignore_marker = 'SKIP'\nextensions = ['.mp3', '.flac']\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := manager.Get()
	if cfg.Library.Format != "sqlite" || !cfg.Library.Overwrite {
		t.Errorf("unexpected library config %+v", cfg.Library)
	}
	if cfg.Matching.IgnoreMarker != "SKIP" || len(cfg.Matching.Extensions) != 2 {
		t.Errorf("unexpected matching config %+v", cfg.Matching)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "library:\n  path: " + filepath.Join(dir, "dup.gob") + "\n  format: csv\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_RejectsUnknownYAMLKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("libary:\n  path: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestManager_GetReturnsCopy(t *testing.T) {
	manager := NewManager(createDefaultConfig())
	cfg := manager.Get()
	cfg.Matching.Extensions[0] = ".wav"
	cfg.Matching.Tolerance = 9

	fresh := manager.Get()
	if fresh.Matching.Extensions[0] != ".mp3" || fresh.Matching.Tolerance != 0.5 {
		t.Errorf("mutating a copy leaked into the manager: %+v", fresh.Matching)
	}
}
