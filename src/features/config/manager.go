package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns a copy of the current configuration.
// Callers hand sections of it to constructors by value.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	cfg.Matching.Extensions = append([]string(nil), m.config.Matching.Extensions...)
	return cfg
}

// EnsureDirectories creates the directories holding the library and report files.
func (m *Manager) EnsureDirectories() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	dirs := []string{filepath.Dir(cfg.Library.Path)}
	if cfg.Report.Path != "" {
		dirs = append(dirs, filepath.Dir(cfg.Report.Path))
	}
	if cfg.Metrics.Textfile != "" {
		dirs = append(dirs, filepath.Dir(cfg.Metrics.Textfile))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	slog.Debug("Required directories created/verified", "dirs", dirs)
	return nil
}

// GetYAML returns the current configuration as YAML.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.config)
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
