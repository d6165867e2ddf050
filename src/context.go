package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/contre95/dupetrack/src/features/config"
	"github.com/contre95/dupetrack/src/features/library"
	"github.com/contre95/dupetrack/src/features/logging"
	"github.com/contre95/dupetrack/src/features/metrics"
	"github.com/contre95/dupetrack/src/infra/database"
	"github.com/contre95/dupetrack/src/music"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	manager    *config.Manager
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the configuration once and installs the configured logger as the default.
func (c *commandContext) ensureConfig() (*config.Manager, error) {
	c.configOnce.Do(func() {
		path := "config.yaml"
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		manager, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		slog.SetDefault(logging.SetupLogger(manager.Get().Logger))
		c.manager = manager
	})
	return c.manager, c.configErr
}

func (c *commandContext) config() config.Config {
	manager, err := c.ensureConfig()
	if err != nil || manager == nil {
		return config.Default()
	}
	return manager.Get()
}

// openLibrary builds the library for cfg and takes its single-writer lock.
// The returned release function must be called when done.
func openLibrary(cfg config.Config) (*library.Library, func(), error) {
	format, err := music.ParseStoreFormat(cfg.Library.Format)
	if err != nil {
		return nil, nil, err
	}
	store, err := database.New(format)
	if err != nil {
		return nil, nil, err
	}
	lib := library.NewLibrary(cfg.Library.Path, store, cfg.Library.Overwrite)
	if err := lib.Lock(); err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := lib.Unlock(); err != nil {
			slog.Warn("Failed to release library lock", "path", lib.Path(), "error", err)
		}
	}
	return lib, release, nil
}

// loadExisting loads the library, treating a library that was never saved as empty.
func loadExisting(ctx context.Context, lib *library.Library) error {
	err := lib.Load(ctx)
	if err == nil {
		slog.Info("Library loaded", "path", lib.Path(), "format", lib.Format(), "songs", lib.Len())
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("No library found, starting with an empty one", "path", lib.Path(), "format", lib.Format())
		return nil
	}
	return err
}

func writeMetrics(cfg config.Config, recorder *metrics.Recorder, lib *library.Library) {
	recorder.LibrarySize(lib.Len())
	if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics", "error", err)
	}
}
