package main

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/contre95/dupetrack/src/features/duplicates"
	"github.com/contre95/dupetrack/src/features/metrics"
	"github.com/contre95/dupetrack/src/infra/files"
	"github.com/contre95/dupetrack/src/infra/tag"
	"github.com/contre95/dupetrack/src/infra/watcher"
	"github.com/contre95/dupetrack/src/music"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Watch a music directory and check new files as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, ctx, &flags, args[0])
		},
	}
	flags.register(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, cc *commandContext, flags *scanFlags, dir string) error {
	cfg, err := flags.apply(cmd, cc.config())
	if err != nil {
		return err
	}
	if err := requireDir(dir); err != nil {
		return err
	}
	runCtx := cmd.Context()

	lib, release, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer release()

	if !flags.noLoad {
		if err := loadExisting(runCtx, lib); err != nil {
			return err
		}
	}

	finder := files.NewExtensionFinder(cfg.Matching.Extensions)
	events := make(chan watcher.FileEvent, 1)
	w, err := watcher.NewWatcher(events, finder.Supported)
	if err != nil {
		return err
	}
	if err := w.Start(runCtx, dir); err != nil {
		return err
	}
	defer w.Stop()

	reader := tag.NewTagReader()
	recorder := metrics.NewRecorder()
	slog.Info("Watching for new music, press Ctrl+C to stop", "path", dir)

	// Batches are handled here, one at a time, so the library keeps a single writer.
	for {
		select {
		case <-runCtx.Done():
			slog.Info("Watch stopped")
			return nil
		case event := <-events:
			runID := uuid.NewString()
			report, err := duplicates.OpenReport(cfg.Report.Path, true, runID)
			if err != nil {
				return err
			}
			report.Header(duplicates.ModeScan, event.Root, event.Timestamp)
			scanner := duplicates.NewScanner(lib, reader, cfg.Matching, report, music.NoProgress{}, recorder)
			if _, err := scanner.Run(runCtx, duplicates.ModeScan, event.Paths); err != nil {
				report.Close()
				return err
			}
			if err := report.Close(); err != nil {
				return err
			}
			if !flags.noSave {
				if err := lib.Save(runCtx); err != nil {
					return err
				}
			}
			writeMetrics(cfg, recorder, lib)
		}
	}
}
