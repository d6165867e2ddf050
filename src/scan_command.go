package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/contre95/dupetrack/src/features/config"
	"github.com/contre95/dupetrack/src/features/duplicates"
	"github.com/contre95/dupetrack/src/features/metrics"
	"github.com/contre95/dupetrack/src/infra/files"
	"github.com/contre95/dupetrack/src/infra/progress"
	"github.com/contre95/dupetrack/src/infra/tag"
)

// scanFlags are the overrides shared by scan, build and watch.
type scanFlags struct {
	difference   float64
	report       string
	reportAppend string
	noLoad       bool
	noSave       bool
	noPrint      bool
	checkThe     bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.difference, "difference", "d", 0.5, "Time difference in seconds under which same-key songs are duplicates")
	cmd.Flags().StringVarP(&f.report, "report", "f", "", "Write duplicates to this file, starting afresh")
	cmd.Flags().StringVar(&f.reportAppend, "report-append", "", "Write duplicates to this file, appending to it")
	cmd.Flags().BoolVar(&f.noLoad, "no-load", false, "Do not load the library")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "Do not save the library")
	cmd.Flags().BoolVar(&f.noPrint, "no-print", false, "Do not print possible false positives")
	cmd.Flags().BoolVarP(&f.checkThe, "check-the", "t", false, "Report artists with a trailing ', the'")
	cmd.MarkFlagsMutuallyExclusive("report", "report-append")
}

// apply overrides cfg with the flags the user actually set.
func (f *scanFlags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	if cmd.Flags().Changed("difference") {
		if f.difference < 0 {
			return cfg, fmt.Errorf("difference must not be negative, got %v", f.difference)
		}
		cfg.Matching.Tolerance = f.difference
	}
	if f.report != "" {
		cfg.Report.Path = f.report
		cfg.Report.Append = false
	}
	if f.reportAppend != "" {
		cfg.Report.Path = f.reportAppend
		cfg.Report.Append = true
	}
	if f.noPrint {
		cfg.Matching.ShowFalsePositives = false
	}
	if f.checkThe {
		cfg.Matching.CheckTrailingThe = true
	}
	return cfg, nil
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "Scan a music directory and report duplicates against the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, &flags, duplicates.ModeScan, args[0])
		},
	}
	flags.register(cmd)
	return cmd
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "build DIR",
		Short: "Build the library from a music directory without reporting duplicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, &flags, duplicates.ModeBuild, args[0])
		},
	}
	flags.register(cmd)
	return cmd
}

func runScan(cmd *cobra.Command, cc *commandContext, flags *scanFlags, mode duplicates.Mode, dir string) error {
	cfg, err := flags.apply(cmd, cc.config())
	if err != nil {
		return err
	}
	if err := requireDir(dir); err != nil {
		return err
	}

	runID := uuid.NewString()
	slog.SetDefault(slog.Default().With("run_id", runID))
	runCtx := cmd.Context()

	lib, release, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer release()

	// Build starts from an empty library and writes it fresh.
	if mode == duplicates.ModeScan && !flags.noLoad {
		if err := loadExisting(runCtx, lib); err != nil {
			return err
		}
	}

	report, err := duplicates.OpenReport(cfg.Report.Path, cfg.Report.Append, runID)
	if err != nil {
		return err
	}
	defer report.Close()
	report.Header(mode, dir, time.Now())

	finder := files.NewExtensionFinder(cfg.Matching.Extensions)
	paths, err := finder.FindTracks(runCtx, dir)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	scanner := duplicates.NewScanner(lib, tag.NewTagReader(), cfg.Matching, report, progress.New(cfg.Progress), recorder)
	start := time.Now()
	if _, err := scanner.Run(runCtx, mode, paths); err != nil {
		return err
	}
	slog.Info("Run completed", "elapsed", time.Since(start).Round(time.Millisecond))

	if !flags.noSave {
		if err := lib.Save(context.WithoutCancel(runCtx)); err != nil {
			return err
		}
	}
	writeMetrics(cfg, recorder, lib)
	return report.Close()
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("source directory %s does not exist: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", dir)
	}
	return nil
}
