package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contre95/dupetrack/src/features/integrity"
	"github.com/contre95/dupetrack/src/features/metrics"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var deleteMissing bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every library entry still points at a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config()
			lib, release, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer release()

			mode := integrity.ModeTest
			if deleteMissing {
				mode = integrity.ModeDelete
			}
			out := cmd.OutOrStdout()
			res, err := integrity.NewChecker(lib, out).Check(cmd.Context(), mode)
			if err != nil {
				return err
			}

			if mode == integrity.ModeDelete {
				fmt.Fprintf(out, "Removed %d songs from the library.\n", res.Removed)
			} else {
				fmt.Fprintf(out, "Found %d songs that no longer exist.\n", res.Missing)
			}

			recorder := metrics.NewRecorder()
			recorder.Integrity(res.Missing, res.Removed)
			writeMetrics(cfg, recorder, lib)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteMissing, "delete", false, "Delete entries whose file no longer exists")
	return cmd
}
