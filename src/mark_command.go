package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/contre95/dupetrack/src/infra/tag"
)

func newMarkCommand(ctx *commandContext) *cobra.Command {
	var marker string
	var clearMarker bool

	cmd := &cobra.Command{
		Use:   "mark FILE...",
		Short: "Tag files as intentional duplicates so scans ignore them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := marker
			if !cmd.Flags().Changed("marker") {
				value = ctx.config().Matching.IgnoreMarker
			}
			if clearMarker {
				value = ""
			}
			if value == "" && !clearMarker {
				return fmt.Errorf("no ignore marker configured; set matching.ignore_marker or pass --marker")
			}

			writer := tag.NewMarkerWriter()
			var failed int
			for _, path := range args {
				if err := writer.WriteMarker(cmd.Context(), path, value); err != nil {
					slog.Error("Failed to mark file", "path", path, "error", err)
					failed++
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if failed > 0 {
				return fmt.Errorf("failed to mark %d of %d files", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&marker, "marker", "", "Marker value (defaults to matching.ignore_marker)")
	cmd.Flags().BoolVar(&clearMarker, "clear", false, "Remove the marker instead of setting it")
	return cmd
}
