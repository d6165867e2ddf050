package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of songs in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, release, err := openLibrary(ctx.config())
			if err != nil {
				return err
			}
			defer release()

			n, err := lib.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Song library has %d songs\n", n)
			return nil
		},
	}
}
