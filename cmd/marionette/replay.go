package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/marionette/pkg/transcript"
	"github.com/go-go-golems/marionette/pkg/transcript/serde"
)

func newReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <transcript-file>",
		Short: "Print a persisted transcript document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := serde.Load(args[0])
			if err != nil {
				return errors.Wrapf(err, "load transcript %s", args[0])
			}
			transcript.Fprint(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
