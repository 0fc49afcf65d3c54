package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textcore/internal/engine/textpos"
)

func newReadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read FILE [START [END]]",
		Short: "Print a range of a file",
		Long: `Print the bytes of FILE between START and END.

START defaults to the beginning and END to the end of the file. Either may be
a byte offset or a zero-based LINE:COL pair. The range is widened to whole
characters, so a multi-byte character is never cut.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, a, args)
		},
	}
}

func runRead(cmd *cobra.Command, a *app, args []string) error {
	e, err := a.open(args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	start, end := int64(0), e.Len()
	startEx, endEx := textpos.Exact, textpos.Exact
	if len(args) > 1 {
		if start, startEx, err = resolveArg(e, args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if end, endEx, err = resolveArg(e, args[2]); err != nil {
			return err
		}
	}

	data, got, err := e.ReadRange(start, end)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		return newJSONDoc().
			set("start", got.Start).
			set("end", got.End).
			set("exactness", startEx.Combine(endEx).String()).
			set("text", string(data)).
			writeTo(cmd.OutOrStdout())
	}

	_, err = cmd.OutOrStdout().Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
