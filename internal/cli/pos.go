package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPosCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pos FILE POSITION",
		Short: "Convert between byte offsets and line/column positions",
		Long: `Convert POSITION in FILE between its two forms.

A byte offset (1234) is converted to a zero-based LINE:COL pair and a LINE:COL
pair to a byte offset. Both forms are printed together with whether the
conversion was exact or estimated from the average line length.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPos(cmd, a, args[0], args[1])
		},
	}
}

func runPos(cmd *cobra.Command, a *app, path, arg string) error {
	e, err := a.open(path)
	if err != nil {
		return err
	}
	defer e.Close()

	off, offEx, err := resolveArg(e, arg)
	if err != nil {
		return err
	}
	pos, posEx, err := e.OffsetToPosition(off)
	if err != nil {
		return err
	}
	pt := pointOf(pos)
	exactness := offEx.Combine(posEx)

	if a.jsonOutput {
		return newJSONDoc().
			set("offset", off).
			set("line", pt.Line).
			set("column", pt.Column).
			set("exactness", exactness.String()).
			writeTo(cmd.OutOrStdout())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "offset %d = %d:%d (%s)\n", off, pt.Line, pt.Column, exactness)
	return nil
}
