package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat FILE",
		Short: "Show size, line count and storage details",
		Long: `Show size, line count and storage details of FILE.

For large files the line count is an estimate until every chunk has been read;
the output says which.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd, a, args[0])
		},
	}
}

func runStat(cmd *cobra.Command, a *app, path string) error {
	e, err := a.open(path)
	if err != nil {
		return err
	}
	defer e.Close()

	lines := e.LineCount()
	ending, err := e.LineEnding()
	if err != nil {
		return err
	}
	snap := e.Snapshot()

	if a.jsonOutput {
		doc := newJSONDoc().
			set("path", path).
			set("bytes", e.Len()).
			set("large", e.IsLargeFile()).
			set("lines.value", lines.Value).
			set("lines.exactness", lines.Exactness.String()).
			set("line_ending", ending.String()).
			set("pieces", snap.PieceCount())
		if !e.IsLargeFile() {
			digest, err := snap.Digest()
			if err != nil {
				return err
			}
			doc.set("digest", fmt.Sprintf("%016x", digest))
		}
		return doc.writeTo(cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:        %s\n", path)
	fmt.Fprintf(out, "bytes:       %d\n", e.Len())
	fmt.Fprintf(out, "large:       %t\n", e.IsLargeFile())
	fmt.Fprintf(out, "lines:       %d (%s)\n", lines.Value, lines.Exactness)
	fmt.Fprintf(out, "line ending: %s\n", ending)
	fmt.Fprintf(out, "pieces:      %d\n", snap.PieceCount())
	return nil
}
