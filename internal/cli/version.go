package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and storage settings",
		Long: `Print the textcore version and build details together with the
storage settings in effect: the large-file threshold and the size and
alignment of the chunks read from lazily opened files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, a, info.withModule())
		},
	}
}

// withModule fills a missing version from the main module's build info.
func (info BuildInfo) withModule() BuildInfo {
	if info.Version != "" {
		return info
	}
	info.Version = "dev"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	return info
}

func runVersion(cmd *cobra.Command, a *app, info BuildInfo) error {
	b := a.cfg.Buffer
	if a.jsonOutput {
		return newJSONDoc().
			set("version", info.Version).
			set("commit", info.Commit).
			set("built", info.Date).
			set("go", runtime.Version()).
			set("storage.large_file_threshold", b.LargeFileThreshold).
			set("storage.load_chunk_size", b.LoadChunkSize).
			set("storage.chunk_alignment", b.ChunkAlignment).
			writeTo(cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "textcore %s (%s, built %s, %s)\n", info.Version, info.Commit, info.Date, runtime.Version())
	fmt.Fprintf(out, "lazy above: %d bytes\n", b.LargeFileThreshold)
	fmt.Fprintf(out, "chunks:     %d bytes, aligned to %d\n", b.LoadChunkSize, b.ChunkAlignment)
	return nil
}
