package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textcore/internal/engine/search"
	"github.com/dshills/textcore/internal/engine/textpos"
	"github.com/dshills/textcore/internal/logging"
)

type findFlags struct {
	regex      bool
	ignoreCase bool
	limit      int
}

func newFindCommand(a *app) *cobra.Command {
	flags := &findFlags{}

	cmd := &cobra.Command{
		Use:   "find FILE PATTERN",
		Short: "Search a file for a literal or regular expression",
		Long: `Search FILE for PATTERN and print each match with its position.

The file is scanned in overlapping windows, so large files are searched
without being loaded whole. Line numbers of matches in unscanned regions are
estimates and are marked as such.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, a, flags, args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&flags.regex, "regex", "e", false, "treat PATTERN as a regular expression")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "stop after this many matches (0 for all)")

	return cmd
}

func compilePattern(expr string, flags *findFlags) (search.Pattern, error) {
	switch {
	case flags.regex && flags.ignoreCase:
		return search.Regex("(?i)" + expr)
	case flags.regex:
		return search.Regex(expr)
	case flags.ignoreCase:
		return search.Fold(expr), nil
	}
	return search.Literal(expr), nil
}

func runFind(cmd *cobra.Command, a *app, flags *findFlags, path, expr string) error {
	pat, err := compilePattern(expr, flags)
	if err != nil {
		return err
	}

	e, err := a.open(path)
	if err != nil {
		return err
	}
	defer e.Close()

	doc := newJSONDoc().set("pattern", expr).set("matches", []any{})
	out := cmd.OutOrStdout()
	count := 0

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.With(ctx, logging.FieldPath, path, logging.FieldPattern, pat.String())
	logging.FromContext(ctx).Debug("searching")

	m := e.Matcher(ctx, pat, textpos.NewRange(0, e.Len()))
	for m.Next() {
		match := m.Match()
		pos, exactness, err := e.OffsetToPosition(match.Start)
		if err != nil {
			return err
		}
		text, _, err := e.ReadRange(match.Start, match.End)
		if err != nil {
			return err
		}
		pt := pointOf(pos)

		if a.jsonOutput {
			doc.set("matches.-1", map[string]any{
				"start":     match.Start,
				"end":       match.End,
				"line":      pt.Line,
				"column":    pt.Column,
				"exactness": exactness.String(),
				"text":      string(text),
			})
		} else {
			marker := ""
			if exactness == textpos.Estimated {
				marker = "~"
			}
			fmt.Fprintf(out, "%s%d:%d [%d, %d) %q\n", marker, pt.Line, pt.Column, match.Start, match.End, text)
		}

		logging.FromContext(ctx).Debug("match", logging.FieldMatch, match.Range().String())
		count++
		if flags.limit > 0 && count >= flags.limit {
			break
		}
	}
	if err := m.Err(); err != nil {
		return err
	}

	if a.jsonOutput {
		return doc.set("count", count).writeTo(out)
	}
	return nil
}
