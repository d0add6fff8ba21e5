package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapestone/xmlindent/pkg/xmlfmt"
)

// newPathCmd exposes internal/pathbuilder's current_path operation
// directly, the first of SPEC_FULL.md §11's supplemented features: the
// spec describes the operation in §4.3 but never gives it a command-line
// face, and nothing in the Non-goals excludes reporting a path.
func newPathCmd() *cobra.Command {
	var at int
	var withNS, withIndex bool
	var idsFlag string

	cmd := &cobra.Command{
		Use:   "path <file>",
		Short: "Report the element path containing a byte offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("xmlindent path: read %s: %w", args[0], err)
			}
			if at < 0 || at > len(src) {
				return fmt.Errorf("xmlindent path: --at %d is out of range for a %d-byte file", at, len(src))
			}

			ids := parseIdentityAttrs(idsFlag)

			mode := xmlfmt.PathNameOnly
			if withNS {
				mode |= xmlfmt.PathWithNamespace
			}
			if withIndex {
				mode |= xmlfmt.PathWithIndex
			}
			if len(ids) > 0 {
				mode |= xmlfmt.PathWithIdentity
			}

			got, ok := xmlfmt.PathAt(src, at, mode, ids...)
			if !ok {
				return fmt.Errorf("xmlindent path: offset %d is outside any element", at)
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	}

	cmd.Flags().IntVar(&at, "at", 0, "byte offset to resolve (required)")
	cmd.Flags().BoolVar(&withNS, "ns", false, "keep namespace prefixes in the path")
	cmd.Flags().BoolVar(&withIndex, "index", false, "append [n] for elements preceded by same-named siblings")
	cmd.Flags().StringVar(&idsFlag, "ids", "", "comma-separated identity attribute names to register, e.g. a,b (turns on identity predicates in the reported path)")
	cmd.MarkFlagRequired("at")

	return cmd
}

// parseIdentityAttrs splits --ids's comma-separated value into the
// attribute-name list pathbuilder.Builder registers, dropping empty
// entries produced by stray commas or surrounding whitespace.
func parseIdentityAttrs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := strings.Split(raw, ",")
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}
