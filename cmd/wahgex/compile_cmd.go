package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coregx/wahgex/compile"
)

func newCompileCmd() *cobra.Command {
	var (
		output     string
		stats      bool
		anchored   bool
		asciiOnly  bool
		dotNewline bool
		noUTF8     bool
	)

	cmd := &cobra.Command{
		Use:   "compile <pattern>",
		Short: "Compile a regex pattern into a WebAssembly module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]

			opts := []compile.Option{
				compile.WithAnchored(anchored),
				compile.WithASCIIOnly(asciiOnly),
				compile.WithDotNewline(dotNewline),
				compile.WithUTF8(!noUTF8),
			}

			logrus.WithField("pattern", pattern).Debug("compiling pattern")

			res, err := compile.Compile(pattern, opts...)
			if err != nil {
				return fmt.Errorf("compile %q: %w", pattern, err)
			}

			if output == "" {
				output = defaultOutputName(pattern)
			}
			if err := os.WriteFile(output, res.Wasm, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			logrus.WithFields(logrus.Fields{
				"output": output,
				"bytes":  res.ModuleSize(),
			}).Info("wrote module")

			if stats {
				return printStats(cmd, res)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output .wasm path (default derived from the pattern)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print compilation statistics as JSON")
	cmd.Flags().BoolVar(&anchored, "anchored", false, "require the match to start at position 0")
	cmd.Flags().BoolVar(&asciiOnly, "ascii", false, "compile '.' and classes as ASCII-only")
	cmd.Flags().BoolVar(&dotNewline, "dot-newline", false, "let '.' match '\\n'")
	cmd.Flags().BoolVar(&noUTF8, "no-utf8", false, "disable UTF-8 boundary tracking")

	return cmd
}

func defaultOutputName(pattern string) string {
	if pattern == "" {
		return "pattern.wasm"
	}
	buf := make([]byte, 0, len(pattern))
	for _, r := range pattern {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			buf = append(buf, byte(r))
		default:
			buf = append(buf, '_')
		}
	}
	return string(buf) + ".wasm"
}

// statsOutput is the JSON shape printed by --stats: the CompileResult
// diagnostic fields spec.md §6 documents for the host-facing compile API,
// minus the WASM bytes themselves (those are in the written .wasm file).
type statsOutput struct {
	Pattern          string `json:"pattern"`
	ModuleSize       int    `json:"module_size"`
	States           int    `json:"states"`
	BitmapBytes      uint32 `json:"bitmap_bytes"`
	Anchored         bool   `json:"anchored"`
	UTF8             bool   `json:"is_utf8"`
	HasLookaround    bool   `json:"has_lookaround"`
	LooksetAny       uint8  `json:"lookset_any"`
	LooksetPrefixAny uint8  `json:"lookset_prefix_any"`
	HasEmpty         bool   `json:"has_empty"`
	HasCapture       bool   `json:"has_capture"`
	IsReverse        bool   `json:"is_reverse"`
	HaystackBase     uint32 `json:"haystack_base"`
}

func printStats(cmd *cobra.Command, res *compile.CompileResult) error {
	out := statsOutput{
		Pattern:          res.Pattern,
		ModuleSize:       res.ModuleSize(),
		States:           res.NumStates,
		BitmapBytes:      res.BitmapBytes,
		Anchored:         res.IsAnchored,
		UTF8:             res.IsUTF8,
		HasLookaround:    res.HasLookaround,
		LooksetAny:       uint8(res.UsedLooks),
		LooksetPrefixAny: uint8(res.LooksetPrefixAny),
		HasEmpty:         res.HasEmpty,
		HasCapture:       res.HasCapture,
		IsReverse:        res.IsReverse,
		HaystackBase:     res.HaystackBase,
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return nil
}
