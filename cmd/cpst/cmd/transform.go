package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/cpst/internal/config"
	"github.com/cwbudde/cpst/internal/driver"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

var (
	transformPrefix     string
	transformSuffix     string
	transformTrampoline bool
	transformStats      string
)

var transformCmd = &cobra.Command{
	Use:   "transform [paths...]",
	Short: "Rewrite CPS-prefixed functions into continuation-passing style",
	Long: `transform reads one or more source files (or directories, expanded
with the globs configured in .cpstrc.yaml when no paths are given),
lowers every function whose name carries the CPS prefix into
continuation-passing style, and writes the result alongside the
original as name.<suffix>.ext.

Examples:
  # Transform a single file
  cpst transform fib.cpst

  # Transform every configured glob in the current project
  cpst transform

  # Use the trampolined encoding and a custom prefix
  cpst transform -w --prefix async_ worker.cpst

  # Write a JSON processing report
  cpst transform --stats report.json src/`,
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVar(&transformPrefix, "prefix", "", "CPS-call prefix (default: from .cpstrc.yaml, or cps_)")
	transformCmd.Flags().StringVarP(&transformSuffix, "suffix", "s", "", "suffix inserted before the extension (default: from .cpstrc.yaml, or cps)")
	transformCmd.Flags().BoolVarP(&transformTrampoline, "trampoline", "w", false, "emit the scheduler-mediated trampoline encoding")
	transformCmd.Flags().StringVar(&transformStats, "stats", "", "write a JSON processing report to this path")
}

func runTransform(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	cfg = cfg.Merge(transformPrefix, transformSuffix, transformTrampoline,
		cmd.Flags().Changed("prefix"), cmd.Flags().Changed("suffix"), cmd.Flags().Changed("trampoline"))

	paths := args
	if len(paths) == 0 {
		paths = cfg.Globs
	}

	files, err := driver.Discover(paths, cfg.Globs)
	if err != nil {
		return err
	}

	opts := driver.Options{Prefix: cfg.Prefix, Suffix: cfg.Suffix, Trampoline: cfg.Trampoline, Verbose: verbose}

	stats := "{}"
	failed := 0
	for _, f := range files {
		res := driver.Transform(f, opts)
		if !res.OK() {
			failed++
			for _, d := range res.Diags {
				fmt.Fprintln(os.Stderr, d.Format(true))
			}
			stats, _ = sjson.Set(stats, fmt.Sprintf("files.%s.ok", jsonKey(f)), false)
			continue
		}

		out := driver.OutputPath(f, cfg.Suffix)
		if err := os.WriteFile(out, []byte(res.Output), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		logger.Debug("transformed", "src", f, "out", out)
		stats, _ = sjson.Set(stats, fmt.Sprintf("files.%s.ok", jsonKey(f)), true)
	}

	stats, _ = sjson.Set(stats, "processed", len(files))
	stats, _ = sjson.Set(stats, "failed", failed)

	if transformStats != "" {
		if err := os.WriteFile(transformStats, []byte(stats), 0644); err != nil {
			return fmt.Errorf("writing stats report: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("transform failed for %d of %d file(s)", failed, len(files))
	}
	return nil
}

// jsonKey makes a file path safe as a flat sjson path segment, since
// sjson treats unescaped dots as nesting separators.
func jsonKey(path string) string {
	out := make([]rune, 0, len(path))
	for _, r := range path {
		if r == '.' || r == '*' || r == '?' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
