package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/cpst/internal/config"
	"github.com/cwbudde/cpst/internal/driver"
	"github.com/spf13/cobra"
)

var checkPrefix string

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Lower files without writing output, reporting diagnostics only",
	Long: `check parses and lowers every discovered file, skipping scope
analysis and emission, and discards the result, printing only
diagnostics. It exits non-zero if any file fails, making it suitable
for a CI step that should catch unsupported constructs before a
transform step ever writes anything.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkPrefix, "prefix", "", "CPS-call prefix (default: from .cpstrc.yaml, or cps_)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	cfg = cfg.Merge(checkPrefix, "", false, cmd.Flags().Changed("prefix"), false, false)

	paths := args
	if len(paths) == 0 {
		paths = cfg.Globs
	}

	files, err := driver.Discover(paths, cfg.Globs)
	if err != nil {
		return err
	}

	failed := 0
	for _, f := range files {
		res := driver.Check(f, driver.Options{Prefix: cfg.Prefix, Verbose: verbose})
		if !res.OK() {
			failed++
			for _, d := range res.Diags {
				fmt.Fprintln(os.Stderr, d.Format(true))
			}
			continue
		}
		logger.Debug("checked", "src", f, "status", "ok")
	}

	if failed > 0 {
		return fmt.Errorf("check failed for %d of %d file(s)", failed, len(files))
	}
	fmt.Printf("%d file(s) checked, all ok\n", len(files))
	return nil
}
