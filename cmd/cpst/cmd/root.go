// Package cmd implements the cpst command tree: transform, dump, and
// check, wired on top of internal/driver and internal/config, in the
// style of the teacher's cmd/dwscript/cmd package (one file per
// subcommand, a shared rootCmd, global --verbose via persistent
// flags).
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cpst",
	Short: "Continuation-passing-style source transformer",
	Long: `cpst rewrites functions whose name carries a configurable prefix
(cps_ by default) into continuation-passing style: every such function
gains a leading continuation parameter, tail calls become direct jumps,
and non-tail control flow (if, while, nested CPS calls) is reified into
synthesized continuation functions.

Two output variants exist: the default direct-call encoding, and a
trampolined encoding (-w/--trampoline) that routes every continuation
invocation through a FIFO scheduler so deeply recursive CPS programs
run in bounded native stack depth.`,
	Version: Version,
}

var verbose bool

// logger is the CLI-wide structured logger. --verbose lowers its level
// from warn to debug; every subcommand's progress output goes through
// it rather than raw fmt.Fprintf, so a future --logformat=json flag
// needs no call-site changes.
var logger *slog.Logger

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	}
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
