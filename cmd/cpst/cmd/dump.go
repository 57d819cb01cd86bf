package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/cpst/internal/config"
	"github.com/cwbudde/cpst/internal/cpserr"
	"github.com/cwbudde/cpst/internal/cpsir"
	"github.com/cwbudde/cpst/internal/cpslower"
	"github.com/cwbudde/cpst/internal/cpstrampoline"
	"github.com/cwbudde/cpst/internal/surfparse"
	"github.com/cwbudde/cpst/runtime/scheduler"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var (
	dumpPrefix     string
	dumpTrampoline bool
	dumpSimulate   bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "Parse and lower a file, printing the IR tree without emitting it",
	Long: `dump parses and lowers a single file — skipping scope analysis and
emission entirely — and pretty-prints the resulting IR tree, for
inspecting what a Lowerer pass produces before it reaches the
Emitter.

With --simulate (requires -w/--trampoline), dump additionally walks
the lowered tree for scheduler.schedule(...) call sites and replays
them, in tree order, through a FIFO runtime/scheduler.Scheduler,
printing the replay order to stderr. This is a structural sanity
check of the lowering, not an execution of the program: it visits
each call site once regardless of how many times the real program
would reach it at runtime.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpPrefix, "prefix", "", "CPS-call prefix (default: from .cpstrc.yaml, or cps_)")
	dumpCmd.Flags().BoolVarP(&dumpTrampoline, "trampoline", "w", false, "lower with the scheduler-mediated trampoline encoding")
	dumpCmd.Flags().BoolVar(&dumpSimulate, "simulate", false, "replay schedule(...) call sites found in the IR through runtime/scheduler")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	cfg = cfg.Merge(dumpPrefix, "", dumpTrampoline,
		cmd.Flags().Changed("prefix"), false, cmd.Flags().Changed("trampoline"))

	file := args[0]
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	source := string(data)

	p := surfparse.New(file, source)
	mod := p.ParseModule()
	if len(p.Errors()) > 0 {
		return reportDiags(p.Errors())
	}

	var lowerer *cpslower.Lowerer
	if cfg.Trampoline {
		lowerer = cpstrampoline.New(file, source, cpslower.WithPrefix(cfg.Prefix))
	} else {
		lowerer = cpslower.New(file, source, cpslower.WithPrefix(cfg.Prefix))
	}

	irMod := lowerer.LowerModule(mod)
	if irMod == nil {
		return reportDiags(lowerer.Errors())
	}

	fmt.Printf("%# v\n", pretty.Formatter(irMod))

	if dumpSimulate {
		if !cfg.Trampoline {
			return fmt.Errorf("--simulate requires -w/--trampoline")
		}
		simulateSchedule(irMod)
	}
	return nil
}

func reportDiags(diags []*cpserr.Diagnostic) error {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Format(true))
	}
	return fmt.Errorf("dump failed: %d diagnostic(s)", len(diags))
}

// simulateSchedule collects every schedule(...) Call node in tree
// order and replays it through a Scheduler, reporting the order tasks
// would run in under FIFO dispatch.
func simulateSchedule(m *cpsir.Module) {
	sched := scheduler.New()
	walkSchedule(m.Body, sched)

	fmt.Fprintln(os.Stderr, "--- schedule replay ---")
	sched.Run(func(t scheduler.Task) {
		fmt.Fprintf(os.Stderr, "run %s(%v)\n", t.Callee, t.Args)
	})
}

// walkSchedule recurses into every nested sub-tree (FunctionDef bodies,
// If branches and the like; cpsir.Chain alone follows one continuation
// chain and never descends into them), collecting schedule(...) Call
// nodes in tree order.
func walkSchedule(root cpsir.Node, sched *scheduler.Scheduler) {
	for _, node := range cpsir.Chain(root) {
		if call, ok := node.(*cpsir.Call); ok {
			vars := call.Vars()
			if len(vars) > 0 && vars[0] == cpstrampoline.SchedulerCall {
				sched.Schedule(vars[1], vars[2:]...)
			}
		}
		for _, sub := range node.Subs() {
			walkSchedule(sub, sched)
		}
	}
}
