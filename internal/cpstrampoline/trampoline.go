// Package cpstrampoline supplies the trampoline variant described in
// spec.md §4.5: it overrides the single hook that controls how a
// continuation invocation is encoded, routing every `k(v)` / `k()`
// through a scheduler's queue instead of calling directly, so a deeply
// recursive CPS program (original_source/tak.py unrolled through
// cps_tak is the standing example) runs in bounded native stack depth.
//
// original_source/trampoline.py sketches this as an invoke_continuation
// hook on a transformer subclass that transform.py's t_Return never
// actually calls; here the hook is wired all the way through, since a
// trampoline variant that doesn't touch the continuation-invocation
// path isn't one.
package cpstrampoline

import (
	"github.com/cwbudde/cpst/internal/cpsir"
	"github.com/cwbudde/cpst/internal/cpslower"
)

// SchedulerCall is the function name the emitted program's `scheduler`
// module (see testdata/scheduler.src) exposes for queuing a continuation
// invocation.
const SchedulerCall = "schedule"

type invoker struct{}

func (invoker) Live(name, value string) cpsir.Node {
	return cpsir.NewCall(SchedulerCall, []string{name, value}, cpsir.NullCont)
}

func (invoker) Dead(name string) cpsir.Node {
	return cpsir.NewCall(SchedulerCall, []string{name}, cpsir.NullCont)
}

// New returns a Lowerer configured to emit scheduler-mediated
// continuation invocations. Every other lowering rule is inherited
// unchanged from cpslower.Lowerer.
func New(file, source string, opts ...cpslower.Option) *cpslower.Lowerer {
	return cpslower.New(file, source, append(opts, cpslower.WithInvoker(invoker{}))...)
}

// Prelude and Epilogue bracket an emitted program so it actually runs
// under the scheduler: Prelude imports the schedule/run pair from the
// surface-language `scheduler` module, and Epilogue kicks the trampoline's event
// loop once the top-level call has been scheduled.
func Prelude() string {
	return "from scheduler import schedule, run\n\n"
}

func Epilogue() string {
	return "\nrun()\n"
}
