// Package scheduler is the Go-side counterpart of the `schedule`/`run`
// pair every trampolined program imports (original_source/scheduler.py):
// a FIFO task queue. It is not used by the emitted surface-language
// program, which gets its own scheduler via cpstrampoline.Prelude; it
// backs the `cpst dump --simulate` diagnostic instead, replaying a
// trampolined program's continuation-invocation order in Go so FIFO
// scheduling can be sanity-checked before emission.
package scheduler

// Task is one queued continuation invocation: a callee name and its
// already-evaluated argument variable names, mirroring
// original_source/scheduler.py's `(fun, args)` tuple.
type Task struct {
	Callee string
	Args   []string
}

// Scheduler is a FIFO queue of pending Tasks.
type Scheduler struct {
	tasks []Task
	Trace []Task
}

// New returns an empty Scheduler.
func New() *Scheduler { return &Scheduler{} }

// Schedule enqueues a continuation invocation, mirroring
// `schedule(fun, *args)`.
func (s *Scheduler) Schedule(callee string, args ...string) {
	s.tasks = append(s.tasks, Task{Callee: callee, Args: args})
}

// Pending reports how many tasks are still queued.
func (s *Scheduler) Pending() int { return len(s.tasks) }

// Run drains the queue in FIFO order, mirroring `run()`'s `while
// len(tasks): fun, args = tasks.pop(0); fun(*args)`. dispatch may call
// Schedule again, extending the queue mid-run, exactly as a continuation
// body that itself makes a CPS call does. Every task actually run is
// appended to Trace in the order it ran, for callers that want to
// assert on FIFO ordering.
func (s *Scheduler) Run(dispatch func(Task)) {
	for len(s.tasks) > 0 {
		t := s.tasks[0]
		s.tasks = s.tasks[1:]
		s.Trace = append(s.Trace, t)
		dispatch(t)
	}
}
