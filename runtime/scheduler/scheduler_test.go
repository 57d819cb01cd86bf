package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleAndRunFIFOOrder(t *testing.T) {
	s := New()
	s.Schedule("a")
	s.Schedule("b", "x")
	s.Schedule("c", "x", "y")

	assert.Equal(t, 3, s.Pending())

	var ran []string
	s.Run(func(t Task) { ran = append(ran, t.Callee) })

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestRunDrainsTasksScheduledDuringDispatch(t *testing.T) {
	s := New()
	s.Schedule("first")

	var ran []string
	s.Run(func(t Task) {
		ran = append(ran, t.Callee)
		if t.Callee == "first" {
			s.Schedule("second")
		}
	})

	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestTraceRecordsRunOrderWithArgs(t *testing.T) {
	s := New()
	s.Schedule("k0", "v0")
	s.Run(func(Task) {})

	assert.Equal(t, []Task{{Callee: "k0", Args: []string{"v0"}}}, s.Trace)
}
