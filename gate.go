package taskgraph

import (
	"sync/atomic"
)

// gate counts down the readiness of a single task. The count starts at 1,
// representing the still-unsubmitted owning handle, and is incremented once
// per registered predecessor edge before that edge becomes discoverable.
// The transition to zero happens at most once, is the sole producer of
// "task is now ready", and ends the gate's lifetime.
type gate struct {
	count atomic.Int64
	task  *Task
}

// reserve adds one outstanding unit; callers must already hold a unit (or
// be covered by the implicit handle unit), so the count is never revived
// from zero.
func (x *gate) reserve() { x.count.Add(1) }

// release removes n units. On the zero transition the task's blocked bit is
// cleared, the gate is freed, and the now-ready task is returned, exactly
// once across all callers. A discarded task is finalized here instead of
// being returned.
func (x *gate) release(n int64) *Task {
	switch c := x.count.Add(-n); {
	case c > 0:
		return nil
	case c < 0:
		panic(`taskgraph: readiness gate released below zero`)
	}

	t := x.task
	t.blocked.Store(false)
	freeGate(x)

	if t.discarded.Load() {
		t.finalizeDiscarded()
		return nil
	}

	t.logger.Debug().
		Uint64(`task`, t.id).
		Log(`task ready`)

	return t
}
