package taskgraph

// Handle exclusively owns a task prior to submission. The zero value is
// empty. A Handle is not safe for concurrent use: releasing or discarding
// it must not race with other operations on the same Handle (SetOrder calls
// naming it as the successor included).
type Handle struct {
	task *Task
}

// Empty reports whether the handle owns no task (zero value, already
// released, or already discarded).
func (x *Handle) Empty() bool { return x == nil || x.task == nil }

// Release removes ownership of the task, handing it toward the scheduler,
// and leaves the handle empty. If the task has no outstanding predecessors
// it is returned, ready for the caller to run (see Execute) or enqueue.
// Otherwise nil is returned and the task is deferred: when its last
// predecessor completes it is delivered exactly once, to that completer or
// its Submitter.
//
// A panic will occur if the handle is empty.
func (x *Handle) Release() *Task {
	if x.Empty() {
		panic(`taskgraph: release of empty task handle`)
	}

	t := x.task
	x.task = nil

	if s := t.state.Load(); s != nil {
		s.markSubmitted()
		if g := s.gate.Load(); g != nil {
			// the handle's implicit readiness unit, reserved at gate
			// creation; nil means predecessors are still outstanding
			return g.release(1)
		}
	}

	return t
}

// Discard abandons the task without executing it, leaving the handle empty.
// The task is torn down normally (wait-scope released, successors drained
// so dependents are not stranded); if predecessors are still outstanding,
// teardown happens when the last of them completes. Discarding an empty
// handle is a no-op.
func (x *Handle) Discard() {
	if x.Empty() {
		return
	}

	t := x.task
	x.task = nil
	t.discarded.Store(true)

	t.logger.Debug().
		Uint64(`task`, t.id).
		Log(`task discarded`)

	if s := t.state.Load(); s != nil {
		if g := s.gate.Load(); g != nil {
			g.release(1) // the last predecessor finalizes the task
			return
		}
	}

	t.finalizeDiscarded()
}

func (x *Handle) predecessorState() *depState {
	if x.Empty() {
		panic(`taskgraph: set order on empty predecessor handle`)
	}
	return x.task.depState()
}
