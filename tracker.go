package taskgraph

// Tracker is a shareable observer of a task's dependency state, letting
// code declare "that task must finish before this one" (via SetOrder) or
// query its status after the Handle has been released. It does not own the
// task.
//
// Each non-empty Tracker value holds one reference unit on the underlying
// state: Track and Clone each take a unit, Release drops one. A plain
// struct copy shares the unit of its source, so exactly one of the copies
// may be released. The zero value is empty.
type Tracker struct {
	state *depState
}

// Track constructs a Tracker observing the task owned by h. A panic will
// occur if h is empty.
func Track(h *Handle) Tracker {
	if h.Empty() {
		panic(`taskgraph: track of empty task handle`)
	}
	s := h.task.depState()
	s.reserve()
	return Tracker{state: s}
}

// Clone returns a new Tracker observing the same task, taking its own
// reference unit. Cloning an empty Tracker returns an empty Tracker.
func (x Tracker) Clone() Tracker {
	if x.state != nil {
		x.state.reserve()
	}
	return x
}

// Release drops the Tracker's reference unit and leaves it empty. It is a
// no-op on an empty Tracker, and must be called at most once per unit held.
func (x *Tracker) Release() {
	if x.state == nil {
		return
	}
	s := x.state
	x.state = nil
	s.release()
}

// Empty reports whether the Tracker observes no task.
func (x Tracker) Empty() bool { return x.state == nil }

// Equal reports whether both Trackers observe the same task. All empty
// Trackers compare equal.
func (x Tracker) Equal(other Tracker) bool { return x.state == other.state }

// Submitted reports whether the tracked task's handle has been released
// toward the scheduler (including tasks deferred on predecessors, and
// completed tasks). A panic will occur if the Tracker is empty.
func (x Tracker) Submitted() bool {
	if x.state == nil {
		panic(`taskgraph: status of empty tracker`)
	}
	return x.state.status.Load() >= statusSubmitted
}

// Completed reports whether the tracked task has finished (or was
// discarded). A panic will occur if the Tracker is empty.
func (x Tracker) Completed() bool {
	if x.state == nil {
		panic(`taskgraph: status of empty tracker`)
	}
	return x.state.status.Load() == statusCompleted
}

func (x Tracker) predecessorState() *depState {
	if x.state == nil {
		panic(`taskgraph: set order on empty tracker`)
	}
	return x.state
}
