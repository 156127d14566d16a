package taskgraph

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// lastTaskID issues identifiers for logging.
var lastTaskID atomic.Uint64

// Task is the unit of work, reference-counted into the dependency graph by
// at most one lazily-created dependency state. A *Task is only ever held by
// one party at a time: the Handle prior to release, then whichever worker
// it was returned or submitted to. Run and Complete must each be called at
// most once, by that party.
type Task struct {
	fn        Func
	submitter Submitter
	waiter    Waiter
	ctx       any
	logger    *logiface.Logger[logiface.Event]
	id        uint64
	state     atomic.Pointer[depState]
	blocked   atomic.Bool
	discarded atomic.Bool
}

// Context returns the opaque execution-context reference the task was
// created with, see Options.Context.
func (x *Task) Context() any { return x.ctx }

// Run executes the task body. It does not touch the dependency graph; the
// caller must follow up with Complete.
func (x *Task) Run() { x.fn() }

// Complete marks the task finished and drains its successor list, releasing
// one readiness unit per registered edge. At most one newly-ready successor
// is returned, for the caller to run without re-entering the scheduler; any
// further ready successors are submitted directly. Must be called exactly
// once, after Run (or in place of it, for discarded tasks).
func (x *Task) Complete() (bypass *Task) {
	if s := x.state.Load(); s != nil {
		bypass = s.complete()
	}

	x.logger.Trace().
		Uint64(`task`, x.id).
		Log(`task completed`)

	// the wait scope is released last: once it unblocks, teardown is done
	if s := x.state.Load(); s != nil {
		s.release()
	}
	if x.waiter != nil {
		x.waiter.Release()
	}

	return
}

// TransferSuccessorsTo hands every registered successor of this task, and
// every successor registered against it from now on, to the task owned by
// succ. It is intended to be called from within the running task's body,
// when the task is superseded by a continuation that should inherit its
// dependents. At most one transfer is permitted per task.
//
// A panic will occur if succ is empty, refers to this task, or the task's
// successors were already transferred.
func (x *Task) TransferSuccessorsTo(succ *Handle) {
	if succ.Empty() {
		panic(`taskgraph: transfer to empty task handle`)
	}

	src := x.depState()
	dst := succ.task.depState()
	if src == dst {
		panic(`taskgraph: transfer to the task itself`)
	}

	src.transferTo(dst)

	x.logger.Debug().
		Uint64(`task`, x.id).
		Uint64(`to`, succ.task.id).
		Log(`successors transferred`)
}

// depState returns the task's dependency state, creating it on first use.
// Racing creators converge on a single winner; losers return their
// candidate to the pool.
func (x *Task) depState() *depState {
	if s := x.state.Load(); s != nil {
		return s
	}
	s := newState()
	if x.state.CompareAndSwap(nil, s) {
		return s
	}
	freeState(s)
	return x.state.Load()
}

// submit hands the (ready) task to its run queue.
func (x *Task) submit() {
	x.logger.Trace().
		Uint64(`task`, x.id).
		Log(`task submitted`)

	if x.submitter != nil {
		x.submitter.Submit(x)
		return
	}
	go Execute(x)
}

// finalizeDiscarded tears down a task whose handle was discarded: the body
// never runs, but the successor list is still drained, so dependents treat
// the task as completed rather than waiting forever.
func (x *Task) finalizeDiscarded() {
	if bypass := x.Complete(); bypass != nil {
		bypass.submit()
	}
}
