package taskgraph

import (
	"sync"

	"github.com/joeycumines/logiface"
)

type (
	// Func is the body of a task.
	Func func()

	// Options models optional configuration, for New. A nil *Options is
	// equivalent to the zero value.
	Options struct {
		// Submitter receives tasks that become ready while no worker is in a
		// position to run them directly (i.e. every ready successor beyond
		// the first, during a completion drain, plus discard fallout).
		// **Defaults to running each task on a new goroutine, via Execute.**
		Submitter Submitter

		// Waiter, if non-nil, is reserved once when the task is created and
		// released once when the task is torn down, so an enclosing
		// "wait for all" scope stays accurate even for tasks still deferred
		// on predecessors. See WaitGroup.
		Waiter Waiter

		// Context is an opaque reference to the execution context that
		// groups this task, made available to the Submitter via
		// Task.Context. It is not interpreted by this package.
		Context any

		// Logger enables structured logging of graph events, at debug and
		// trace levels. May be nil (logging disabled).
		Logger *logiface.Logger[logiface.Event]
	}

	// Submitter hands a ready task to a run queue. Implementations must be
	// safe for concurrent use; Submit may be called from any goroutine that
	// happens to complete the task's last predecessor.
	Submitter interface {
		Submit(t *Task)
	}

	// SubmitterFunc implements Submitter.
	SubmitterFunc func(t *Task)

	// Waiter is a wait-scope reservation: Reserve is called once per task
	// created against it, Release once per task torn down. See WaitGroup.
	Waiter interface {
		Reserve()
		Release()
	}

	// Predecessor identifies the task that must finish first, in SetOrder.
	// It is implemented by *Handle (a task not yet released) and by Tracker
	// (a task possibly already handed to the scheduler).
	Predecessor interface {
		predecessorState() *depState
	}

	waitGroupWaiter struct {
		wg *sync.WaitGroup
	}
)

// Submit implements Submitter.
func (x SubmitterFunc) Submit(t *Task) { x(t) }

// WaitGroup adapts a sync.WaitGroup into a Waiter, so that wg.Wait blocks
// until every task created against it has been completed or discarded,
// including tasks still deferred on predecessors.
func WaitGroup(wg *sync.WaitGroup) Waiter { return waitGroupWaiter{wg} }

func (x waitGroupWaiter) Reserve() { x.wg.Add(1) }
func (x waitGroupWaiter) Release() { x.wg.Done() }

// New creates a task with the given body, returning the Handle that owns it.
// The provided opts may be nil. A panic will occur if fn is nil.
//
// The handle must either be released (handing the task to the caller or,
// once its predecessors allow, to the Submitter) or discarded; see Handle.
func New(fn Func, opts *Options) *Handle {
	if fn == nil {
		panic(`taskgraph: nil task func`)
	}

	t := &Task{fn: fn, id: lastTaskID.Add(1)}
	if opts != nil {
		t.submitter = opts.Submitter
		t.waiter = opts.Waiter
		t.ctx = opts.Context
		t.logger = opts.Logger
	}

	if t.waiter != nil {
		t.waiter.Reserve()
	}

	t.logger.Trace().
		Uint64(`task`, t.id).
		Log(`task created`)

	return &Handle{task: t}
}

// SetOrder registers a dependency: the task owned by succ will not run, nor
// be handed to its Submitter, until the pred task has completed. It may be
// called concurrently with other SetOrder calls for the same tasks, and
// concurrently with the predecessor completing (a predecessor that already
// finished leaves the successor unaffected).
//
// A panic will occur if succ is empty, pred is empty, or pred and succ are
// the same task.
func SetOrder(pred Predecessor, succ *Handle) {
	if pred == nil {
		panic(`taskgraph: nil predecessor`)
	}
	if succ.Empty() {
		panic(`taskgraph: set order on empty successor handle`)
	}

	ps := pred.predecessorState()
	ss := succ.task.depState()
	if ps == ss {
		panic(`taskgraph: task cannot be ordered after itself`)
	}

	ps.addSuccessor(ss.getGate(succ.task))

	succ.task.logger.Trace().
		Uint64(`task`, succ.task.id).
		Log(`dependency registered`)
}

// Execute runs t to completion, then continues with any bypass task made
// ready by draining t's successors. It is the minimal worker loop; a
// scheduler should call it (or an equivalent Run/Complete sequence) for
// every task received via Submitter.Submit or returned by Handle.Release.
func Execute(t *Task) {
	for t != nil {
		t.Run()
		t = t.Complete()
	}
}
