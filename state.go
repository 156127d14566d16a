package taskgraph

import (
	"sync/atomic"
)

// task status, tracked on the dependency state so Tracker values can
// observe it after the handle is gone
const (
	statusNone uint32 = iota
	statusSubmitted
	statusCompleted
)

// The successor list head is a tagged pointer: nil or a node while the list
// is growing, or one of these sentinels once it reaches a terminal state.
// Both transitions are one-way and mutually exclusive for a given state's
// lifetime; a head that reads as transferred additionally implies
// replacement is set (stored before the head exchange).
var (
	completedList   = new(successorNode)
	transferredList = new(successorNode)
)

type (
	// depState is the per-task dependency bookkeeping, created lazily, at
	// most once per task. It is co-owned by the task (the initial reference
	// unit), by every Tracker, and, after a transfer, by the superseded
	// state that redirects to it; it is freed exactly once, when the last
	// unit is released.
	depState struct {
		head        atomic.Pointer[successorNode]
		gate        atomic.Pointer[gate]
		replacement atomic.Pointer[depState]
		refs        atomic.Int64
		status      atomic.Uint32
	}

	// successorNode is one predecessor -> successor edge. The next link is
	// written before the node is published via the head CAS, and read only
	// after the one-shot drain exchange, which orders the accesses.
	successorNode struct {
		gate *gate
		next *successorNode
	}
)

func (x *depState) reserve() { x.refs.Add(1) }

func (x *depState) release() {
	switch n := x.refs.Add(-1); {
	case n > 0:
		return
	case n < 0:
		panic(`taskgraph: dependency state released below zero`)
	}

	// drop the co-ownership link before the state itself is recycled
	if r := x.replacement.Load(); r != nil {
		r.release()
	}
	freeState(x)
}

func (x *depState) markSubmitted() {
	x.status.CompareAndSwap(statusNone, statusSubmitted)
}

// getGate returns the readiness gate for t, the task owning this state,
// creating it on first use. Racing creators converge on a single winner;
// losers return their candidate to the pool.
func (x *depState) getGate(t *Task) *gate {
	if g := x.gate.Load(); g != nil {
		return g
	}
	g := newGate(t)
	if x.gate.CompareAndSwap(nil, g) {
		t.blocked.Store(true)
		return g
	}
	freeGate(g)
	return x.gate.Load()
}

// addSuccessor registers an edge against g, the successor's gate. The gate
// unit is reserved before the node is published, so a concurrent complete
// either observes the node on the list or the push observes the drained
// list and compensates: the unit can be neither lost nor leaked.
func (x *depState) addSuccessor(g *gate) {
	g.reserve()
	x.push(newNode(g))
}

func (x *depState) push(n *successorNode) {
	s := x
	for {
		head := s.head.Load()
		switch head {
		case completedList:
			// the predecessor already finished; the edge is vacuous
			if t := n.gate.release(1); t != nil {
				t.submit()
			}
			freeNode(n)
			return
		case transferredList:
			s = s.replacement.Load()
			continue
		}
		n.next = head
		if s.head.CompareAndSwap(head, n) {
			return
		}
	}
}

// pushChain appends a frozen chain of already-reserved nodes (obtained by a
// transfer) in a single head exchange, following the same discipline as
// push.
func (x *depState) pushChain(first *successorNode) {
	tail := first
	for tail.next != nil {
		tail = tail.next
	}

	s := x
	for {
		head := s.head.Load()
		switch head {
		case completedList:
			tail.next = nil // sever any link left by a failed exchange
			for n := first; n != nil; {
				next := n.next
				if t := n.gate.release(1); t != nil {
					t.submit()
				}
				freeNode(n)
				n = next
			}
			return
		case transferredList:
			s = s.replacement.Load()
			continue
		}
		tail.next = head
		if s.head.CompareAndSwap(head, first) {
			return
		}
	}
}

// complete transitions the successor list to its drained terminal state,
// obtaining the list as it stood at that instant; exactly one caller ever
// observes the pre-completion list. Each drained edge releases one unit
// from its gate; the first successor made ready that way is returned for
// the caller to run directly, the rest are submitted from within the walk.
// A transferred list is left untouched: its successors, including any
// registered from now on, belong to the replacement state.
func (x *depState) complete() (bypass *Task) {
	x.status.Store(statusCompleted)

	var head *successorNode
	for {
		head = x.head.Load()
		if head == completedList || head == transferredList {
			return nil
		}
		if x.head.CompareAndSwap(head, completedList) {
			break
		}
	}

	for n := head; n != nil; {
		next := n.next
		if t := n.gate.release(1); t != nil {
			if bypass == nil {
				bypass = t
			} else {
				t.submit()
			}
		}
		freeNode(n)
		n = next
	}

	return
}

// transferTo redirects this state's successors, present and future, to dst.
// This state takes a reference unit on dst (released only when this state
// itself dies), stores the replacement pointer, then freezes the list with
// a one-shot exchange and appends it onto dst.
func (x *depState) transferTo(dst *depState) {
	dst.reserve()
	if !x.replacement.CompareAndSwap(nil, dst) {
		panic(`taskgraph: successors already transferred`)
	}

	var head *successorNode
	for {
		head = x.head.Load()
		if head == completedList {
			panic(`taskgraph: transfer after completion`)
		}
		if x.head.CompareAndSwap(head, transferredList) {
			break
		}
	}

	if head != nil {
		dst.pushChain(head)
	}
}
