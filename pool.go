package taskgraph

import (
	"sync"
	"sync/atomic"
)

// The graph's bookkeeping objects are small, fixed-size, and churn quickly
// under load, so they are recycled through per-type pools. Nodes are only
// recycled after the owning list has reached a terminal state, so a stale
// head value can never reappear on the same list and the CAS loops in
// depState are not subject to ABA.

// poolStats backs the alloc/free balance assertions in tests; every get is
// matched by exactly one put over a quiescent workload.
var poolStats struct {
	nodeGets, nodePuts   atomic.Int64
	gateGets, gatePuts   atomic.Int64
	stateGets, statePuts atomic.Int64
}

var (
	nodePool  = sync.Pool{New: func() any { return new(successorNode) }}
	gatePool  = sync.Pool{New: func() any { return new(gate) }}
	statePool = sync.Pool{New: func() any { return new(depState) }}
)

func newNode(g *gate) *successorNode {
	poolStats.nodeGets.Add(1)
	n := nodePool.Get().(*successorNode)
	n.gate = g
	n.next = nil
	return n
}

func freeNode(n *successorNode) {
	n.gate = nil
	n.next = nil
	nodePool.Put(n)
	poolStats.nodePuts.Add(1)
}

func newGate(t *Task) *gate {
	poolStats.gateGets.Add(1)
	g := gatePool.Get().(*gate)
	g.task = t
	g.count.Store(1)
	return g
}

func freeGate(g *gate) {
	g.task = nil
	gatePool.Put(g)
	poolStats.gatePuts.Add(1)
}

func newState() *depState {
	poolStats.stateGets.Add(1)
	s := statePool.Get().(*depState)
	s.head.Store(nil)
	s.gate.Store(nil)
	s.replacement.Store(nil)
	s.refs.Store(1)
	s.status.Store(statusNone)
	return s
}

func freeState(s *depState) {
	statePool.Put(s)
	poolStats.statePuts.Add(1)
}
