// Package taskgraph implements lock-free dependency tracking between tasks
// submitted to a concurrent scheduler.
//
// It lets a scheduler express "run task B only after tasks A1..An have
// finished" without blocking any worker, and without the waiting task
// occupying a goroutine while idle. Waiting is expressed purely as deferred
// scheduling: a task with outstanding predecessors is simply not handed to
// its [Submitter] until the last predecessor completes, at which point it is
// delivered exactly once, either directly to the completing worker (bypass)
// or via Submitter.Submit.
//
// The package tracks dependencies only. It does not decide what a task
// computes, does not implement a scheduling policy, and does not provide
// cross-process dependency tracking; those belong to the surrounding
// runtime, reached through the [Submitter] and [Waiter] seams.
//
// Example usage:
//
//	var wg sync.WaitGroup
//	opts := &taskgraph.Options{Waiter: taskgraph.WaitGroup(&wg)}
//
//	a := taskgraph.New(stepA, opts)
//	b := taskgraph.New(stepB, opts)
//	taskgraph.SetOrder(a, b) // b runs after a
//
//	b.Release()              // deferred until a completes
//	taskgraph.Execute(a.Release())
//	wg.Wait()
//
// All shared state is manipulated through atomic compare-and-swap protocols;
// no operation blocks, spins unboundedly, or takes a lock. Misuse of the
// ownership contracts (releasing an empty handle, releasing a reference
// twice, transferring successors twice) is a programming error and panics.
package taskgraph
