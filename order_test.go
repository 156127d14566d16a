package taskgraph

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestSetOrder_emptySuccessorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != `taskgraph: set order on empty successor handle` {
			t.Errorf(`unexpected panic value: %v`, r)
		}
	}()
	SetOrder(New(func() {}, nil), new(Handle))
}

func TestSetOrder_emptyPredecessorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != `taskgraph: set order on empty predecessor handle` {
			t.Errorf(`unexpected panic value: %v`, r)
		}
	}()
	SetOrder(new(Handle), New(func() {}, nil))
}

func TestSetOrder_selfPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != `taskgraph: task cannot be ordered after itself` {
			t.Errorf(`unexpected panic value: %v`, r)
		}
	}()
	h := New(func() {}, nil)
	SetOrder(h, h)
}

// A diamond: a before b and c, both before d. Submission is inline
// (synchronous), so completion order is fully determined by the graph.
func TestSetOrder_diamond(t *testing.T) {
	var mu sync.Mutex
	var order []string
	opts := &Options{Submitter: SubmitterFunc(Execute)}
	say := func(s string) Func {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, s)
		}
	}

	a := New(say(`a`), opts)
	b := New(say(`b`), opts)
	c := New(say(`c`), opts)
	d := New(say(`d`), opts)

	SetOrder(a, b)
	SetOrder(a, c)
	SetOrder(b, d)
	SetOrder(c, d)

	for _, h := range [...]*Handle{d, b, c} {
		if task := h.Release(); task != nil {
			t.Fatal(`task must be deferred`)
		}
	}
	Execute(a.Release())

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 4 {
		t.Fatalf(`ran %d tasks, want 4: %v`, len(order), order)
	}
	if order[0] != `a` || order[3] != `d` {
		t.Errorf(`unexpected execution order: %v`, order)
	}
}

// No lost wake-up, for any completion order: the successor is delivered
// exactly once, if and only if every registered predecessor completed.
func TestSetOrder_exactlyOnceUnderConcurrentCompletion(t *testing.T) {
	const preds = 16

	for iter := 0; iter < 200; iter++ {
		var ran atomic.Int64
		var wg sync.WaitGroup
		opts := &Options{Waiter: WaitGroup(&wg)}

		s := New(func() { ran.Add(1) }, opts)
		handles := make([]*Handle, preds)
		for i := range handles {
			handles[i] = New(func() {}, opts)
			SetOrder(handles[i], s)
		}
		if task := s.Release(); task != nil {
			t.Fatal(`successor must be deferred`)
		}

		var eg errgroup.Group
		for _, h := range handles {
			task := h.Release()
			eg.Go(func() error {
				Execute(task)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}
		wg.Wait()

		if n := ran.Load(); n != 1 {
			t.Fatalf(`iter %d: successor ran %d times, want 1`, iter, n)
		}
	}
}

// An edge registered after the predecessor completed must compensate, not
// leave the successor waiting forever.
func TestSetOrder_lateRegistrationIsVacuous(t *testing.T) {
	pred := New(func() {}, nil)
	tracker := Track(pred)
	defer tracker.Release()

	Execute(pred.Release())
	if !tracker.Completed() {
		t.Fatal(`predecessor must be completed`)
	}

	var ran atomic.Int64
	s := New(func() { ran.Add(1) }, nil)
	SetOrder(tracker, s)

	task := s.Release()
	if task == nil {
		t.Fatal(`successor must be ready immediately`)
	}
	Execute(task)
	if n := ran.Load(); n != 1 {
		t.Errorf(`ran %d times, want 1`, n)
	}
}

// Edges racing with the predecessor's completion drain either land on the
// list and are drained, or observe the terminal state and compensate;
// every successor runs exactly once either way.
func TestSetOrder_registrationRacesCompletion(t *testing.T) {
	const successors = 8

	for iter := 0; iter < 300; iter++ {
		var ran atomic.Int64
		var wg sync.WaitGroup
		opts := &Options{Waiter: WaitGroup(&wg)}

		pred := New(func() {}, opts)
		tracker := Track(pred)
		task := pred.Release()

		var eg errgroup.Group
		eg.Go(func() error {
			Execute(task)
			return nil
		})
		for i := 0; i < successors; i++ {
			eg.Go(func() error {
				s := New(func() { ran.Add(1) }, opts)
				SetOrder(tracker, s)
				if ready := s.Release(); ready != nil {
					Execute(ready)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}
		wg.Wait()
		tracker.Release()

		if n := ran.Load(); n != successors {
			t.Fatalf(`iter %d: ran %d successors, want %d`, iter, n, successors)
		}
	}
}

// Randomized graphs: every task must run exactly once, for any shape and
// any release/completion interleaving.
func TestSetOrder_randomizedGraphs(t *testing.T) {
	const tasks = 48

	for iter := 0; iter < 50; iter++ {
		rng := rand.New(rand.NewSource(int64(iter)))

		var wg sync.WaitGroup
		runs := make([]atomic.Int64, tasks)
		opts := &Options{Waiter: WaitGroup(&wg)}

		handles := make([]*Handle, tasks)
		for i := range handles {
			handles[i] = New(func() { runs[i].Add(1) }, opts)
		}

		// edges only from lower to higher index: acyclic by construction
		for i := 1; i < tasks; i++ {
			for _, j := range rng.Perm(i)[:rng.Intn(i+1)] {
				SetOrder(handles[j], handles[i])
			}
		}

		for _, i := range rng.Perm(tasks) {
			if task := handles[i].Release(); task != nil {
				go Execute(task)
			}
		}
		wg.Wait()

		for i := range runs {
			if n := runs[i].Load(); n != 1 {
				t.Fatalf(`iter %d: task %d ran %d times, want 1`, iter, i, n)
			}
		}
	}
}
