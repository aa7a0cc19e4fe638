package pipex

import (
	"sync/atomic"
)

// Fence throttles a store pipeline: it tracks operations issued against a
// fixed ring capacity and blocks the issuer while the ring is full. There is
// no per-stage barrier array and no consumer side; retirement is posted by
// the external store engine.
//
// Counters are monotonic:
//   - issued: operations recorded by Arrive.
//   - retired: operations confirmed by Complete.
//
// The issue side follows the pipeline's directional-write discipline: one
// producer group issues, the engine retires. Size: 40 bytes on 64-bit.
type Fence struct {
	_        noCopy
	capacity uint32
	issued   atomic.Uint32
	retired  atomic.Uint32

	// mu protects the waiter list only.
	mu   ticketLock
	head *stageWaiter
	tail *stageWaiter
}

// NewFence returns a fence for a ring of stages operations.
//
// panic if stages < 1.
func NewFence(stages int) *Fence {
	if stages < 1 {
		panic("pipex: stages must be positive")
	}
	return &Fence{capacity: uint32(stages)}
}

// Arrive records one issued operation.
func (f *Fence) Arrive() {
	f.issued.Add(1)
}

// Wait blocks until at most capacity-1 operations remain outstanding, so
// the next issue fits in the ring.
func (f *Fence) Wait() {
	issued := f.issued.Load()
	if issued < f.capacity {
		return
	}
	f.waitRetired(issued - f.capacity + 1)
}

// TryWait reports whether Wait would return immediately.
// It never blocks and never mutates the fence.
func (f *Fence) TryWait() bool {
	issued := f.issued.Load()
	return issued < f.capacity || f.retired.Load() >= issued-f.capacity+1
}

// Tail drains the fence: it blocks until every issued operation has retired.
func (f *Fence) Tail() {
	f.waitRetired(f.issued.Load())
}

// Complete posts n retired operations and wakes waiters whose targets are
// reached.
//
// panic if n exceeds the operations still outstanding.
func (f *Fence) Complete(n uint32) {
	if n == 0 {
		return
	}

	f.mu.Lock()
	if f.retired.Load()+n > f.issued.Load() {
		f.mu.Unlock()
		panic("pipex: fence completion exceeds issued operations")
	}
	done := f.retired.Add(n)

	var prev *stageWaiter
	curr := f.head
	for curr != nil {
		if curr.target <= done {
			curr.sema.Release()
			if prev == nil {
				f.head = curr.next
			} else {
				prev.next = curr.next
			}
			if curr == f.tail {
				f.tail = prev
			}
			curr = curr.next
		} else {
			prev = curr
			curr = curr.next
		}
	}
	f.mu.Unlock()
}

// waitRetired blocks until retired reaches target. retired is monotonic, so
// a single wake satisfies the waiter permanently.
func (f *Fence) waitRetired(target uint32) {
	// 1. Fast path
	if f.retired.Load() >= target {
		return
	}

	// 2. Enqueue under the lock, re-checking first.
	f.mu.Lock()
	if f.retired.Load() >= target {
		f.mu.Unlock()
		return
	}
	w := &stageWaiter{target: target}
	if f.tail == nil {
		f.head = w
		f.tail = w
	} else {
		f.tail.next = w
		f.tail = w
	}
	f.mu.Unlock()

	// 3. Sleep
	w.sema.Acquire()
}
