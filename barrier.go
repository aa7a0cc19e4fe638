package pipex

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/pipex/internal/opt"
)

// storageAlign is the minimum byte alignment of a barrier arena's base.
const storageAlign = 8

// Barrier is one stage's phase counter: the unit of handshake between the
// producer and consumer sides of a pipeline.
//
// State:
//   - completed: phases closed so far; its low bit is the parity a waiting
//     side compares against its own phase bit.
//   - arrived/txLeft: progress of the phase currently filling.
//
// A phase closes when every expected arrival has landed and every armed
// transaction unit has been posted back. Waiters park on a runtime semaphore
// in a target-ordered list, so a close wakes exactly the waiters it
// satisfies.
//
// Slots are padded so neighbouring stages never false-share.
// Size: one cache line.
type Barrier struct {
	mu        ticketLock
	completed atomic.Uint32
	arrived   uint32
	txLeft    uint32
	expect    uint32
	head      *stageWaiter
	tail      *stageWaiter

	_ [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		mu        ticketLock
		completed atomic.Uint32
		arrived   uint32
		txLeft    uint32
		expect    uint32
		head      *stageWaiter
		tail      *stageWaiter
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte
}

type stageWaiter struct {
	target uint32
	sema   opt.Sema
	// next is protected by Barrier.mu
	next *stageWaiter
}

// reset prepares the slot for a new pipeline: expect arrivals close one
// phase. The slot must not be in concurrent use.
func (b *Barrier) reset(expect uint32) {
	b.completed.Store(0)
	b.arrived = 0
	b.txLeft = 0
	b.expect = expect
	b.head = nil
	b.tail = nil
}

// arrive lands one arrival and arms tx transaction units in the same
// critical section, so a completion can never observe the expectation early.
func (b *Barrier) arrive(tx uint32) {
	b.mu.Lock()
	b.arrived++
	b.txLeft += tx
	b.completeLocked()
	b.mu.Unlock()
}

// CompleteTx posts n finished transaction units against the armed
// expectation. External copy engines call this on the handle obtained from
// ProducerBarrier as data lands; the phase closes when the armed count
// reaches zero and all arrivals are in.
//
// panic if n exceeds the units currently armed.
func (b *Barrier) CompleteTx(n uint32) {
	b.mu.Lock()
	if n > b.txLeft {
		b.mu.Unlock()
		panic("pipex: transaction completion exceeds armed units")
	}
	b.txLeft -= n
	b.completeLocked()
	b.mu.Unlock()
}

// completeLocked closes the current phase once all arrivals have landed and
// no armed units remain, then wakes every waiter whose target is reached.
func (b *Barrier) completeLocked() {
	if b.arrived < b.expect || b.txLeft != 0 {
		return
	}
	b.arrived -= b.expect
	done := b.completed.Add(1)

	var prev *stageWaiter
	curr := b.head
	for curr != nil {
		if curr.target <= done {
			curr.sema.Release()
			if prev == nil {
				b.head = curr.next
			} else {
				prev.next = curr.next
			}
			if curr == b.tail {
				b.tail = prev
			}
			curr = curr.next
		} else {
			prev = curr
			curr = curr.next
		}
	}
}

// wait blocks until the stage's parity differs from phase.
//
// The caller's phase bit records how many flips of this stage it has already
// consumed; equal parity means the awaited flip has not happened yet.
func (b *Barrier) wait(phase uint32) {
	for {
		// 1. Fast path: flip already visible.
		c := b.completed.Load()
		if c&1 != phase {
			return
		}

		// 2. Slow path: enqueue a waiter for the next close.
		b.mu.Lock()
		c = b.completed.Load()
		if c&1 != phase {
			b.mu.Unlock()
			return
		}
		w := &stageWaiter{target: c + 1}
		if b.tail == nil {
			b.head = w
			b.tail = w
		} else {
			b.tail.next = w
			b.tail = w
		}
		b.mu.Unlock()

		// 3. Sleep, then re-check the parity.
		w.sema.Acquire()
	}
}

// tryWait reports whether the awaited flip is already visible.
// It never blocks and never mutates the stage.
func (b *Barrier) tryWait(phase uint32) bool {
	return b.completed.Load()&1 != phase
}

// AllocStorage returns zeroed storage for one pipeline: 2*stages slots, the
// full half at [0:stages) and the empty half at [stages:2*stages).
func AllocStorage(stages int) []Barrier {
	if stages < 1 {
		panic("pipex: stages must be positive")
	}
	return make([]Barrier, 2*stages)
}

// validateStorage checks a caller-provided arena against the layout
// contract: present, sized for both halves, base aligned to storageAlign.
func validateStorage(s []Barrier, stages int) error {
	if s == nil {
		return fmt.Errorf("pipex: %w", ErrStorageNil)
	}
	if len(s) < 2*stages {
		return fmt.Errorf("pipex: %d slots for %d stages: %w", len(s), stages, ErrStorageShort)
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(s)))%storageAlign != 0 {
		return fmt.Errorf("pipex: %w", ErrStorageAlign)
	}
	return nil
}
