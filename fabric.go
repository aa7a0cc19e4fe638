package pipex

import (
	"fmt"
	"sync/atomic"

	"github.com/llxisdsh/pipex/internal/opt"
)

// Fabric connects the pipelines of peer compute units so that masked arrives
// fan out to the peers' stage barriers. One Fabric coordinates one pipeline:
// every rank of the shape constructs its pipeline against the same Fabric,
// registering its own arena, and no constructor returns until all ranks have
// joined. That rendezvous is what lets any rank signal any peer's barriers
// immediately after construction.
//
// All ranks must construct with identical stage counts.
type Fabric struct {
	_     noCopy
	shape Cluster

	// mu protects slots and joined during the join phase.
	mu     ticketLock
	slots  [][]Barrier
	joined int

	// door opens once every rank has joined.
	//   bit 0: done flag (1 = open)
	//   bits 1-31: waiter count
	door atomic.Uint32
	sema opt.Sema
}

const (
	fabricDoneFlag  = 1
	fabricOneWaiter = 2 // 1 << 1
)

// NewFabric returns a Fabric for the given shape.
//
// panic if the shape holds more ranks than a Mask can address (32).
func NewFabric(shape Cluster) *Fabric {
	if shape.Size() > 32 {
		panic("pipex: cluster size exceeds 32 ranks")
	}
	return &Fabric{
		shape: shape,
		slots: make([][]Barrier, shape.Size()),
	}
}

// Shape returns the cluster shape the fabric was built for.
func (f *Fabric) Shape() Cluster {
	return f.shape
}

// join registers rank's arena. The rank that completes the set opens the
// door for every waiting constructor.
func (f *Fabric) join(rank int, storage []Barrier) error {
	size := f.shape.Size()
	if rank < 0 || rank >= size {
		return fmt.Errorf("pipex: rank %d of %d: %w", rank, size, ErrTopology)
	}

	f.mu.Lock()
	if f.slots[rank] != nil {
		f.mu.Unlock()
		return fmt.Errorf("pipex: rank %d joined twice: %w", rank, ErrTopology)
	}
	f.slots[rank] = storage
	f.joined++
	last := f.joined == size
	f.mu.Unlock()

	if last {
		f.open()
	}
	return nil
}

// open releases every constructor parked in meet. Idempotent.
func (f *Fabric) open() {
	for {
		s := f.door.Load()
		if s&fabricDoneFlag != 0 {
			return
		}
		if f.door.CompareAndSwap(s, s|fabricDoneFlag) {
			waiters := s >> 1
			for range waiters {
				f.sema.Release()
			}
			return
		}
	}
}

// meet blocks until every rank has joined. Arenas registered by peers are
// safe to address once meet returns.
func (f *Fabric) meet() {
	for {
		s := f.door.Load()
		if s&fabricDoneFlag != 0 {
			return
		}
		if f.door.CompareAndSwap(s, s+fabricOneWaiter) {
			f.sema.Acquire()
			return
		}
	}
}

// barrier resolves a peer rank's slot. Callers must have passed meet.
func (f *Fabric) barrier(rank, slot int) *Barrier {
	return &f.slots[rank][slot]
}
