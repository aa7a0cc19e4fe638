package pipex

import "fmt"

// Store is the pipeline for offload-engine stores. There is no consumer side
// and no barrier array: a fence throttles the producer against the ring
// capacity while the store engine retires operations out of band.
//
// The State arguments exist for surface symmetry with the other pipelines;
// a fence needs no cursor.
type Store struct {
	_      noCopy
	fence  *Fence
	stages int
}

// NewStore builds a store pipeline over a ring of stages operations.
func NewStore(stages int, producer Group) (*Store, error) {
	if stages < 1 {
		return nil, fmt.Errorf("pipex: %d stages: %w", stages, ErrStages)
	}
	if producer.Size < 1 {
		return nil, fmt.Errorf("pipex: producer: %w", ErrGroupSize)
	}
	return &Store{fence: NewFence(stages), stages: stages}, nil
}

// Stages returns the ring size.
func (p *Store) Stages() int {
	return p.stages
}

// ProducerAcquire blocks until the ring has room for the next store.
// A ready token from ProducerTryAcquire skips the wait.
func (p *Store) ProducerAcquire(s State, tok ...Token) {
	if skipWait(tok) {
		return
	}
	p.fence.Wait()
}

// ProducerTryAcquire probes for ring room without blocking.
func (p *Store) ProducerTryAcquire(s State) Token {
	if p.fence.TryWait() {
		return TokenReady
	}
	return TokenNone
}

// ProducerCommit records one issued store.
func (p *Store) ProducerCommit(s State) {
	p.fence.Arrive()
}

// Complete posts n stores retired by the engine.
func (p *Store) Complete(n uint32) {
	p.fence.Complete(n)
}

// ConsumerWait panics: a store pipeline has no consumer agent.
func (p *Store) ConsumerWait(s State, tok ...Token) {
	panic("pipex: store pipeline has no consumer agent")
}

// ConsumerTryWait panics: a store pipeline has no consumer agent.
func (p *Store) ConsumerTryWait(s State) Token {
	panic("pipex: store pipeline has no consumer agent")
}

// ConsumerRelease panics: a store pipeline has no consumer agent.
func (p *Store) ConsumerRelease(s State) {
	panic("pipex: store pipeline has no consumer agent")
}

// ProducerTail blocks until every issued store has retired, then returns s
// unchanged; a fence needs no cursor to drain.
func (p *Store) ProducerTail(s State) State {
	p.fence.Tail()
	return s
}
