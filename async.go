package pipex

import "fmt"

// Config assembles a pipeline over a stage ring.
type Config struct {
	// Stages is the ring size, fixed for the pipeline's lifetime.
	Stages int

	// Producer and Consumer describe the agent groups on each side. A
	// stage's handshake completes only when the whole group has arrived.
	Producer Group
	Consumer Group

	// Storage is the barrier arena: at least 2*Stages slots, full half
	// first, base aligned to storageAlign. Nil allocates a fresh arena.
	Storage []Barrier

	// Fabric spans the pipeline across peer units; nil keeps it local.
	// Rank is this unit's rank within the fabric shape.
	Fabric *Fabric
	Rank   int

	// ProducerMask fans producer commits out to peer ranks.
	// ConsumerMask does the same for consumer releases.
	// A zero mask stays local.
	ProducerMask Mask
	ConsumerMask Mask
}

// build validates the config, slices the arena into its full and empty
// views, resets every slot, and performs the collective construction
// rendezvous. All pipeline variants construct through it.
func (c Config) build(producerOp, consumerOp Op, tx uint32) (full, empty Barriers, err error) {
	if c.Stages < 1 {
		return full, empty, fmt.Errorf("pipex: %d stages: %w", c.Stages, ErrStages)
	}
	if c.Producer.Size < 1 {
		return full, empty, fmt.Errorf("pipex: producer: %w", ErrGroupSize)
	}
	if c.Consumer.Size < 1 {
		return full, empty, fmt.Errorf("pipex: consumer: %w", ErrGroupSize)
	}

	storage := c.Storage
	if storage == nil {
		storage = AllocStorage(c.Stages)
	}
	if err := validateStorage(storage, c.Stages); err != nil {
		return full, empty, err
	}

	n := c.Stages
	full = newBarriers(storage[:n], producerOp, tx, c.Fabric, c.Rank, 0)
	empty = newBarriers(storage[n:2*n], consumerOp, 0, c.Fabric, c.Rank, n)
	full.reset(uint32(c.Producer.Size))
	empty.reset(uint32(c.Consumer.Size))

	// Collective initialization: no rank may touch a peer's barriers until
	// every rank has registered a freshly reset arena.
	if c.Fabric != nil {
		if err := c.Fabric.join(c.Rank, storage); err != nil {
			return full, empty, err
		}
		c.Fabric.meet()
	}
	return full, empty, nil
}

// Async is the base pipeline: both sides are ordinary execution contexts and
// every handshake step is software-issued.
//
// Per-stage state transitions:
//
//	empty barrier, empty state: ProducerAcquire returns; ConsumerRelease n/a
//	empty barrier, wait state:  ProducerAcquire blocks until ConsumerRelease
//	full barrier, wait state:   ConsumerWait blocks until ProducerCommit
//	full barrier, full state:   ConsumerWait returns
//
// The pipeline is immutable after construction; only the externally held
// State cursors move.
type Async struct {
	_            noCopy
	full         Barriers
	empty        Barriers
	stages       int
	producerMask Mask
	consumerMask Mask
}

// NewAsync builds the base pipeline described by cfg.
func NewAsync(cfg Config) (*Async, error) {
	full, empty, err := cfg.build(OpThread, OpThread, 0)
	if err != nil {
		return nil, err
	}
	return &Async{
		full:         full,
		empty:        empty,
		stages:       cfg.Stages,
		producerMask: cfg.ProducerMask,
		consumerMask: cfg.ConsumerMask,
	}, nil
}

// Stages returns the ring size.
func (p *Async) Stages() int {
	return p.stages
}

// ProducerAcquire blocks until stage s.Index() is empty at the producer's
// phase. A ready token from ProducerTryAcquire skips the wait.
func (p *Async) ProducerAcquire(s State, tok ...Token) {
	if skipWait(tok) {
		return
	}
	p.empty.Wait(s.Index(), s.Phase())
}

// ProducerTryAcquire probes the stage without blocking or mutating it.
func (p *Async) ProducerTryAcquire(s State) Token {
	if p.empty.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ProducerCommit publishes the stage: one arrive on the full barrier, fanned
// out by the producer mask.
func (p *Async) ProducerCommit(s State) {
	p.full.Arrive(s.Index(), p.producerMask)
}

// ConsumerWait blocks until stage s.Index() is full at the consumer's phase.
// A ready token from ConsumerTryWait skips the wait.
func (p *Async) ConsumerWait(s State, tok ...Token) {
	if skipWait(tok) {
		return
	}
	p.full.Wait(s.Index(), s.Phase())
}

// ConsumerTryWait probes the stage without blocking or mutating it.
func (p *Async) ConsumerTryWait(s State) Token {
	if p.full.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ConsumerRelease returns the stage to the producer: one arrive on the empty
// barrier, fanned out by the consumer mask.
func (p *Async) ConsumerRelease(s State) {
	p.empty.Arrive(s.Index(), p.consumerMask)
}

// ProducerBarrier returns the full barrier handle for the cursor's stage,
// for offload engines that post completions directly.
func (p *Async) ProducerBarrier(s State) *Barrier {
	return p.full.Get(s.Index())
}

// ProducerTail drains the ring before teardown. Releases land in ring
// order, so acquiring the last used stage proves every earlier empty signal
// was observed; no arrive may dangle past the producer's exit. s must point
// at the next unused stage; the advanced cursor is returned.
func (p *Async) ProducerTail(s State) State {
	for i := 0; i < p.stages-1; i++ {
		s.Advance()
	}
	p.ProducerAcquire(s)
	return s
}
