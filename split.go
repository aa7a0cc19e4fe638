package pipex

import "fmt"

// SplitConfig assembles a Split pipeline.
type SplitConfig struct {
	// Stages is the ring size.
	Stages int

	// Producer issues copy descriptors for both consumer roles.
	Producer Group

	// ConsumerMatrix and ConsumerThread are the two roles draining the
	// same stages. They must declare the same agent kind; their sizes add
	// up to the arrivals every empty barrier expects per phase.
	ConsumerMatrix Group
	ConsumerThread Group

	// TxCount follows CopyConfig.
	TxCount uint32

	// Storage, Fabric and Rank follow Config. Only the trivial single-rank
	// shape is supported.
	Storage []Barrier
	Fabric  *Fabric
	Rank    int
}

// Split is the pipeline for one offload producer feeding two consumer roles
// that must release independently: an accelerated matrix role whose work
// retires out of band, and an ordinary thread role.
//
// Both roles drain the same physical stages. The empty barriers are shared
// counters dressed in two role-typed views; the views alias the same slots,
// so the producer unblocks only when the combined arrivals of both roles
// have landed.
type Split struct {
	_           noCopy
	full        Barriers
	empty       Barriers
	emptyMatrix Barriers
	emptyThread Barriers
	stages      int
}

// NewSplit builds the split pipeline described by cfg.
func NewSplit(cfg SplitConfig) (*Split, error) {
	if cfg.TxCount < 1 {
		return nil, fmt.Errorf("pipex: %w", ErrTxCount)
	}
	if cfg.ConsumerMatrix.Size < 1 {
		return nil, fmt.Errorf("pipex: matrix consumer: %w", ErrGroupSize)
	}
	if cfg.ConsumerThread.Size < 1 {
		return nil, fmt.Errorf("pipex: thread consumer: %w", ErrGroupSize)
	}
	if cfg.ConsumerMatrix.Kind != cfg.ConsumerThread.Kind {
		return nil, fmt.Errorf("pipex: %s vs %s: %w",
			cfg.ConsumerMatrix.Kind, cfg.ConsumerThread.Kind, ErrGroupKindMismatch)
	}
	if cfg.Fabric != nil && cfg.Fabric.shape.Size() != 1 {
		return nil, fmt.Errorf("pipex: split pipeline across %d ranks: %w",
			cfg.Fabric.shape.Size(), ErrTopology)
	}

	combined := Group{
		Kind: cfg.ConsumerMatrix.Kind,
		Size: cfg.ConsumerMatrix.Size + cfg.ConsumerThread.Size,
	}
	base := Config{
		Stages:   cfg.Stages,
		Producer: cfg.Producer,
		Consumer: combined,
		Storage:  cfg.Storage,
		Fabric:   cfg.Fabric,
		Rank:     cfg.Rank,
	}
	full, empty, err := base.build(OpCopy, OpComposite, cfg.TxCount)
	if err != nil {
		return nil, err
	}

	p := &Split{}
	p.full = full
	p.empty = empty
	p.emptyMatrix = empty.withOp(OpMatrix)
	p.emptyThread = empty.withOp(OpThread)
	p.stages = cfg.Stages
	return p, nil
}

// Stages returns the ring size.
func (p *Split) Stages() int {
	return p.stages
}

// ProducerAcquire waits for both roles to drain the stage, then arms its
// transaction expectation. On the trivial shape every unit is its own
// leader, so the arming arrive is unconditional.
func (p *Split) ProducerAcquire(s State, tok ...Token) {
	if !skipWait(tok) {
		p.empty.Wait(s.Index(), s.Phase())
	}
	p.full.Arrive(s.Index(), 0)
}

// ProducerTryAcquire probes the stage without blocking or mutating it.
func (p *Split) ProducerTryAcquire(s State) Token {
	if p.empty.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ProducerCommit is a no-op: the copy engine closes the stage by posting
// transaction units as data lands.
func (p *Split) ProducerCommit(s State) {
}

// ConsumerWait blocks until the engine has fully landed the stage. Both
// roles wait on the same full barrier.
func (p *Split) ConsumerWait(s State, tok ...Token) {
	if skipWait(tok) {
		return
	}
	p.full.Wait(s.Index(), s.Phase())
}

// ConsumerTryWait probes the stage without blocking or mutating it.
func (p *Split) ConsumerTryWait(s State) Token {
	if p.full.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ConsumerRelease lands one arrive for the given role on the shared empty
// counters. The producer reacquires the stage only after the combined
// arrivals of both roles are in.
//
// panic on an unrecognized role.
func (p *Split) ConsumerRelease(s State, role Role) {
	switch role {
	case RoleMatrix:
		p.emptyMatrix.Arrive(s.Index(), 0)
	case RoleThread:
		p.emptyThread.Arrive(s.Index(), 0)
	default:
		panic("pipex: unknown release role")
	}
}

// ProducerBarrier returns the full barrier handle for the cursor's stage.
func (p *Split) ProducerBarrier(s State) *Barrier {
	return p.full.Get(s.Index())
}

// ProducerTail drains the ring before teardown through the variant's own
// acquire.
func (p *Split) ProducerTail(s State) State {
	for i := 0; i < p.stages-1; i++ {
		s.Advance()
	}
	p.ProducerAcquire(s)
	return s
}
