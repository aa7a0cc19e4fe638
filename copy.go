package pipex

import "fmt"

// CopyConfig assembles a Copy pipeline.
type CopyConfig struct {
	// Stages is the ring size.
	Stages int

	// Producer issues copy descriptors; Consumer drains the stages.
	// The empty barriers expect Consumer.Size arrives per phase: for the
	// canonical squad release over shape (R, C) that is R+C-1, one per
	// in-plane peer.
	Producer Group
	Consumer Group

	// TxCount is the number of transaction units a stage expects per
	// phase. The stage publishes only when the copy engine has posted all
	// of them back, not when the producer arrives.
	TxCount uint32

	// Storage, Fabric and Rank follow Config.
	Storage []Barrier
	Fabric  *Fabric
	Rank    int

	// Lane is the lane whose election ConsumerRelease is bound to; use
	// Signaller to bind other lanes of the squad.
	Lane int
}

// Copy is the pipeline for offload-engine producers: the producer's acquire
// arms the stage's transaction expectation, the engine completes it as data
// lands, and the software commit disappears entirely.
//
// Consumer releases are signalled by elected lanes only, one per in-plane
// peer, so a multicast producer hears exactly one release from every unit it
// feeds.
type Copy struct {
	_         noCopy
	full      Barriers
	empty     Barriers
	stages    int
	signaller Signaller
}

// Signaller binds one consumer lane to its election result: whether that
// lane releases at all, and toward which rank.
type Signaller struct {
	empty Barriers
	mask  Mask
	dst   int
	ok    bool
}

// NewCopy builds the copy pipeline described by cfg.
func NewCopy(cfg CopyConfig) (*Copy, error) {
	if cfg.TxCount < 1 {
		return nil, fmt.Errorf("pipex: %w", ErrTxCount)
	}
	base := Config{
		Stages:   cfg.Stages,
		Producer: cfg.Producer,
		Consumer: cfg.Consumer,
		Storage:  cfg.Storage,
		Fabric:   cfg.Fabric,
		Rank:     cfg.Rank,
	}
	full, empty, err := base.build(OpCopy, OpThread, cfg.TxCount)
	if err != nil {
		return nil, err
	}
	p := &Copy{}
	p.full = full
	p.empty = empty
	p.stages = cfg.Stages
	p.signaller = p.Signaller(cfg.Lane)
	return p, nil
}

// Stages returns the ring size.
func (p *Copy) Stages() int {
	return p.stages
}

// Signaller returns the election result for one consumer lane. Each consumer
// agent of the squad binds its own lane and releases through it; exactly one
// lane is elected per in-plane peer.
func (p *Copy) Signaller(lane int) Signaller {
	g := Signaller{empty: p.empty}
	var shape Cluster
	if p.empty.fabric != nil {
		shape = p.empty.fabric.shape
	}
	dst, ok := shape.electSignaller(p.empty.rank, lane)
	if !ok {
		return g
	}
	g.dst = dst
	g.ok = true
	if p.empty.fabric != nil {
		g.mask = bit(dst)
	}
	return g
}

// Elected reports whether this lane signals at all.
func (g Signaller) Elected() bool {
	return g.ok
}

// Dst returns the rank this lane signals. Meaningful only when Elected.
func (g Signaller) Dst() int {
	return g.dst
}

// Release returns the cursor's stage to the producer at the lane's elected
// destination. Non-elected lanes return immediately.
func (g Signaller) Release(s State) {
	if !g.ok {
		return
	}
	g.empty.Arrive(s.Index(), g.mask)
}

// ProducerAcquire waits for the stage to drain, then arms its transaction
// expectation so engine completions issued afterward can close the phase.
// A ready token skips the wait; the arming arrive always happens.
func (p *Copy) ProducerAcquire(s State, tok ...Token) {
	if !skipWait(tok) {
		p.empty.Wait(s.Index(), s.Phase())
	}
	p.full.Arrive(s.Index(), 0)
}

// ProducerTryAcquire probes the stage without blocking or mutating it.
func (p *Copy) ProducerTryAcquire(s State) Token {
	if p.empty.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ProducerCommit is a no-op: the copy engine itself closes the stage by
// posting transaction units as data lands.
func (p *Copy) ProducerCommit(s State) {
}

// ConsumerWait blocks until the engine has fully landed the stage.
func (p *Copy) ConsumerWait(s State, tok ...Token) {
	if skipWait(tok) {
		return
	}
	p.full.Wait(s.Index(), s.Phase())
}

// ConsumerTryWait probes the stage without blocking or mutating it.
func (p *Copy) ConsumerTryWait(s State) Token {
	if p.full.TryWait(s.Index(), s.Phase()) {
		return TokenReady
	}
	return TokenNone
}

// ConsumerRelease releases as the lane bound at construction. Squads with
// several consumer agents bind one Signaller per lane instead.
func (p *Copy) ConsumerRelease(s State) {
	p.signaller.Release(s)
}

// ProducerBarrier returns the full barrier handle for the cursor's stage;
// the copy engine posts CompleteTx against it as data lands.
func (p *Copy) ProducerBarrier(s State) *Barrier {
	return p.full.Get(s.Index())
}

// ProducerTail drains the ring before teardown: advance past every other
// stage, then one final acquire through the variant's own arming path.
// The final arm is inert; what matters is that every empty signal has been
// observed before the producer exits.
func (p *Copy) ProducerTail(s State) State {
	for i := 0; i < p.stages-1; i++ {
		s.Advance()
	}
	p.ProducerAcquire(s)
	return s
}
