package pipex

import (
	"errors"
	"sync"
	"testing"
)

func newCopy(t *testing.T, stages int, tx uint32) *Copy {
	t.Helper()
	p, err := NewCopy(CopyConfig{
		Stages:   stages,
		Producer: Group{Kind: KindThread, Size: 1},
		Consumer: Group{Kind: KindThread, Size: 1},
		TxCount:  tx,
	})
	if err != nil {
		t.Fatalf("NewCopy: %v", err)
	}
	return p
}

func TestCopy_EngineClosesStage(t *testing.T) {
	p := newCopy(t, 2, 128)
	prod := MakeProducerState(2)
	cons := MakeConsumerState(2)

	// Acquire arms the expectation; the commit is a no-op, so the stage
	// stays unpublished until the engine posts every unit.
	p.ProducerAcquire(prod)
	p.ProducerCommit(prod)

	done := expectBlocked(t, "wait on an armed stage", func() { p.ConsumerWait(cons) })

	h := p.ProducerBarrier(prod)
	h.CompleteTx(64)
	stillBlocked(t, "wait at half the units", done)
	h.CompleteTx(64)
	expectDone(t, "wait", done)
}

func TestCopy_ExactCompletionPerCycle(t *testing.T) {
	p := newCopy(t, 1, 32)
	prod := MakeProducerState(1)

	p.ProducerAcquire(prod)
	h := p.ProducerBarrier(prod)
	h.CompleteTx(32)

	// The cycle's budget is spent; further completions must not leak into
	// the next phase.
	expectPanic(t, "completion past the cycle budget", func() { h.CompleteTx(1) })
}

func TestCopy_TrivialShapeRelease(t *testing.T) {
	p := newCopy(t, 1, 16)
	prod := MakeProducerState(1)
	cons := MakeConsumerState(1)

	p.ProducerAcquire(prod)
	p.ProducerBarrier(prod).CompleteTx(16)
	p.ConsumerWait(cons)

	// Lane 0 owns the trivial shape's only election.
	prod.Advance()
	done := expectBlocked(t, "reacquire", func() { p.ProducerAcquire(prod) })

	if idle := p.Signaller(1); idle.Elected() {
		t.Fatal("lane 1 elected on the trivial shape")
	} else {
		idle.Release(cons)
	}
	stillBlocked(t, "reacquire after a non-elected release", done)

	p.ConsumerRelease(cons)
	expectDone(t, "reacquire", done)
}

func TestCopy_ClusterInPlaneRelease(t *testing.T) {
	shape := Cluster{Rows: 2, Cols: 2}
	f := NewFabric(shape)
	size := shape.Size()
	inPlane := shape.rows() + shape.cols() - 1

	pipes := make([]*Copy, size)
	var build sync.WaitGroup
	build.Add(size)
	for rank := 0; rank < size; rank++ {
		go func(rank int) {
			defer build.Done()
			p, err := NewCopy(CopyConfig{
				Stages:   1,
				Producer: Group{Kind: KindThread, Size: 1},
				Consumer: Group{Kind: KindThread, Size: inPlane},
				TxCount:  8,
				Fabric:   f,
				Rank:     rank,
			})
			if err != nil {
				t.Errorf("rank %d: %v", rank, err)
				return
			}
			pipes[rank] = p
		}(rank)
	}
	build.Wait()

	prod := MakeProducerState(1)
	cons := MakeConsumerState(1)

	// Every rank fills its stage and its engine lands the data.
	for _, p := range pipes {
		p.ProducerAcquire(prod)
		p.ProducerBarrier(prod).CompleteTx(8)
		p.ConsumerWait(cons)
	}

	// With no releases, every rank's reacquire parks.
	next := prod.Clone()
	next.Advance()
	dones := make([]chan struct{}, size)
	for rank, p := range pipes {
		dones[rank] = expectBlocked(t, "reacquire", func() { p.ProducerAcquire(next) })
	}

	// Each rank's squad releases through its elected lanes; every rank
	// then hears exactly one release per in-plane peer.
	for _, p := range pipes {
		for lane := 0; lane < size; lane++ {
			p.Signaller(lane).Release(cons)
		}
	}
	for _, done := range dones {
		expectDone(t, "reacquire", done)
	}
}

func TestCopy_ProducerTail(t *testing.T) {
	const stages = 3
	p := newCopy(t, stages, 4)
	prod := MakeProducerState(stages)
	cons := MakeConsumerState(stages)

	for range stages {
		p.ProducerAcquire(prod)
		p.ProducerBarrier(prod).CompleteTx(4)
		prod.Advance()
	}

	done := expectBlocked(t, "tail with stages held", func() { p.ProducerTail(prod) })
	for range stages {
		p.ConsumerWait(cons)
		p.ConsumerRelease(cons)
		cons.Advance()
	}
	expectDone(t, "tail", done)
}

func TestNewCopy_Validation(t *testing.T) {
	group := Group{Kind: KindThread, Size: 1}

	_, err := NewCopy(CopyConfig{Stages: 2, Producer: group, Consumer: group})
	if !errors.Is(err, ErrTxCount) {
		t.Fatalf("zero tx count: %v", err)
	}

	_, err = NewCopy(CopyConfig{Stages: 0, Producer: group, Consumer: group, TxCount: 1})
	if !errors.Is(err, ErrStages) {
		t.Fatalf("zero stages: %v", err)
	}
}
