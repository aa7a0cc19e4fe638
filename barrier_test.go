package pipex

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/llxisdsh/pipex/internal/opt"
)

func TestBarrier_PhaseClosesOnFullArrival(t *testing.T) {
	var b Barrier
	b.reset(2)

	done := expectBlocked(t, "wait", func() { b.wait(0) })

	b.arrive(0)
	stillBlocked(t, "wait after partial arrival", done)

	b.arrive(0)
	expectDone(t, "wait", done)
}

func TestBarrier_ParityAcrossPhases(t *testing.T) {
	var b Barrier
	b.reset(1)

	// Close phase 0; parity is now 1.
	b.arrive(0)
	if !b.tryWait(0) {
		t.Fatal("parity did not flip after first close")
	}

	// A waiter holding the flipped phase must wait for the second close.
	done := expectBlocked(t, "wait on phase 1", func() { b.wait(1) })
	b.arrive(0)
	expectDone(t, "wait on phase 1", done)
}

func TestBarrier_TryWaitNeverMutates(t *testing.T) {
	var b Barrier
	b.reset(1)

	if b.tryWait(0) {
		t.Fatal("tryWait true on a fresh barrier")
	}
	if b.tryWait(0) {
		t.Fatal("tryWait mutated the barrier")
	}

	b.arrive(0)
	if !b.tryWait(0) || !b.tryWait(0) {
		t.Fatal("tryWait consumed the flip")
	}
}

func TestBarrier_TransactionAccounting(t *testing.T) {
	var b Barrier
	b.reset(1)

	done := expectBlocked(t, "wait", func() { b.wait(0) })

	// The arrive arms 128 units; arrivals alone must not close the phase.
	b.arrive(128)
	stillBlocked(t, "wait with units outstanding", done)

	b.CompleteTx(64)
	stillBlocked(t, "wait with half the units posted", done)

	b.CompleteTx(64)
	expectDone(t, "wait", done)
}

func TestBarrier_CompleteTxBeforeArming(t *testing.T) {
	var b Barrier
	b.reset(1)
	expectPanic(t, "completion with nothing armed", func() { b.CompleteTx(1) })
}

func TestBarrier_CompleteTxOverrun(t *testing.T) {
	var b Barrier
	b.reset(1)
	b.arrive(16)
	expectPanic(t, "completion past armed units", func() { b.CompleteTx(17) })
}

func TestBarrier_ManyWaitersOneClose(t *testing.T) {
	var b Barrier
	b.reset(1)

	const waiters = 8
	dones := make([]chan struct{}, waiters)
	for i := range dones {
		done := make(chan struct{})
		go func() {
			b.wait(0)
			close(done)
		}()
		dones[i] = done
	}

	b.arrive(0)
	for _, done := range dones {
		expectDone(t, "waiter", done)
	}
}

func TestBarrier_SlotSize(t *testing.T) {
	if s := unsafe.Sizeof(Barrier{}); s%opt.CacheLineSize_ != 0 {
		t.Fatalf("slot size %d is not a multiple of the cache line (%d)", s, opt.CacheLineSize_)
	}
}

func TestAllocStorage_Layout(t *testing.T) {
	s := AllocStorage(3)
	if len(s) != 6 {
		t.Fatalf("len = %d, want 6", len(s))
	}
	if err := validateStorage(s, 3); err != nil {
		t.Fatalf("fresh storage rejected: %v", err)
	}
	expectPanic(t, "zero stages", func() { AllocStorage(0) })
}

func TestValidateStorage_Errors(t *testing.T) {
	if err := validateStorage(nil, 2); !errors.Is(err, ErrStorageNil) {
		t.Fatalf("nil storage: %v", err)
	}
	if err := validateStorage(make([]Barrier, 3), 2); !errors.Is(err, ErrStorageShort) {
		t.Fatalf("short storage: %v", err)
	}
}
