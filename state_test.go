package pipex

import "testing"

func TestState_Initial(t *testing.T) {
	p := MakeProducerState(4)
	if p.Index() != 0 || p.Phase() != 1 {
		t.Fatalf("producer state = (%d, %d), want (0, 1)", p.Index(), p.Phase())
	}
	c := MakeConsumerState(4)
	if c.Index() != 0 || c.Phase() != 0 {
		t.Fatalf("consumer state = (%d, %d), want (0, 0)", c.Index(), c.Phase())
	}
	if p.Stages() != 4 || c.Stages() != 4 {
		t.Fatalf("stages = %d/%d, want 4", p.Stages(), c.Stages())
	}
}

func TestState_AdvanceWrap(t *testing.T) {
	const stages = 4
	s := MakeConsumerState(stages)

	// One full traversal returns to index 0 with the phase flipped once.
	flips := 0
	phase := s.Phase()
	for range stages {
		s.Advance()
		if s.Phase() != phase {
			flips++
			phase = s.Phase()
		}
	}
	if s.Index() != 0 || flips != 1 {
		t.Fatalf("after %d advances: index=%d flips=%d, want 0/1", stages, s.Index(), flips)
	}

	// A second traversal restores the original pair exactly.
	for range stages {
		s.Advance()
	}
	if s.Index() != 0 || s.Phase() != 0 {
		t.Fatalf("after 2*%d advances: (%d, %d), want (0, 0)", stages, s.Index(), s.Phase())
	}
	if s.Count() != 2*stages {
		t.Fatalf("count = %d, want %d", s.Count(), 2*stages)
	}
}

func TestState_Reverse(t *testing.T) {
	s := MakeProducerState(3)
	for range 5 {
		s.Advance()
	}
	save := s.Clone()
	s.Advance()
	s.Reverse()
	if s != save {
		t.Fatalf("advance+reverse drifted: %+v != %+v", s, save)
	}
	for range 5 {
		s.Reverse()
	}
	if s.Index() != 0 || s.Phase() != 1 || s.Count() != 0 {
		t.Fatalf("full rewind = (%d, %d, %d), want (0, 1, 0)", s.Index(), s.Phase(), s.Count())
	}
}

func TestState_IndexSequence(t *testing.T) {
	s := MakeConsumerState(3)
	want := []int{1, 2, 0, 1, 2, 0}
	for i, w := range want {
		s.Advance()
		if s.Index() != w {
			t.Fatalf("advance %d: index = %d, want %d", i+1, s.Index(), w)
		}
	}
}

func TestMakeState_Validation(t *testing.T) {
	expectPanic(t, "zero stages", func() { MakeState(0, 0, 0) })
	expectPanic(t, "index out of range", func() { MakeState(2, 2, 0) })
	expectPanic(t, "bad phase", func() { MakeState(2, 0, 2) })

	s := MakeState(2, 1, 1)
	if s.Index() != 1 || s.Phase() != 1 {
		t.Fatalf("state = (%d, %d), want (1, 1)", s.Index(), s.Phase())
	}
}
