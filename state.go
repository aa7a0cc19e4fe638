package pipex

// State is a cursor over the stage ring of a pipeline.
//
// It tracks the current stage index, the phase bit distinguishing successive
// traversals of the ring, and the total advance count. Producers and
// consumers each hold their own State and advance it locally after every
// completed step; the pipeline itself never stores a position.
//
// Invariants:
//   - Advance flips the phase bit exactly when the index wraps to 0.
//   - 2*stages advances return to the identical (index, phase) pair.
//   - stages advances return to the same index with the opposite phase.
//
// State is a plain value: copy it freely, never share one cursor between
// agents.
type State struct {
	stages uint32
	index  uint32
	phase  uint32
	count  uint32
}

// MakeState returns a cursor positioned at index with the given phase bit.
//
// panic if stages is 0, index is out of range, or phase is not 0 or 1.
func MakeState(stages, index, phase uint32) State {
	if stages == 0 {
		panic("pipex: stages must be positive")
	}
	if index >= stages {
		panic("pipex: index out of range")
	}
	if phase > 1 {
		panic("pipex: phase must be 0 or 1")
	}
	return State{stages: stages, index: index, phase: phase}
}

// MakeProducerState returns the canonical initial producer cursor:
// index 0, phase 1.
//
// Freshly reset barriers sit at phase 0, so a producer starting on the
// opposite phase finds every untouched stage immediately acquirable.
func MakeProducerState(stages uint32) State {
	return MakeState(stages, 0, 1)
}

// MakeConsumerState returns the canonical initial consumer cursor:
// index 0, phase 0. The consumer blocks until the producer fills stage 0.
func MakeConsumerState(stages uint32) State {
	return MakeState(stages, 0, 0)
}

// Advance moves the cursor to the next stage.
// It is a pure cursor step: no blocking, no barrier side effects.
func (s *State) Advance() {
	s.count++
	s.index++
	if s.index == s.stages {
		s.index = 0
		s.phase ^= 1
	}
}

// Reverse moves the cursor to the previous stage, undoing one Advance.
func (s *State) Reverse() {
	s.count--
	if s.index == 0 {
		s.index = s.stages
		s.phase ^= 1
	}
	s.index--
}

// Clone returns a copy of the cursor.
func (s State) Clone() State {
	return s
}

// Index returns the current stage index in [0, Stages).
func (s State) Index() int {
	return int(s.index)
}

// Phase returns the current phase bit (0 or 1).
func (s State) Phase() uint32 {
	return s.phase
}

// Count returns the total number of advances taken by this cursor.
func (s State) Count() uint32 {
	return s.count
}

// Stages returns the ring size the cursor was built for.
func (s State) Stages() int {
	return int(s.stages)
}
