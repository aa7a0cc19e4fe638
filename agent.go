package pipex

import "fmt"

// Kind classifies the execution agents on one side of a pipeline.
type Kind uint8

const (
	// KindThread is an ordinary execution context (a goroutine standing in
	// for a general-purpose thread).
	KindThread Kind = iota
	// KindMatrix is an accelerated consumer whose completions are posted by
	// an offload engine rather than by the waiting context itself.
	KindMatrix
)

func (k Kind) String() string {
	switch k {
	case KindThread:
		return "thread"
	case KindMatrix:
		return "matrix"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Group describes one cooperating agent set: every member arrives on its
// side's barrier each cycle, and a stage's handshake completes only when all
// Size arrivals have landed.
//
// A Group is consumed at construction to fix each barrier's expected arrival
// count; the pipeline never mutates it.
type Group struct {
	Kind Kind
	Size int
}

// NewGroup returns a validated Group.
func NewGroup(kind Kind, size int) (Group, error) {
	if size < 1 {
		return Group{}, fmt.Errorf("pipex: group size %d: %w", size, ErrGroupSize)
	}
	return Group{Kind: kind, Size: size}, nil
}

// Op types a barrier view: it decides what an arrive on that view does.
type Op uint8

const (
	// OpThread is a plain arrive from an ordinary execution context.
	OpThread Op = iota
	// OpCopy arrives on behalf of an asynchronous copy engine and arms the
	// view's transaction expectation; the stage completes only when the
	// armed units are posted back via CompleteTx.
	OpCopy
	// OpMatrix is a plain arrive issued for an accelerated consumer role.
	OpMatrix
	// OpComposite types a full barrier shared by two distinct consumer roles.
	OpComposite
	// OpStore marks the fence-backed store pipeline; it has no barrier array.
	OpStore
)

func (o Op) String() string {
	switch o {
	case OpThread:
		return "thread"
	case OpCopy:
		return "copy"
	case OpMatrix:
		return "matrix"
	case OpComposite:
		return "composite"
	case OpStore:
		return "store"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Role selects which consumer view a split pipeline release targets.
type Role uint8

const (
	// RoleMatrix releases on behalf of the accelerated consumer group.
	RoleMatrix Role = iota
	// RoleThread releases on behalf of the ordinary consumer group.
	RoleThread
)

func (r Role) String() string {
	switch r {
	case RoleMatrix:
		return "matrix"
	case RoleThread:
		return "thread"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}
