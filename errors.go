package pipex

import "errors"

// Construction-time validation failures. Callers match them with errors.Is;
// constructors wrap them with the offending values.
var (
	// ErrStages reports a stage count below 1.
	ErrStages = errors.New("stage count must be positive")

	// ErrGroupSize reports an agent group with no members.
	ErrGroupSize = errors.New("group size must be positive")

	// ErrStorageNil reports missing caller-provided barrier storage.
	ErrStorageNil = errors.New("barrier storage is nil")

	// ErrStorageShort reports storage with fewer than 2*stages slots.
	ErrStorageShort = errors.New("barrier storage too short")

	// ErrStorageAlign reports storage whose base address violates the
	// minimum alignment contract.
	ErrStorageAlign = errors.New("barrier storage misaligned")

	// ErrGroupKindMismatch reports split consumer groups declaring
	// different agent kinds.
	ErrGroupKindMismatch = errors.New("consumer groups must share one agent kind")

	// ErrTxCount reports a copy pipeline armed with no transaction units;
	// an armed stage must need at least one completion to close.
	ErrTxCount = errors.New("transaction count must be positive")

	// ErrTopology reports an unsupported fabric shape or rank for the
	// requested pipeline variant.
	ErrTopology = errors.New("unsupported topology")
)
