// Package pipex coordinates producer and consumer agent groups over a
// bounded ring of shared stages using phase-tagged barrier handshakes
// instead of locks.
//
// A stage cycles empty -> filling -> full -> draining and back, driven by
// four handshake steps:
//
//	ProducerAcquire  wait until the stage is empty
//	ProducerCommit   publish the stage as full
//	ConsumerWait     wait until the stage is full
//	ConsumerRelease  return the stage as empty
//
// Each side walks the ring with its own State cursor. The cursor's phase bit
// distinguishes one traversal of the ring from the next, so a barrier
// signalled during traversal t can never satisfy a waiter from traversal
// t+1. The full barrier of a stage is written only by producers and awaited
// only by consumers; the empty barrier is the strict mirror. That
// directional discipline is what keeps the protocol lock-free.
//
// Variants move individual handshake steps into external engines: Copy arms
// per-stage transaction expectations that an asynchronous copy engine
// completes, Split lets two consumer roles release the same stages
// independently, and Store replaces the barrier ring with a completion
// fence.
package pipex
