package pipex

// Token carries the result of a non-blocking probe into a later blocking
// call, so a successful probe is not paid for twice.
type Token uint8

const (
	// TokenNone backs no successful probe; blocking calls perform their
	// full wait.
	TokenNone Token = iota
	// TokenReady records that a probe already observed the awaited flip;
	// blocking calls return immediately.
	TokenReady
)

// skipWait reports whether a ready token was supplied.
func skipWait(tok []Token) bool {
	return len(tok) > 0 && tok[0] == TokenReady
}

// Pipeline is the surface shared by the stage-ring pipelines. Producer and
// consumer cursors advance independently; every method takes the caller's
// own State.
//
// Wait-shaped calls (ProducerAcquire, ConsumerWait) are the only suspension
// points. There is no timeout and no cancellation: a side that never issues
// its arrive suspends the other side permanently, which is a caller
// responsibility, not a library condition.
type Pipeline interface {
	// ProducerAcquire blocks until the cursor's stage is empty.
	ProducerAcquire(s State, tok ...Token)
	// ProducerTryAcquire probes without blocking; feed the token back into
	// ProducerAcquire to consume a successful probe.
	ProducerTryAcquire(s State) Token
	// ProducerCommit publishes the cursor's stage to consumers.
	ProducerCommit(s State)
	// ConsumerWait blocks until the cursor's stage is full.
	ConsumerWait(s State, tok ...Token)
	// ConsumerTryWait probes without blocking.
	ConsumerTryWait(s State) Token
	// ConsumerRelease returns the cursor's stage to the producer.
	ConsumerRelease(s State)
	// ProducerTail drains the ring before teardown and returns the advanced
	// cursor; no empty signal may outlive the producer.
	ProducerTail(s State) State
}
