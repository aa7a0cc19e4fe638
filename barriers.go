package pipex

// Barriers is a typed view over one pipeline's run of stage barriers.
//
// A pipeline slices its arena into two halves (full barriers signalled by
// producers, empty barriers signalled by consumers) and wraps each half in
// a view that fixes how an arrive behaves there: plain for thread ops,
// expectation-arming for copy ops. Views are cheap values over shared slots;
// re-typing a view (split pipelines give each consumer role its own) aliases
// the same counters and changes only the arrive semantics.
type Barriers struct {
	slots  []Barrier
	op     Op
	tx     uint32
	fabric *Fabric
	rank   int
	offset int
}

// newBarriers wraps a half of the arena. offset is the half's position
// within a rank's arena, used to address the matching slot on peers.
func newBarriers(slots []Barrier, op Op, tx uint32, fabric *Fabric, rank, offset int) Barriers {
	return Barriers{slots: slots, op: op, tx: tx, fabric: fabric, rank: rank, offset: offset}
}

// withOp returns a re-typed view over the same slots.
func (v Barriers) withOp(op Op) Barriers {
	v.op = op
	return v
}

// reset prepares every slot of the view with its expected arrival count.
func (v Barriers) reset(expect uint32) {
	for i := range v.slots {
		v.slots[i].reset(expect)
	}
}

// Arrive signals stage index. A zero mask lands on the local slot; a
// non-zero mask delivers one arrive to each selected rank's barrier at the
// same stage through the fabric. On an OpCopy view every delivered arrive
// also arms the view's transaction expectation at its destination.
func (v Barriers) Arrive(index int, mask Mask) {
	var tx uint32
	if v.op == OpCopy {
		tx = v.tx
	}
	if mask == 0 || v.fabric == nil {
		v.slots[index].arrive(tx)
		return
	}
	for r := 0; r < v.fabric.shape.Size(); r++ {
		if mask.has(r) {
			v.fabric.barrier(r, v.offset+index).arrive(tx)
		}
	}
}

// Wait blocks until stage index's parity differs from phase.
func (v Barriers) Wait(index int, phase uint32) {
	v.slots[index].wait(phase)
}

// TryWait reports whether a Wait on stage index would return immediately.
// It never blocks and never mutates the stage.
func (v Barriers) TryWait(index int, phase uint32) bool {
	return v.slots[index].tryWait(phase)
}

// Get returns the addressable barrier for stage index, for offload engines
// that post completions directly instead of calling Arrive.
func (v Barriers) Get(index int) *Barrier {
	return &v.slots[index]
}
