package pipex

// Cluster is the shape of the compute-unit grid a pipeline spans. Ranks are
// column-major: rank = row + col*Rows. The zero value is the trivial 1x1
// shape, which every single-unit pipeline uses implicitly.
//
// A Cluster is consumed only to compute masks and signaller election; the
// pipeline never mutates it.
type Cluster struct {
	Rows int
	Cols int
}

func (c Cluster) rows() int {
	if c.Rows < 1 {
		return 1
	}
	return c.Rows
}

func (c Cluster) cols() int {
	if c.Cols < 1 {
		return 1
	}
	return c.Cols
}

// Size returns the number of ranks in the shape.
func (c Cluster) Size() int {
	return c.rows() * c.cols()
}

// Rank returns the column-major rank of (row, col).
func (c Cluster) Rank(row, col int) int {
	return row + col*c.rows()
}

// Coord returns the (row, col) coordinate of a rank.
func (c Cluster) Coord(rank int) (row, col int) {
	return rank % c.rows(), rank / c.rows()
}

// Mask selects destination ranks for a multicast arrive: bit r set means the
// arrive is delivered to rank r's barrier. The zero Mask means local-only
// delivery (no fan-out).
type Mask uint32

// bit returns the single-rank mask for r.
func bit(r int) Mask {
	return Mask(1) << uint(r)
}

// has reports whether rank r is selected.
func (m Mask) has(r int) bool {
	return m&bit(r) != 0
}

// RowMask returns the mask selecting every rank in the given row.
func (c Cluster) RowMask(row int) Mask {
	var m Mask
	for col := 0; col < c.cols(); col++ {
		m |= bit(c.Rank(row, col))
	}
	return m
}

// ColMask returns the mask selecting every rank in the given column.
func (c Cluster) ColMask(col int) Mask {
	var m Mask
	for row := 0; row < c.rows(); row++ {
		m |= bit(c.Rank(row, col))
	}
	return m
}

// AllMask returns the mask selecting every rank in the shape.
func (c Cluster) AllMask() Mask {
	var m Mask
	for r := 0; r < c.Size(); r++ {
		m |= bit(r)
	}
	return m
}

// electSignaller decides, once at construction, whether the agent at lane on
// rank signals a peer's empty barrier, and which peer it signals.
//
// One agent is elected per destination rank: lane l targets rank l%size, and
// only lanes below the cluster size are candidates. A candidate is elected
// only when its destination shares the caller's row or column, so signals
// travel strictly in-plane. On the trivial shape this degenerates to lane 0
// signalling its own rank.
func (c Cluster) electSignaller(rank, lane int) (dst int, ok bool) {
	size := c.Size()
	if lane < 0 || lane >= size {
		return 0, false
	}
	dst = lane % size
	drow, dcol := c.Coord(dst)
	crow, ccol := c.Coord(rank)
	if drow != crow && dcol != ccol {
		return 0, false
	}
	return dst, true
}
