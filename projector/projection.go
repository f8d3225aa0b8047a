package projector

import (
	"time"
)

// PositionState says where a transaction landed in a projection.
type PositionState int

const (
	// NotProjected means the transaction is unknown to the projection.
	NotProjected PositionState = iota
	// InBlock means the transaction was assigned to a projected block.
	InBlock
	// InOverflow means the transaction ranked below the capacity of all
	// projected blocks.
	InOverflow
)

func (s PositionState) String() string {
	switch s {
	case InBlock:
		return "block"
	case InOverflow:
		return "overflow"
	default:
		return "not_projected"
	}
}

// Position locates one transaction inside a Projection. Block is only
// meaningful when State is InBlock.
type Position struct {
	State PositionState
	Block int
}

// Projection is the predicted partition of the pending set into upcoming
// blocks. It is immutable once published; the engine replaces it wholesale
// on the next computation and never mutates it in place.
type Projection struct {
	Seq         uint64
	GeneratedAt time.Time

	// Blocks holds the projected blocks in mining order; each block lists
	// its member uids in assignment order.
	Blocks [][]uint32

	// BlockWeights holds the total weight of each projected block.
	BlockWeights []int64

	// Overflow lists every candidate that ranked below the capacity of
	// all projected blocks, still in priority order.
	Overflow []uint32

	// Clusters lists the dependency-connected groups (two or more
	// members) that were packed as atomic units, in packing order.
	Clusters [][]uint32

	// Rates maps every candidate uid to the fee rate of the package it
	// was projected with. Transactions carried by a descendant report
	// the combined package rate rather than their own.
	Rates map[uint32]float64

	// position indexes uid -> block index, or overflowSlot.
	position map[uint32]int
}

const overflowSlot = -1

func newEmptyProjection() *Projection {
	return &Projection{
		Rates:    map[uint32]float64{},
		position: map[uint32]int{},
	}
}

// PositionOf locates uid within the projection.
func (p *Projection) PositionOf(uid uint32) Position {
	slot, ok := p.position[uid]
	if !ok {
		return Position{State: NotProjected}
	}
	if slot == overflowSlot {
		return Position{State: InOverflow}
	}
	return Position{State: InBlock, Block: slot}
}

// TxCount is the total number of transactions the projection covers.
func (p *Projection) TxCount() int {
	return len(p.position)
}
