package projector

import (
	"sort"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/sat20-labs/projector/projector/txgraph"
)

// Limits bound one partition run.
type Limits struct {
	// MaxBlockWeight is the consensus weight ceiling per projected block.
	MaxBlockWeight int64
	// MaxBlocks caps how many blocks are projected; everything ranking
	// below that capacity goes to overflow.
	MaxBlocks int
}

// ComputeStrategy turns the candidate set into a Projection. The strategy
// is selected once when the engine is constructed, not per call, so an
// optimized implementation and the portable one stay interchangeable
// behind this interface.
type ComputeStrategy interface {
	Compute(candidates []*Tx, rates *RateCalc, limits Limits) *Projection
}

// ClusterStrategy is the portable partitioner. Transactions connected by
// unconfirmed dependency edges are grouped with union-find into clusters
// that carry combined fee and weight, and every cluster is packed as an
// atomic unit. That is what keeps a child from being projected into an
// earlier block than its unconfirmed parent: members of a package are
// never split across blocks, and inside a cluster parents sort before
// children.
type ClusterStrategy struct {
	graph *txgraph.Graph

	// lastOrdered is the materialized unit ordering of the previous run,
	// reused by the add-only incremental path.
	lastOrdered []*unit
}

func NewClusterStrategy(graph *txgraph.Graph) *ClusterStrategy {
	return &ClusterStrategy{graph: graph}
}

// unit is one atomically packed cluster: a maximal dependency-connected
// group of candidates, or a single independent transaction.
type unit struct {
	members  []uint32 // topological order, parents first
	fee      int64
	weight   int64
	rate     float64 // sat/vB over the whole cluster
	minOrder uint32
	minUid   uint32
}

// Compute runs a full partition: cluster, order, fill.
func (s *ClusterStrategy) Compute(candidates []*Tx, rates *RateCalc, limits Limits) *Projection {
	units := s.buildUnits(candidates, rates)
	ordered := orderUnits(units)
	s.lastOrdered = ordered
	return fill(ordered, limits)
}

// ComputeIncremental merge-inserts independent new arrivals into the
// previous materialized ordering and re-runs the fill. Only valid when
// nothing was removed and none of the added transactions has in-mempool
// dependencies; the engine falls back to Compute otherwise. Reports
// false when no previous ordering exists.
func (s *ClusterStrategy) ComputeIncremental(added []*Tx, rates *RateCalc, limits Limits) (*Projection, bool) {
	if s.lastOrdered == nil {
		return nil, false
	}

	fresh := s.buildUnits(added, rates)
	merged := mergeUnits(s.lastOrdered, orderUnits(fresh))
	s.lastOrdered = merged
	return fill(merged, limits), true
}

// buildUnits groups the candidates into dependency clusters via
// union-find and derives each cluster's combined totals. Candidates are
// visited in uid order so the result is deterministic for identical
// input.
func (s *ClusterStrategy) buildUnits(candidates []*Tx, rates *RateCalc) []*unit {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]*Tx, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Uid < sorted[j].Uid })

	parent := make(map[uint32]uint32, len(sorted))
	for _, tx := range sorted {
		parent[tx.Uid] = tx.Uid
	}

	var find func(uint32) uint32
	find = func(x uint32) uint32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]] // path halving
			x = parent[x]
		}
		return x
	}
	union := func(a, b uint32) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	for _, tx := range sorted {
		for _, p := range s.graph.ParentsOf(tx.Uid) {
			if _, in := parent[p]; in {
				union(tx.Uid, p)
			}
		}
	}

	roots := make([]uint32, 0)
	groups := make(map[uint32][]*Tx)
	for _, tx := range sorted {
		r := find(tx.Uid)
		if _, seen := groups[r]; !seen {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], tx)
	}

	units := make([]*unit, 0, len(roots))
	for _, r := range roots {
		units = append(units, s.newUnit(groups[r], rates))
	}
	return units
}

func (s *ClusterStrategy) newUnit(members []*Tx, rates *RateCalc) *unit {
	u := &unit{
		minOrder: members[0].Order,
		minUid:   members[0].Uid,
	}

	type memberKey struct {
		tx    *Tx
		depth int
	}
	keys := make([]memberKey, 0, len(members))
	for _, tx := range members {
		u.fee += rates.AdjustedFee(tx)
		u.weight += tx.Weight
		if tx.Order < u.minOrder {
			u.minOrder = tx.Order
		}
		if tx.Uid < u.minUid {
			u.minUid = tx.Uid
		}
		keys = append(keys, memberKey{tx: tx, depth: rates.AncestorDepth(tx.Uid)})
	}

	// A parent's ancestor set is a strict subset of its child's, so
	// sorting by package size puts parents first.
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		if a.tx.Order != b.tx.Order {
			return a.tx.Order < b.tx.Order
		}
		return a.tx.Uid < b.tx.Uid
	})

	u.members = make([]uint32, len(keys))
	for i, k := range keys {
		u.members[i] = k.tx.Uid
	}
	if u.weight > 0 {
		u.rate = float64(u.fee) / float64(u.weight) * 4
	}
	return u
}

// unitComparator orders units by combined fee rate descending, then by
// earliest arrival, then by lowest uid. The full tiebreak chain makes the
// ordering deterministic, which downstream consumers diffing projections
// across runs depend on.
func unitComparator(a, b interface{}) int {
	ua, ub := a.(*unit), b.(*unit)
	switch {
	case ua.rate > ub.rate:
		return -1
	case ua.rate < ub.rate:
		return 1
	}
	switch {
	case ua.minOrder < ub.minOrder:
		return -1
	case ua.minOrder > ub.minOrder:
		return 1
	}
	switch {
	case ua.minUid < ub.minUid:
		return -1
	case ua.minUid > ub.minUid:
		return 1
	}
	return 0
}

func orderUnits(units []*unit) []*unit {
	if len(units) == 0 {
		return nil
	}
	pq := priorityqueue.NewWith(unitComparator)
	for _, u := range units {
		pq.Enqueue(u)
	}
	ordered := make([]*unit, 0, len(units))
	for {
		v, ok := pq.Dequeue()
		if !ok {
			break
		}
		ordered = append(ordered, v.(*unit))
	}
	return ordered
}

// mergeUnits merges two already-ordered unit sequences.
func mergeUnits(a, b []*unit) []*unit {
	merged := make([]*unit, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if unitComparator(a[i], b[j]) <= 0 {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

// fill walks the ordered units and packs them greedily: append to the
// current block unless the cluster would push it past the weight cap, in
// which case the block is sealed and the next one begins. Once MaxBlocks
// blocks exist, every remaining unit goes to overflow in the same
// ordering. A cluster whose combined weight exceeds the cap can never fit
// a block and goes to overflow whole; splitting it would break package
// atomicity.
func fill(ordered []*unit, limits Limits) *Projection {
	proj := newEmptyProjection()

	var cur []uint32
	var curWeight int64
	full := limits.MaxBlocks <= 0

	seal := func() {
		proj.Blocks = append(proj.Blocks, cur)
		proj.BlockWeights = append(proj.BlockWeights, curWeight)
		cur, curWeight = nil, 0
		if len(proj.Blocks) == limits.MaxBlocks {
			full = true
		}
	}

	toOverflow := func(u *unit) {
		proj.Overflow = append(proj.Overflow, u.members...)
		for _, uid := range u.members {
			proj.position[uid] = overflowSlot
		}
	}

	for _, u := range ordered {
		// Every member is projected at the rate of the unit that carries
		// it; a weak parent reports the package rate its child pays for.
		for _, uid := range u.members {
			proj.Rates[uid] = u.rate
		}
		if len(u.members) > 1 {
			proj.Clusters = append(proj.Clusters, u.members)
		}

		if full || u.weight > limits.MaxBlockWeight {
			toOverflow(u)
			continue
		}
		if curWeight+u.weight > limits.MaxBlockWeight && len(cur) > 0 {
			seal()
			if full {
				toOverflow(u)
				continue
			}
		}
		blockIdx := len(proj.Blocks)
		for _, uid := range u.members {
			proj.position[uid] = blockIdx
		}
		cur = append(cur, u.members...)
		curWeight += u.weight
	}

	if len(cur) > 0 {
		proj.Blocks = append(proj.Blocks, cur)
		proj.BlockWeights = append(proj.BlockWeights, curWeight)
	}
	return proj
}
