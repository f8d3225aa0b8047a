package projector

import (
	"github.com/sat20-labs/projector/projector/txgraph"
)

// RateCalc derives the priority metric for pending transactions: the fee
// rate of the transaction combined with its entire unconfirmed ancestor
// package, in sat/vB. This is how a low-fee parent gets carried by a
// high-fee child. Rates are computed lazily and cached per run; the engine
// invalidates the cache whenever the edge set changes.
type RateCalc struct {
	mirror *Mirror
	graph  *txgraph.Graph

	// accel holds out-of-band fee bumps by uid, applied on top of the
	// reported fee before any rate is derived.
	accel map[uint32]int64

	cache map[uint32]pkgTotals
}

type pkgTotals struct {
	fee    int64
	weight int64
}

func NewRateCalc(mirror *Mirror, graph *txgraph.Graph) *RateCalc {
	return &RateCalc{
		mirror: mirror,
		graph:  graph,
		cache:  make(map[uint32]pkgTotals),
	}
}

// SetAccelerations replaces the fee-delta map. Invalidates the cache.
func (r *RateCalc) SetAccelerations(accel map[uint32]int64) {
	r.accel = accel
	r.Invalidate()
}

// Invalidate drops every cached package total.
func (r *RateCalc) Invalidate() {
	r.cache = make(map[uint32]pkgTotals)
}

// AdjustedFee is the transaction's own fee plus any acceleration delta.
func (r *RateCalc) AdjustedFee(tx *Tx) int64 {
	fee := tx.Fee
	if delta, ok := r.accel[tx.Uid]; ok {
		fee += delta
	}
	return fee
}

// EffectiveRate returns the package fee rate of uid in sat/vB:
// (own fee + ancestor fees) / (own weight + ancestor weight) * 4.
// When the ancestor package cannot be resolved (inconsistent upstream
// data), the transaction's own rate is used for this cycle.
func (r *RateCalc) EffectiveRate(uid uint32) float64 {
	t := r.packageTotals(uid)
	if t.weight <= 0 {
		return 0
	}
	return float64(t.fee) / float64(t.weight) * 4
}

// PackageTotals returns the combined fee and weight of uid and its
// ancestor package.
func (r *RateCalc) PackageTotals(uid uint32) (fee, weight int64) {
	t := r.packageTotals(uid)
	return t.fee, t.weight
}

func (r *RateCalc) packageTotals(uid uint32) pkgTotals {
	if t, ok := r.cache[uid]; ok {
		return t
	}

	tx := r.mirror.Get(uid)
	if tx == nil {
		return pkgTotals{}
	}

	t := pkgTotals{fee: r.AdjustedFee(tx), weight: tx.Weight}
	ancestors, err := r.graph.AncestorsOf(uid)
	if err != nil {
		// Inconsistent ancestry; fall back to the own rate until the
		// next refresh corrects the graph.
		r.cache[uid] = t
		return t
	}
	for _, anc := range ancestors {
		atx := r.mirror.Get(anc)
		if atx == nil {
			continue
		}
		t.fee += r.AdjustedFee(atx)
		t.weight += atx.Weight
	}

	r.cache[uid] = t
	return t
}

// AncestorDepth returns the size of uid's ancestor package; 0 for roots
// and for transactions with unresolvable ancestry.
func (r *RateCalc) AncestorDepth(uid uint32) int {
	ancestors, err := r.graph.AncestorsOf(uid)
	if err != nil {
		return 0
	}
	return len(ancestors)
}
