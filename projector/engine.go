package projector

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sat20-labs/projector/common"
	"github.com/sat20-labs/projector/projector/txgraph"
)

var (
	// ErrComputeBusy is returned when a refresh arrives while the
	// previous partition run is still in flight. Stale polls are
	// dropped, not queued; the next poll computes against the freshest
	// snapshot.
	ErrComputeBusy = errors.New("projection computation in progress")
)

// Acceleration is an out-of-band fee bump for one pending transaction.
type Acceleration struct {
	Txid     string
	FeeDelta int64
}

// Snapshot bundles everything derived from one successful refresh. It is
// immutable; readers get whichever snapshot was current when they asked.
type Snapshot struct {
	Projection  *Projection
	Blocks      []BlockSummary
	Histogram   *Histogram
	MempoolSize int
	RefreshedAt time.Time
}

// incrementalStrategy is the optional fast path a strategy may offer for
// add-only deltas of independent transactions.
type incrementalStrategy interface {
	ComputeIncremental(added []*Tx, rates *RateCalc, limits Limits) (*Projection, bool)
}

// Engine owns the mempool mirror, the ancestry index and the in-flight
// partition run. All mutation happens on a single caller goroutine (the
// poll daemon); publishing is an atomic pointer swap so any number of
// concurrent observers read either the previous or the new snapshot,
// never a mixture.
type Engine struct {
	mu sync.Mutex

	alloc    *UidAllocator
	mirror   *Mirror
	graph    *txgraph.Graph
	rates    *RateCalc
	strategy ComputeStrategy
	incr     incrementalStrategy // nil when the strategy has no fast path
	limits   Limits

	accel []Acceleration

	// Children scraped before their unconfirmed parent: parent txid ->
	// waiting child uids, plus the reverse index so entries are dropped
	// when the child itself leaves. When the parent finally arrives the
	// edge is formed and the delta loses its independent fast path.
	waiting        map[string]map[uint32]struct{}
	waitingByChild map[uint32][]string

	// Uids removed from mirror and graph whose retirement is still owed
	// because the partition run that followed failed. Flushed on the next
	// successful publish.
	pendingRetire []uint32

	// needFull blocks the incremental fast path after a failed run: the
	// strategy's memoized ordering may be stale relative to mirror and
	// graph until a full rebuild succeeds.
	needFull bool

	computing atomic.Bool
	seq       uint64
	published atomic.Pointer[Snapshot]
	updates   chan *Projection
}

// NewEngine builds an engine around the portable cluster strategy.
func NewEngine(limits Limits) *Engine {
	alloc := NewUidAllocator()
	mirror := NewMirror(alloc, limits.MaxBlockWeight)
	graph := txgraph.New()
	strategy := NewClusterStrategy(graph)
	return newEngineWith(alloc, mirror, graph, strategy, limits)
}

// NewEngineWithStrategy builds an engine around a caller-supplied
// strategy. Selection happens here, once, not per call.
func NewEngineWithStrategy(strategy ComputeStrategy, limits Limits) *Engine {
	alloc := NewUidAllocator()
	mirror := NewMirror(alloc, limits.MaxBlockWeight)
	graph := txgraph.New()
	return newEngineWith(alloc, mirror, graph, strategy, limits)
}

func newEngineWith(alloc *UidAllocator, mirror *Mirror, graph *txgraph.Graph, strategy ComputeStrategy, limits Limits) *Engine {
	e := &Engine{
		alloc:          alloc,
		mirror:         mirror,
		graph:          graph,
		rates:          NewRateCalc(mirror, graph),
		strategy:       strategy,
		limits:         limits,
		waiting:        make(map[string]map[uint32]struct{}),
		waitingByChild: make(map[uint32][]string),
		updates:        make(chan *Projection, 1),
	}
	e.incr, _ = strategy.(incrementalStrategy)

	empty := newEmptyProjection()
	e.published.Store(&Snapshot{
		Projection:  empty,
		Histogram:   AggregateHistogram(nil, e.rates),
		RefreshedAt: time.Now(),
	})
	return e
}

// ApplyFullSnapshot replaces the mirror with a complete scrape and
// recomputes the projection.
func (e *Engine) ApplyFullSnapshot(entries []common.MempoolEntry) error {
	return e.refresh(func() (added, removed []uint32) {
		return e.mirror.ApplyFullSnapshot(entries)
	})
}

// ApplyDelta feeds an incremental scrape: newly seen entries plus newly
// absent ids.
func (e *Engine) ApplyDelta(added []common.MempoolEntry, removedTxids []string) error {
	return e.refresh(func() ([]uint32, []uint32) {
		return e.mirror.ApplyDelta(added, removedTxids)
	})
}

// SetAccelerations replaces the fee-bump list and forces a full
// recomputation on the current candidate set.
func (e *Engine) SetAccelerations(accels []Acceleration) error {
	if !e.computing.CompareAndSwap(false, true) {
		return ErrComputeBusy
	}
	defer e.computing.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.accel = accels
	e.rates.SetAccelerations(e.resolveAccelerations())

	proj, err := e.computeFull()
	if err != nil {
		e.needFull = true
		return err
	}
	e.publish(proj, nil)
	return nil
}

// refresh is the single entry point for both snapshot forms: apply the
// delta to the mirror, update the ancestry index, recompute, publish,
// then retire the uids that left. A no-op delta triggers no
// recomputation and leaves the published projection untouched.
func (e *Engine) refresh(apply func() (added, removed []uint32)) error {
	if !e.computing.CompareAndSwap(false, true) {
		return ErrComputeBusy
	}
	defer e.computing.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	added, removed := apply()
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	for _, uid := range removed {
		e.dropWaiting(uid)
		e.graph.Remove(uid)
	}
	addedTxs := make([]*Tx, 0, len(added))
	for _, uid := range added {
		tx := e.mirror.Get(uid)
		if tx == nil {
			continue
		}
		e.graph.Add(uid, e.resolveParents(tx))
		e.adoptWaiting(tx)
		addedTxs = append(addedTxs, tx)
	}
	e.rates.Invalidate()
	e.rates.SetAccelerations(e.resolveAccelerations())

	proj, err := e.compute(addedTxs, removed)
	if err != nil {
		// The previous projection stays published; the failure is a
		// transient error to the polling loop, never a crash. The removed
		// uids are already out of mirror and graph and will never show up
		// in a later removed set, so their retirement is owed to the next
		// successful publish.
		e.pendingRetire = append(e.pendingRetire, removed...)
		e.needFull = true
		common.Log.Errorf("engine: projection computation failed: %v", err)
		return err
	}

	e.publish(proj, removed)
	return nil
}

// compute picks the path: removal or dependent-add forces a full rebuild,
// because removing one member of an ancestor package changes the
// effective rate of every sibling. Only independent add-only deltas take
// the merge-insert fast path.
func (e *Engine) compute(addedTxs []*Tx, removed []uint32) (proj *Projection, err error) {
	defer func() {
		if r := recover(); r != nil {
			proj = nil
			err = errors.Errorf("partition run panicked: %v", r)
		}
	}()

	if !e.needFull && len(removed) == 0 && e.incr != nil && e.independent(addedTxs) {
		if p, ok := e.incr.ComputeIncremental(addedTxs, e.rates, e.limits); ok {
			return p, nil
		}
	}
	return e.strategy.Compute(e.mirror.All(), e.rates, e.limits), nil
}

func (e *Engine) computeFull() (proj *Projection, err error) {
	defer func() {
		if r := recover(); r != nil {
			proj = nil
			err = errors.Errorf("partition run panicked: %v", r)
		}
	}()
	return e.strategy.Compute(e.mirror.All(), e.rates, e.limits), nil
}

// independent reports whether none of the added transactions has an
// in-mempool parent or child.
func (e *Engine) independent(added []*Tx) bool {
	for _, tx := range added {
		if len(e.graph.ParentsOf(tx.Uid)) > 0 || len(e.graph.ChildrenOf(tx.Uid)) > 0 {
			return false
		}
	}
	return true
}

func (e *Engine) resolveParents(tx *Tx) []uint32 {
	var parents []uint32
	for _, raw := range tx.ParentTxids {
		txid, err := common.NormalizeTxid(raw)
		if err != nil {
			continue
		}
		uid, ok := e.alloc.UidOf(txid)
		if !ok || e.mirror.Get(uid) == nil {
			// Reported parent is not pending yet: confirmed, or the
			// scrape delivered the child a cycle before the parent. Keep
			// waiting so the edge still forms if the parent shows up.
			e.awaitParent(txid, tx.Uid)
			continue
		}
		parents = append(parents, uid)
	}
	return parents
}

func (e *Engine) awaitParent(parentTxid string, child uint32) {
	set, ok := e.waiting[parentTxid]
	if !ok {
		set = make(map[uint32]struct{})
		e.waiting[parentTxid] = set
	}
	if _, dup := set[child]; dup {
		return
	}
	set[child] = struct{}{}
	e.waitingByChild[child] = append(e.waitingByChild[child], parentTxid)
}

// adoptWaiting links the already-pending children that arrived before tx
// did. The late edge makes the delta dependent, so the refresh falls off
// the incremental fast path and rebuilds in full.
func (e *Engine) adoptWaiting(tx *Tx) {
	for child := range e.waiting[tx.Txid] {
		if e.mirror.Get(child) == nil {
			continue
		}
		e.graph.Add(child, []uint32{tx.Uid})
	}
	delete(e.waiting, tx.Txid)
}

// dropWaiting clears the waiting entries of a child that left the
// pending set before its reported parents ever arrived.
func (e *Engine) dropWaiting(uid uint32) {
	for _, txid := range e.waitingByChild[uid] {
		if set, ok := e.waiting[txid]; ok {
			delete(set, uid)
			if len(set) == 0 {
				delete(e.waiting, txid)
			}
		}
	}
	delete(e.waitingByChild, uid)
}

func (e *Engine) resolveAccelerations() map[uint32]int64 {
	if len(e.accel) == 0 {
		return nil
	}
	out := make(map[uint32]int64, len(e.accel))
	for _, a := range e.accel {
		txid, err := common.NormalizeTxid(a.Txid)
		if err != nil {
			continue
		}
		if uid, ok := e.alloc.UidOf(txid); ok && e.mirror.Get(uid) != nil {
			out[uid] += a.FeeDelta
		}
	}
	return out
}

// publish atomically replaces the current snapshot and retires the uids
// that are gone from mirror, graph and projection alike.
func (e *Engine) publish(proj *Projection, retired []uint32) {
	e.seq++
	proj.Seq = e.seq
	proj.GeneratedAt = time.Now()

	snap := &Snapshot{
		Projection:  proj,
		Blocks:      buildBlockSummaries(proj, e.mirror),
		Histogram:   AggregateHistogram(e.mirror.All(), e.rates),
		MempoolSize: e.mirror.Len(),
		RefreshedAt: proj.GeneratedAt,
	}
	e.published.Store(snap)
	e.notify(proj)

	for _, uid := range retired {
		e.retire(uid)
	}
	for _, uid := range e.pendingRetire {
		e.retire(uid)
	}
	e.pendingRetire = nil
	e.needFull = false
}

// retire releases a uid unless the same txid re-entered the mirror in the
// meantime; Allocate hands the old handle back in that case and the
// transaction owns it again.
func (e *Engine) retire(uid uint32) {
	if e.mirror.Get(uid) != nil {
		return
	}
	e.alloc.Retire(uid)
}

// notify delivers the projection on the last-value-wins update channel.
func (e *Engine) notify(proj *Projection) {
	for {
		select {
		case e.updates <- proj:
			return
		default:
			select {
			case <-e.updates:
			default:
			}
		}
	}
}

// Snapshot returns the current published snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.published.Load()
}

// Projection returns the current published projection.
func (e *Engine) Projection() *Projection {
	return e.published.Load().Projection
}

// Histogram returns the fee-rate histogram of the current snapshot.
func (e *Engine) Histogram() *Histogram {
	return e.published.Load().Histogram
}

// Updates exposes the single-value broadcast of newly published
// projections; a slow reader only ever misses intermediate values, never
// the latest one.
func (e *Engine) Updates() <-chan *Projection {
	return e.updates
}

// PositionOfTxid locates a transaction in the current projection and
// returns its effective rate at computation time.
func (e *Engine) PositionOfTxid(txid string) (Position, float64) {
	normalized, err := common.NormalizeTxid(txid)
	if err != nil {
		return Position{State: NotProjected}, 0
	}
	uid, ok := e.alloc.UidOf(normalized)
	if !ok {
		return Position{State: NotProjected}, 0
	}
	proj := e.Projection()
	return proj.PositionOf(uid), proj.Rates[uid]
}

// TxidOf resolves a uid back to its transaction id.
func (e *Engine) TxidOf(uid uint32) (string, bool) {
	return e.alloc.TxidOf(uid)
}

// DiffTxids splits a freshly scraped id listing into ids not yet
// mirrored and mirrored ids that vanished. Called from the poll daemon
// only; it reads the mirror on the writer goroutine.
func (e *Engine) DiffTxids(current []string) (newIds, removedIds []string) {
	seen := make(map[string]struct{}, len(current))
	for _, raw := range current {
		txid, err := common.NormalizeTxid(raw)
		if err != nil {
			continue
		}
		seen[txid] = struct{}{}
		if e.mirror.GetByTxid(txid) == nil {
			newIds = append(newIds, txid)
		}
	}
	for _, tx := range e.mirror.All() {
		if _, ok := seen[tx.Txid]; !ok {
			removedIds = append(removedIds, tx.Txid)
		}
	}
	return newIds, removedIds
}

// MempoolSize returns the number of mirrored transactions.
func (e *Engine) MempoolSize() int {
	return e.published.Load().MempoolSize
}
