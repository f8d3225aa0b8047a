package projector

import (
	"testing"

	"github.com/sat20-labs/projector/common"
	"github.com/sat20-labs/projector/projector/txgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(Limits{MaxBlockWeight: 4000000, MaxBlocks: 8})
}

// faultableStrategy lets a test make one partition run blow up.
type faultableStrategy struct {
	inner ComputeStrategy
	fail  bool
}

func (s *faultableStrategy) Compute(candidates []*Tx, rates *RateCalc, limits Limits) *Projection {
	if s.fail {
		panic("partition blew up")
	}
	return s.inner.Compute(candidates, rates, limits)
}

func (s *faultableStrategy) ComputeIncremental(added []*Tx, rates *RateCalc, limits Limits) (*Projection, bool) {
	if s.fail {
		panic("partition blew up")
	}
	if incr, ok := s.inner.(incrementalStrategy); ok {
		return incr.ComputeIncremental(added, rates, limits)
	}
	return nil, false
}

func faultyEngine() (*Engine, *faultableStrategy) {
	limits := Limits{MaxBlockWeight: 4000000, MaxBlocks: 8}
	alloc := NewUidAllocator()
	mirror := NewMirror(alloc, limits.MaxBlockWeight)
	graph := txgraph.New()
	s := &faultableStrategy{inner: NewClusterStrategy(graph)}
	return newEngineWith(alloc, mirror, graph, s, limits), s
}

func TestEngineStartsEmpty(t *testing.T) {
	e := testEngine()
	proj := e.Projection()
	assert.Equal(t, uint64(0), proj.Seq)
	assert.Empty(t, proj.Blocks)
	assert.Equal(t, 0, e.MempoolSize())
}

func TestEnginePublishOnSnapshot(t *testing.T) {
	e := testEngine()
	err := e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 400),
	})
	require.NoError(t, err)

	proj := e.Projection()
	assert.Equal(t, uint64(1), proj.Seq)
	require.Len(t, proj.Blocks, 1)
	assert.Len(t, proj.Blocks[0], 2)
	assert.Equal(t, 2, e.MempoolSize())

	snap := e.Snapshot()
	require.Len(t, snap.Blocks, 1)
	assert.Equal(t, 2, snap.Blocks[0].TxCount)
	assert.Equal(t, int64(3000), snap.Blocks[0].TotalFee)
	assert.Equal(t, []string{testTxid(2), testTxid(1)}, snap.Blocks[0].Txids)
}

func TestEngineNoopSnapshotKeepsSeq(t *testing.T) {
	e := testEngine()
	snapshot := []common.MempoolEntry{entry(1, 1000, 400)}
	require.NoError(t, e.ApplyFullSnapshot(snapshot))
	first := e.Projection()

	require.NoError(t, e.ApplyFullSnapshot(snapshot))
	assert.Same(t, first, e.Projection())
	assert.Equal(t, uint64(1), e.Projection().Seq)
}

func TestEngineDeltaRecomputes(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 100, 400),
		entry(2, 3900, 400, 1),
	}))

	pos, rate := e.PositionOfTxid(testTxid(2))
	assert.Equal(t, InBlock, pos.State)
	assert.InDelta(t, 20.0, rate, 1e-9) // package: 4000 sat over 200 vB

	// The child confirms; the weak parent stays behind on its own.
	require.NoError(t, e.ApplyDelta(nil, []string{testTxid(2)}))
	assert.Equal(t, uint64(2), e.Projection().Seq)

	pos, rate = e.PositionOfTxid(testTxid(1))
	assert.Equal(t, InBlock, pos.State)
	assert.InDelta(t, 1.0, rate, 1e-9)

	pos, _ = e.PositionOfTxid(testTxid(2))
	assert.Equal(t, NotProjected, pos.State)
}

func TestEngineRetiresRemovedUids(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{entry(1, 1000, 400)}))
	require.NoError(t, e.ApplyDelta(nil, []string{testTxid(1)}))

	assert.Equal(t, 0, e.MempoolSize())
	assert.Equal(t, 0, e.alloc.Outstanding())
}

func TestEngineIncrementalAddMatchesRebuild(t *testing.T) {
	a := testEngine()
	require.NoError(t, a.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 3000, 400),
		entry(2, 1000, 400),
	}))
	// Independent arrival takes the merge path.
	require.NoError(t, a.ApplyDelta([]common.MempoolEntry{entry(3, 2000, 400)}, nil))

	b := testEngine()
	require.NoError(t, b.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 3000, 400),
		entry(2, 1000, 400),
		entry(3, 2000, 400),
	}))

	require.Len(t, a.Snapshot().Blocks, 1)
	assert.Equal(t, b.Snapshot().Blocks[0].Txids, a.Snapshot().Blocks[0].Txids)
}

func TestEngineDependentAddLinksGraph(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{entry(1, 100, 400)}))

	_, rate := e.PositionOfTxid(testTxid(1))
	assert.InDelta(t, 1.0, rate, 1e-9)

	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(2, 3900, 400, 1)}, nil))
	_, rate = e.PositionOfTxid(testTxid(1))
	assert.InDelta(t, 20.0, rate, 1e-9) // parent rides the child's package rate
	_, rate = e.PositionOfTxid(testTxid(2))
	assert.InDelta(t, 20.0, rate, 1e-9) // child pays for both

	proj := e.Projection()
	require.Len(t, proj.Clusters, 1)
}

func TestEngineLateParentArrival(t *testing.T) {
	e := testEngine()
	// The scrape delivers the child one cycle before its unconfirmed
	// parent.
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(2, 8000, 800, 1),
	}))
	_, rate := e.PositionOfTxid(testTxid(2))
	assert.InDelta(t, 40.0, rate, 1e-9) // own rate until the parent shows up

	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(1, 100, 800)}, nil))

	// The edge formed on the later cycle and the pair is one package.
	proj := e.Projection()
	require.Len(t, proj.Clusters, 1)

	parentPos, parentRate := e.PositionOfTxid(testTxid(1))
	childPos, childRate := e.PositionOfTxid(testTxid(2))
	require.Equal(t, InBlock, parentPos.State)
	assert.Equal(t, childPos.Block, parentPos.Block)
	assert.InDelta(t, 20.25, parentRate, 1e-9) // package: 8100 sat over 400 vB
	assert.InDelta(t, 20.25, childRate, 1e-9)

	// Inside the block the parent sits no later than its child, even
	// though the child holds the lower uid.
	parentUid, _ := e.alloc.UidOf(testTxid(1))
	childUid, _ := e.alloc.UidOf(testTxid(2))
	assert.Equal(t, []uint32{parentUid, childUid}, proj.Blocks[parentPos.Block])
}

func TestEngineLateParentAfterChildGone(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(2, 8000, 800, 1),
	}))
	require.NoError(t, e.ApplyDelta(nil, []string{testTxid(2)}))

	// The parent finally arrives after its waiting child left; no stale
	// edge may form.
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(1, 100, 800)}, nil))
	proj := e.Projection()
	assert.Empty(t, proj.Clusters)
	_, rate := e.PositionOfTxid(testTxid(1))
	assert.InDelta(t, 0.5, rate, 1e-9)
}

func TestEngineComputeFailureKeepsLastProjection(t *testing.T) {
	e, s := faultyEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 400),
	}))
	before := e.Snapshot()

	s.fail = true
	require.Error(t, e.ApplyDelta(nil, []string{testTxid(2)}))

	// The previous snapshot stays published and readable.
	assert.Same(t, before, e.Snapshot())
	assert.Equal(t, uint64(1), e.Projection().Seq)

	// The engine accepts the next refresh once the strategy recovers.
	s.fail = false
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(3, 3000, 400)}, nil))
	assert.Equal(t, uint64(2), e.Projection().Seq)
	pos, _ := e.PositionOfTxid(testTxid(2))
	assert.Equal(t, NotProjected, pos.State)
}

func TestEngineRetiresUidsAfterFailedRun(t *testing.T) {
	e, s := faultyEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 400),
	}))

	s.fail = true
	require.Error(t, e.ApplyDelta(nil, []string{testTxid(2)}))
	assert.Equal(t, 2, e.alloc.Outstanding()) // retirement deferred, not lost

	s.fail = false
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(3, 3000, 400)}, nil))
	assert.Equal(t, 2, e.alloc.Outstanding())
	_, ok := e.alloc.UidOf(testTxid(2))
	assert.False(t, ok)
}

func TestEngineFailedRunBlocksFastPath(t *testing.T) {
	e, s := faultyEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 3000, 400),
		entry(2, 1000, 400),
	}))

	s.fail = true
	require.Error(t, e.ApplyDelta(nil, []string{testTxid(1)}))

	// The memoized ordering still holds the removed transaction; the
	// next add-only delta must rebuild in full instead of merging into it.
	s.fail = false
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(3, 2000, 400)}, nil))

	proj := e.Projection()
	require.Len(t, proj.Blocks, 1)
	uid2, _ := e.alloc.UidOf(testTxid(2))
	uid3, _ := e.alloc.UidOf(testTxid(3))
	assert.Equal(t, []uint32{uid3, uid2}, proj.Blocks[0])
	pos, _ := e.PositionOfTxid(testTxid(1))
	assert.Equal(t, NotProjected, pos.State)
}

func TestEngineFailedRemovalThenReAdd(t *testing.T) {
	e, s := faultyEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{entry(1, 1000, 400)}))

	s.fail = true
	require.Error(t, e.ApplyDelta(nil, []string{testTxid(1)}))

	// The same transaction reappears before retirement was flushed; the
	// old handle goes back to it and must not be released.
	s.fail = false
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(1, 1000, 400)}, nil))
	assert.Equal(t, 1, e.alloc.Outstanding())
	pos, _ := e.PositionOfTxid(testTxid(1))
	assert.Equal(t, InBlock, pos.State)
}

func TestEngineUpdatesChannel(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{entry(1, 1000, 400)}))
	require.NoError(t, e.ApplyDelta([]common.MempoolEntry{entry(2, 2000, 400)}, nil))

	// A slow reader only sees the latest projection.
	select {
	case proj := <-e.Updates():
		assert.Equal(t, uint64(2), proj.Seq)
	default:
		t.Fatal("expected a pending update")
	}
	select {
	case <-e.Updates():
		t.Fatal("only the last value should be buffered")
	default:
	}
}

func TestEngineAccelerations(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 400),
	}))
	snap := e.Snapshot()
	assert.Equal(t, testTxid(2), snap.Blocks[0].Txids[0])

	require.NoError(t, e.SetAccelerations([]Acceleration{{Txid: testTxid(1), FeeDelta: 5000}}))
	snap = e.Snapshot()
	assert.Equal(t, testTxid(1), snap.Blocks[0].Txids[0])
	_, rate := e.PositionOfTxid(testTxid(1))
	assert.InDelta(t, 60.0, rate, 1e-9)

	// Clearing the bump restores the reported ordering.
	require.NoError(t, e.SetAccelerations(nil))
	assert.Equal(t, testTxid(2), e.Snapshot().Blocks[0].Txids[0])
}

func TestEngineDiffTxids(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 400),
	}))

	newIds, removedIds := e.DiffTxids([]string{testTxid(2), testTxid(3), "garbage"})
	assert.Equal(t, []string{testTxid(3)}, newIds)
	assert.Equal(t, []string{testTxid(1)}, removedIds)
}

func TestEngineHistogramTracksMirror(t *testing.T) {
	e := testEngine()
	require.NoError(t, e.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 100, 400),   // 1 sat/vB
		entry(2, 1500, 400),  // 15
		entry(3, 20000, 400), // 200
	}))

	hist := e.Histogram()
	assert.Equal(t, 3, hist.Total)
}
