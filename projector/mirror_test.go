package projector

import (
	"testing"

	"github.com/sat20-labs/projector/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(n int, fee, weight int64, parents ...int) common.MempoolEntry {
	var parentIds []string
	for _, p := range parents {
		parentIds = append(parentIds, testTxid(p))
	}
	return common.MempoolEntry{
		Txid:    testTxid(n),
		Fee:     fee,
		Weight:  weight,
		Parents: parentIds,
	}
}

func TestFullSnapshotDiff(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)

	added, removed := m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 800),
	})
	assert.Len(t, added, 2)
	assert.Empty(t, removed)
	assert.Equal(t, 2, m.Len())

	// 2 confirmed, 3 arrived.
	added, removed = m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(3, 3000, 600),
	})
	require.Len(t, added, 1)
	require.Len(t, removed, 1)
	assert.Equal(t, testTxid(3), m.Get(added[0]).Txid)
	assert.Nil(t, m.Get(removed[0]))
	assert.Equal(t, 2, m.Len())
}

func TestFullSnapshotNoop(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	snapshot := []common.MempoolEntry{entry(1, 1000, 400)}
	m.ApplyFullSnapshot(snapshot)

	added, removed := m.ApplyFullSnapshot(snapshot)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestMalformedEntriesDropped(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	added, _ := m.ApplyFullSnapshot([]common.MempoolEntry{
		{Txid: "not-a-txid", Fee: 1000, Weight: 400},
		entry(2, -5, 400),          // negative fee
		entry(3, 1000, 0),          // zero weight
		entry(4, 1000, 4000001),    // heavier than a block
		entry(5, 1000, 400),        // fine
	})
	require.Len(t, added, 1)
	assert.Equal(t, testTxid(5), m.Get(added[0]).Txid)
}

func TestDuplicateEntryIgnored(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	added, _ := m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(1, 9999, 500),
	})
	require.Len(t, added, 1)
	assert.Equal(t, int64(1000), m.Get(added[0]).Fee)
}

func TestVSizeFallback(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	added, _ := m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 401),
	})
	require.Len(t, added, 1)
	assert.Equal(t, int64(101), m.Get(added[0]).VSize)
}

func TestApplyDelta(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(1, 1000, 400),
		entry(2, 2000, 800),
	})

	added, removed := m.ApplyDelta(
		[]common.MempoolEntry{entry(3, 3000, 600)},
		[]string{testTxid(1), testTxid(99)}, // 99 unknown, ignored
	)
	require.Len(t, added, 1)
	require.Len(t, removed, 1)
	assert.Equal(t, 2, m.Len())
	assert.Nil(t, m.GetByTxid(testTxid(1)))
	assert.NotNil(t, m.GetByTxid(testTxid(3)))
}

func TestAllUidOrder(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	m.ApplyFullSnapshot([]common.MempoolEntry{
		entry(3, 1, 400),
		entry(1, 2, 400),
		entry(2, 3, 400),
	})
	all := m.All()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Uid, all[i].Uid)
	}
}

func TestArrivalOrderMonotonic(t *testing.T) {
	m := NewMirror(NewUidAllocator(), 4000000)
	m.ApplyFullSnapshot([]common.MempoolEntry{entry(1, 1, 400)})
	m.ApplyDelta([]common.MempoolEntry{entry(2, 1, 400)}, nil)
	m.ApplyDelta([]common.MempoolEntry{entry(3, 1, 400)}, nil)

	a, b, c := m.GetByTxid(testTxid(1)), m.GetByTxid(testTxid(2)), m.GetByTxid(testTxid(3))
	assert.Less(t, a.Order, b.Order)
	assert.Less(t, b.Order, c.Order)
}
