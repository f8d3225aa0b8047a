package projector

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// UidAllocator maps external transaction ids to dense integer handles and
// is the only authority for handle lifetime. Handles are minted from a
// monotonically increasing counter and recycled through a free list, but
// never while still outstanding: the engine retires a uid only after the
// transaction has left the mirror, the ancestry index and the most recent
// published projection.
//
// Allocate and Retire are called from the single engine goroutine. UidOf
// and TxidOf are safe for concurrent use by RPC readers.
type UidAllocator struct {
	byTxid cmap.ConcurrentMap[string, uint32]

	mu    sync.RWMutex
	txids []string // uid -> txid, "" for retired slots
	free  []uint32
}

func NewUidAllocator() *UidAllocator {
	return &UidAllocator{
		byTxid: cmap.New[uint32](),
	}
}

// Allocate returns the existing handle for txid, or mints a new one.
func (a *UidAllocator) Allocate(txid string) uint32 {
	if uid, ok := a.byTxid.Get(txid); ok {
		return uid
	}

	a.mu.Lock()
	var uid uint32
	if n := len(a.free); n > 0 {
		uid = a.free[n-1]
		a.free = a.free[:n-1]
		a.txids[uid] = txid
	} else {
		uid = uint32(len(a.txids))
		a.txids = append(a.txids, txid)
	}
	a.mu.Unlock()

	a.byTxid.Set(txid, uid)
	return uid
}

// Retire releases the mapping in both directions and makes uid eligible
// for reuse.
func (a *UidAllocator) Retire(uid uint32) {
	a.mu.Lock()
	if int(uid) >= len(a.txids) || a.txids[uid] == "" {
		a.mu.Unlock()
		return
	}
	txid := a.txids[uid]
	a.txids[uid] = ""
	a.free = append(a.free, uid)
	a.mu.Unlock()

	a.byTxid.Remove(txid)
}

func (a *UidAllocator) UidOf(txid string) (uint32, bool) {
	return a.byTxid.Get(txid)
}

func (a *UidAllocator) TxidOf(uid uint32) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(uid) >= len(a.txids) || a.txids[uid] == "" {
		return "", false
	}
	return a.txids[uid], true
}

// Outstanding returns the number of live handles.
func (a *UidAllocator) Outstanding() int {
	return a.byTxid.Count()
}
