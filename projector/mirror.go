package projector

import (
	"github.com/sat20-labs/projector/common"
)

// Tx is a pending transaction held by the mirror. Transactions live in
// dense arena slots indexed by uid, so the ancestry index and the
// partitioner can refer to them without sharing pointers across update
// cycles.
type Tx struct {
	Uid       uint32
	Txid      string
	Fee       int64 // satoshi
	Weight    int64 // weight units
	VSize     int64 // virtual bytes
	Sigops    int64
	Order     uint32 // local arrival order, monotonic
	FirstSeen int64

	// ParentTxids holds the raw dependency list as reported by the
	// collaborator. Resolution against the live pending set happens in
	// the engine when the ancestry index is updated.
	ParentTxids []string
}

// OwnRate is the transaction's fee rate in sat/vB ignoring ancestors.
func (t *Tx) OwnRate() float64 {
	return float64(t.Fee) / float64(t.Weight) * 4
}

// Mirror is the authoritative local copy of the pending set. All writes
// happen on the single engine goroutine.
type Mirror struct {
	alloc *UidAllocator

	slots   []*Tx // indexed by uid, nil when free
	count   int
	arrival uint32

	// maxTxWeight matches the block weight cap; a single transaction
	// heavier than one block is malformed input and never enters the
	// mirror.
	maxTxWeight int64
}

func NewMirror(alloc *UidAllocator, maxTxWeight int64) *Mirror {
	return &Mirror{
		alloc:       alloc,
		maxTxWeight: maxTxWeight,
	}
}

// ApplyFullSnapshot replaces the pending set in one step and returns the
// added and removed uids by set-difference against the prior state.
// Removed slots are cleared here but their uids stay allocated until the
// engine retires them after the next projection is published.
func (m *Mirror) ApplyFullSnapshot(entries []common.MempoolEntry) (added, removed []uint32) {
	incoming := make(map[string]struct{}, len(entries))

	for i := range entries {
		e := &entries[i]
		txid, ok := m.checkEntry(e)
		if !ok {
			continue
		}
		if _, dup := incoming[txid]; dup {
			continue
		}
		incoming[txid] = struct{}{}

		if uid, ok := m.alloc.UidOf(txid); ok && m.slots[uid] != nil {
			continue // already pending
		}
		added = append(added, m.insert(txid, e))
	}

	for uid, tx := range m.slots {
		if tx == nil {
			continue
		}
		if _, ok := incoming[tx.Txid]; !ok {
			m.slots[uid] = nil
			m.count--
			removed = append(removed, uint32(uid))
		}
	}
	return added, removed
}

// ApplyDelta is the incremental form used when the collaborator can
// report new and vanished ids directly.
func (m *Mirror) ApplyDelta(addedEntries []common.MempoolEntry, removedTxids []string) (added, removed []uint32) {
	for _, raw := range removedTxids {
		txid, err := common.NormalizeTxid(raw)
		if err != nil {
			continue
		}
		uid, ok := m.alloc.UidOf(txid)
		if !ok || m.slots[uid] == nil {
			continue
		}
		m.slots[uid] = nil
		m.count--
		removed = append(removed, uid)
	}

	for i := range addedEntries {
		e := &addedEntries[i]
		txid, ok := m.checkEntry(e)
		if !ok {
			continue
		}
		if uid, dup := m.alloc.UidOf(txid); dup && m.slots[uid] != nil {
			continue
		}
		added = append(added, m.insert(txid, e))
	}
	return added, removed
}

// checkEntry validates one reported entry. Malformed entries are dropped
// with a warning and never abort the refresh cycle.
func (m *Mirror) checkEntry(e *common.MempoolEntry) (string, bool) {
	txid, err := common.NormalizeTxid(e.Txid)
	if err != nil {
		common.Log.Warnf("mirror: dropping entry with bad txid %q: %v", e.Txid, err)
		return "", false
	}
	if e.Fee < 0 || e.Weight <= 0 {
		common.Log.Warnf("mirror: dropping malformed entry %s, fee=%d weight=%d", txid, e.Fee, e.Weight)
		return "", false
	}
	if e.Weight > m.maxTxWeight {
		common.Log.Warnf("mirror: dropping oversized entry %s, weight=%d exceeds block cap %d", txid, e.Weight, m.maxTxWeight)
		return "", false
	}
	return txid, true
}

func (m *Mirror) insert(txid string, e *common.MempoolEntry) uint32 {
	uid := m.alloc.Allocate(txid)
	for int(uid) >= len(m.slots) {
		m.slots = append(m.slots, nil)
	}

	vsize := e.VSize
	if vsize <= 0 {
		vsize = (e.Weight + 3) / 4
	}

	m.slots[uid] = &Tx{
		Uid:         uid,
		Txid:        txid,
		Fee:         e.Fee,
		Weight:      e.Weight,
		VSize:       vsize,
		Sigops:      e.Sigops,
		Order:       m.arrival,
		FirstSeen:   e.FirstSeen,
		ParentTxids: e.Parents,
	}
	m.arrival++
	m.count++
	return uid
}

// Get returns the pending transaction for uid, or nil.
func (m *Mirror) Get(uid uint32) *Tx {
	if int(uid) >= len(m.slots) {
		return nil
	}
	return m.slots[uid]
}

// GetByTxid returns the pending transaction for a txid, or nil.
func (m *Mirror) GetByTxid(txid string) *Tx {
	uid, ok := m.alloc.UidOf(txid)
	if !ok {
		return nil
	}
	return m.Get(uid)
}

func (m *Mirror) Len() int {
	return m.count
}

// All returns every pending transaction in uid order. The order is
// deterministic, which the partitioner relies on.
func (m *Mirror) All() []*Tx {
	txs := make([]*Tx, 0, m.count)
	for _, tx := range m.slots {
		if tx != nil {
			txs = append(txs, tx)
		}
	}
	return txs
}
