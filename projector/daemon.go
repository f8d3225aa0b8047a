package projector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/sat20-labs/projector/common"
)

// Source is a mempool scrape backend. A full id listing is cheap; entry
// detail is fetched only for ids the mirror has not seen.
type Source interface {
	// MempoolTxids lists every pending transaction id.
	MempoolTxids() ([]string, error)
	// MempoolEntries fetches full entries for the given ids. Ids that
	// vanished between the listing and this call are silently omitted.
	MempoolEntries(txids []string) ([]common.MempoolEntry, error)
}

// Daemon drives the engine from a Source on a fixed interval. One daemon
// per engine; the engine's mutation surface is single-writer.
type Daemon struct {
	engine   *Engine
	source   Source
	interval time.Duration
	paused   atomic.Bool
	primed   bool
}

func NewDaemon(engine *Engine, source Source, interval time.Duration) *Daemon {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Daemon{
		engine:   engine,
		source:   source,
		interval: interval,
	}
}

// Pause suspends polling without stopping the loop. The published
// projection stays up, marked stale by its RefreshedAt.
func (d *Daemon) Pause() { d.paused.Store(true) }

// Resume re-enables polling.
func (d *Daemon) Resume() { d.paused.Store(false) }

// Run polls until the context is cancelled. The first cycle primes the
// mirror with a full snapshot; later cycles apply deltas. Scrape
// failures keep the previous projection published and are retried on the
// next tick.
func (d *Daemon) Run(ctx context.Context) {
	common.Log.WithField("interval", d.interval).Info("projection daemon started")

	d.cycle()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			common.Log.Info("projection daemon stopped")
			return
		case <-ticker.C:
			d.cycle()
		}
	}
}

func (d *Daemon) cycle() {
	if d.paused.Load() {
		return
	}

	var txids []string
	err := retry.Do(func() error {
		var err error
		txids, err = d.source.MempoolTxids()
		return err
	}, retry.Attempts(3), retry.LastErrorOnly(true))
	if err != nil {
		common.Log.Warnf("daemon: mempool listing failed, serving stale projection: %v", err)
		return
	}

	if !d.primed {
		if d.prime(txids) {
			d.primed = true
		}
		return
	}

	newIds, removedIds := d.engine.DiffTxids(txids)
	if len(newIds) == 0 && len(removedIds) == 0 {
		return
	}

	var entries []common.MempoolEntry
	if len(newIds) > 0 {
		err = retry.Do(func() error {
			var err error
			entries, err = d.source.MempoolEntries(newIds)
			return err
		}, retry.Attempts(3), retry.LastErrorOnly(true))
		if err != nil {
			common.Log.Warnf("daemon: entry fetch failed, serving stale projection: %v", err)
			return
		}
	}

	switch err := d.engine.ApplyDelta(entries, removedIds); err {
	case nil:
	case ErrComputeBusy:
		common.Log.Debug("daemon: previous computation still running, poll dropped")
	default:
		common.Log.Errorf("daemon: delta refresh failed: %v", err)
	}
}

func (d *Daemon) prime(txids []string) bool {
	entries, err := d.source.MempoolEntries(txids)
	if err != nil {
		common.Log.Warnf("daemon: initial mempool scrape failed: %v", err)
		return false
	}
	if err := d.engine.ApplyFullSnapshot(entries); err != nil {
		common.Log.Errorf("daemon: initial refresh failed: %v", err)
		return false
	}
	common.Log.WithField("txs", len(entries)).Info("mempool mirror primed")
	return true
}
