package projection

import (
	"fmt"

	"github.com/sat20-labs/projector/projector"
	"github.com/sat20-labs/projector/rpcserver/wire"
)

type Model struct {
	engine *projector.Engine
}

func NewModel(engine *projector.Engine) *Model {
	return &Model{
		engine: engine,
	}
}

func (s *Model) GetProjection() *wire.Projection {
	snap := s.engine.Snapshot()
	ret := &wire.Projection{
		Seq:             snap.Projection.Seq,
		GeneratedAt:     snap.Projection.GeneratedAt.Unix(),
		MempoolSize:     snap.MempoolSize,
		Blocks:          make([]*wire.ProjectedBlock, 0, len(snap.Blocks)),
		OverflowTxCount: len(snap.Projection.Overflow),
	}
	for i := range snap.Blocks {
		ret.Blocks = append(ret.Blocks, toProjectedBlock(i, &snap.Blocks[i]))
	}
	return ret
}

func (s *Model) GetBlockDetail(index int) (*wire.BlockDetail, error) {
	snap := s.engine.Snapshot()
	if index < 0 || index >= len(snap.Blocks) {
		return nil, fmt.Errorf("block index %d out of range, projection has %d blocks", index, len(snap.Blocks))
	}
	summary := &snap.Blocks[index]
	return &wire.BlockDetail{
		ProjectedBlock: *toProjectedBlock(index, summary),
		Txids:          summary.Txids,
	}, nil
}

func (s *Model) GetTxPosition(txid string) *wire.TxPosition {
	pos, rate := s.engine.PositionOfTxid(txid)
	ret := &wire.TxPosition{
		Txid:          txid,
		Block:         -1,
		EffectiveRate: rate,
	}
	switch pos.State {
	case projector.InBlock:
		ret.State = "projected"
		ret.Block = pos.Block
	case projector.InOverflow:
		ret.State = "overflow"
	default:
		ret.State = "unknown"
		ret.EffectiveRate = 0
	}
	return ret
}

func (s *Model) GetHistogram() *wire.Histogram {
	hist := s.engine.Histogram()
	ret := &wire.Histogram{
		Bands: make([]wire.HistogramBand, 0, len(hist.Bands)),
		Total: hist.Total,
	}
	for _, band := range hist.Bands {
		ret.Bands = append(ret.Bands, wire.HistogramBand{
			UpTo:  band.UpTo,
			Count: band.Count,
		})
	}
	return ret
}

func toProjectedBlock(index int, s *projector.BlockSummary) *wire.ProjectedBlock {
	return &wire.ProjectedBlock{
		Index:      index,
		TxCount:    s.TxCount,
		Weight:     s.Weight,
		TotalFee:   s.TotalFee,
		MedianRate: s.MedianRate,
		FeeRange:   []float64{s.MinRate, s.MaxRate},
	}
}
