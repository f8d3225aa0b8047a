package projector

import "sort"

// BlockSummary is the presentation view of one projected block, resolved
// to txids at publish time so readers never reach back into the live
// mirror.
type BlockSummary struct {
	TxCount    int
	Weight     int64
	TotalFee   int64
	MedianRate float64
	MinRate    float64
	MaxRate    float64
	Txids      []string
}

func buildBlockSummaries(proj *Projection, mirror *Mirror) []BlockSummary {
	summaries := make([]BlockSummary, len(proj.Blocks))
	for i, block := range proj.Blocks {
		s := &summaries[i]
		s.TxCount = len(block)
		if i < len(proj.BlockWeights) {
			s.Weight = proj.BlockWeights[i]
		}
		s.Txids = make([]string, 0, len(block))
		blockRates := make([]float64, 0, len(block))
		for _, uid := range block {
			tx := mirror.Get(uid)
			if tx == nil {
				continue
			}
			s.Txids = append(s.Txids, tx.Txid)
			s.TotalFee += tx.Fee
			blockRates = append(blockRates, proj.Rates[uid])
		}
		if len(blockRates) == 0 {
			continue
		}
		sort.Float64s(blockRates)
		s.MinRate = blockRates[0]
		s.MaxRate = blockRates[len(blockRates)-1]
		s.MedianRate = blockRates[len(blockRates)/2]
	}
	return summaries
}
