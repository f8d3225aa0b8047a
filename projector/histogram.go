package projector

// feeRateBands are the upper bounds of the fixed histogram bands, in
// sat/vB. The last band is open-ended.
var feeRateBands = []float64{2, 4, 10, 20, 50, 100}

// HistogramBand is one fee-rate band. UpTo is the inclusive upper bound
// in sat/vB; 0 marks the open-ended top band.
type HistogramBand struct {
	UpTo  float64 `json:"upTo"`
	Count int     `json:"count"`
}

// Histogram buckets every pending transaction by effective fee rate.
// It is a derived view: recomputed fresh from the mirror on each publish
// and never persisted.
type Histogram struct {
	Bands []HistogramBand `json:"bands"`
	Total int             `json:"total"`
}

// AggregateHistogram buckets all pending transactions, not just the
// projected ones.
func AggregateHistogram(txs []*Tx, rates *RateCalc) *Histogram {
	h := &Histogram{
		Bands: make([]HistogramBand, len(feeRateBands)+1),
	}
	for i, upTo := range feeRateBands {
		h.Bands[i].UpTo = upTo
	}

	for _, tx := range txs {
		rate := rates.EffectiveRate(tx.Uid)
		idx := len(feeRateBands) // open-ended band
		for i, upTo := range feeRateBands {
			if rate <= upTo {
				idx = i
				break
			}
		}
		h.Bands[idx].Count++
		h.Total++
	}
	return h
}
