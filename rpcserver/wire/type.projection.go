package wire

type HealthStatusResp struct {
	Status      string `json:"status" example:"ok"`
	Version     string `json:"version" example:"0.2.0"`
	Tip         uint64 `json:"tip" example:"868042"`
	MempoolSize int    `json:"mempool_size" example:"40213"`
	RefreshedAt int64  `json:"refreshed_at" example:"1725072000"`
}

type ProjectedBlock struct {
	Index      int       `json:"index" example:"0"`
	TxCount    int       `json:"tx_count" example:"3210"`
	Weight     int64     `json:"weight" example:"3991837"`
	TotalFee   int64     `json:"total_fee" example:"14250000"`
	MedianRate float64   `json:"median_rate" example:"12.4"`
	FeeRange   []float64 `json:"fee_range"`
}

type Projection struct {
	Seq             uint64            `json:"seq" example:"42"`
	GeneratedAt     int64             `json:"generated_at" example:"1725072000"`
	MempoolSize     int               `json:"mempool_size" example:"40213"`
	Blocks          []*ProjectedBlock `json:"blocks"`
	OverflowTxCount int               `json:"overflow_tx_count" example:"21890"`
}

type ProjectionResp struct {
	BaseResp
	Data *Projection `json:"data"`
}

type BlockDetail struct {
	ProjectedBlock
	Txids []string `json:"txids"`
}

type BlockDetailResp struct {
	BaseResp
	Data *BlockDetail `json:"data"`
}

type TxPosition struct {
	Txid string `json:"txid"`
	// State is "projected", "overflow" or "unknown".
	State         string  `json:"state" example:"projected"`
	Block         int     `json:"block" example:"2"`
	EffectiveRate float64 `json:"effective_rate" example:"8.7"`
}

type TxPositionResp struct {
	BaseResp
	Data *TxPosition `json:"data"`
}

type HistogramBand struct {
	UpTo  float64 `json:"up_to" example:"10"`
	Count int     `json:"count" example:"1523"`
}

type Histogram struct {
	Bands []HistogramBand `json:"bands"`
	Total int             `json:"total" example:"40213"`
}

type HistogramResp struct {
	BaseResp
	Data *Histogram `json:"data"`
}

type RecommendedFees struct {
	FastestFee  float64 `json:"fastest_fee" example:"20.1"`
	HalfHourFee float64 `json:"half_hour_fee" example:"15.3"`
	HourFee     float64 `json:"hour_fee" example:"12.0"`
	EconomyFee  float64 `json:"economy_fee" example:"4.2"`
	MinimumFee  float64 `json:"minimum_fee" example:"1.0"`
}

type RecommendedFeesResp struct {
	BaseResp
	Data *RecommendedFees `json:"data"`
}
