package bitcoind

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sat20-labs/projector/common"
	"github.com/sat20-labs/projector/projector"
	rpcwire "github.com/sat20-labs/projector/rpcserver/wire"
	"github.com/sat20-labs/projector/share/bitcoin_rpc"
)

type Service struct {
	engine *projector.Engine
}

func NewService(engine *projector.Engine) *Service {
	return &Service{
		engine: engine,
	}
}

func (s *Service) InitRouter(r *gin.Engine, basePath string) {
	// 推荐费率
	r.GET(basePath+"/fee/recommended", s.getRecommendedFees)
}

// @Summary Recommended fee rates
// @Description Fee rates derived from the projected blocks, in sat/vB. Falls back to the node's estimatesmartfee when the projection is empty.
// @Tags projector.btc
// @Produce json
// @Security Bearer
// @Success 200 {object} rpcwire.RecommendedFeesResp "Successful response"
// @Failure 401 "Invalid API Key"
// @Router /fee/recommended [get]
func (s *Service) getRecommendedFees(c *gin.Context) {
	resp := &rpcwire.RecommendedFeesResp{
		BaseResp: rpcwire.BaseResp{
			Code: 0,
			Msg:  "ok",
		},
	}

	fees := s.feesFromProjection()
	if fees == nil {
		var err error
		fees, err = s.feesFromNode()
		if err != nil {
			resp.Code = -1
			resp.Msg = err.Error()
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp.Data = fees
	c.JSON(http.StatusOK, resp)
}

// feesFromProjection reads the median rates of the leading projected
// blocks: the next block for fastest, the second for half hour, the
// third for hour, the last for economy.
func (s *Service) feesFromProjection() *rpcwire.RecommendedFees {
	snap := s.engine.Snapshot()
	if len(snap.Blocks) == 0 || snap.Blocks[0].TxCount == 0 {
		return nil
	}

	medianAt := func(index int) float64 {
		if index >= len(snap.Blocks) {
			index = len(snap.Blocks) - 1
		}
		return clampFee(snap.Blocks[index].MedianRate)
	}

	return &rpcwire.RecommendedFees{
		FastestFee:  medianAt(0),
		HalfHourFee: medianAt(1),
		HourFee:     medianAt(2),
		EconomyFee:  medianAt(len(snap.Blocks) - 1),
		MinimumFee:  1.0,
	}
}

func (s *Service) feesFromNode() (*rpcwire.RecommendedFees, error) {
	fees := &rpcwire.RecommendedFees{MinimumFee: 1.0}

	ret, err := bitcoin_rpc.ShareBitconRpc.EstimateSmartFeeWithMode(1, "CONSERVATIVE")
	if err != nil {
		return nil, err
	}
	// BTC/kb -> sat/vb
	fees.FastestFee = clampFee(ret.FeeRate * 100000)

	ret, err = bitcoin_rpc.ShareBitconRpc.EstimateSmartFeeWithMode(3, "ECONOMICAL")
	if err != nil {
		return nil, err
	}
	fees.HalfHourFee = clampFee(ret.FeeRate * 100000)

	ret, err = bitcoin_rpc.ShareBitconRpc.EstimateSmartFeeWithMode(6, "ECONOMICAL")
	if err != nil {
		return nil, err
	}
	fees.HourFee = clampFee(ret.FeeRate * 100000)
	fees.EconomyFee = fees.HourFee

	common.Log.Debugf("recommended fees from node: %+v", fees)
	return fees, nil
}

func clampFee(rate float64) float64 {
	if rate < 1.0 {
		return 1.0
	}
	return rate
}
