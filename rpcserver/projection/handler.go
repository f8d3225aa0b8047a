package projection

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sat20-labs/projector/common"
	"github.com/sat20-labs/projector/rpcserver/wire"
	"github.com/sat20-labs/projector/share/bitcoin_rpc"
)

// @Summary Health Check
// @Description Check the health status of the service
// @Tags projector
// @Produce json
// @Success 200 {object} wire.HealthStatusResp "Successful response"
// @Router /health [get]
func (s *Service) getHealth(c *gin.Context) {
	snap := s.model.engine.Snapshot()
	rsp := &wire.HealthStatusResp{
		Status:      "ok",
		Version:     common.PROJECTOR_VERSION,
		MempoolSize: snap.MempoolSize,
		RefreshedAt: snap.RefreshedAt.Unix(),
	}

	if bitcoin_rpc.ShareBitconRpc != nil {
		tip, err := bitcoin_rpc.ShareBitconRpc.GetBlockCount()
		if err == nil {
			rsp.Tip = tip
		}
	}

	if snap.Projection.Seq == 0 || time.Since(snap.RefreshedAt) > s.staleAfter {
		rsp.Status = "stale"
	}
	c.JSON(http.StatusOK, rsp)
}

// @Summary Current projection
// @Description Summary of the projected blocks computed from the mirrored mempool
// @Tags projector
// @Produce json
// @Security Bearer
// @Success 200 {object} wire.ProjectionResp "Successful response"
// @Failure 401 "Invalid API Key"
// @Router /projection [get]
func (s *Service) getProjection(c *gin.Context) {
	resp := &wire.ProjectionResp{
		BaseResp: wire.BaseResp{
			Code: 0,
			Msg:  "ok",
		},
		Data: s.model.GetProjection(),
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Projected block detail
// @Description Transaction ids of one projected block, in assignment order
// @Tags projector
// @Produce json
// @Security Bearer
// @Param index path int true "Block index, 0 is the next block"
// @Success 200 {object} wire.BlockDetailResp "Successful response"
// @Failure 401 "Invalid API Key"
// @Router /projection/block/{index} [get]
func (s *Service) getBlockDetail(c *gin.Context) {
	resp := &wire.BlockDetailResp{
		BaseResp: wire.BaseResp{
			Code: 0,
			Msg:  "ok",
		},
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		resp.Code = -1
		resp.Msg = err.Error()
		c.JSON(http.StatusOK, resp)
		return
	}
	detail, err := s.model.GetBlockDetail(index)
	if err != nil {
		resp.Code = -1
		resp.Msg = err.Error()
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Data = detail
	c.JSON(http.StatusOK, resp)
}

// @Summary Transaction position
// @Description Locate a pending transaction in the projection and report its effective fee rate
// @Tags projector
// @Produce json
// @Security Bearer
// @Param txid path string true "Transaction id"
// @Success 200 {object} wire.TxPositionResp "Successful response"
// @Failure 401 "Invalid API Key"
// @Router /position/{txid} [get]
func (s *Service) getTxPosition(c *gin.Context) {
	resp := &wire.TxPositionResp{
		BaseResp: wire.BaseResp{
			Code: 0,
			Msg:  "ok",
		},
		Data: s.model.GetTxPosition(c.Param("txid")),
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Fee-rate histogram
// @Description Pending transactions bucketed by effective fee rate
// @Tags projector
// @Produce json
// @Security Bearer
// @Success 200 {object} wire.HistogramResp "Successful response"
// @Failure 401 "Invalid API Key"
// @Router /histogram [get]
func (s *Service) getHistogram(c *gin.Context) {
	resp := &wire.HistogramResp{
		BaseResp: wire.BaseResp{
			Code: 0,
			Msg:  "ok",
		},
		Data: s.model.GetHistogram(),
	}
	c.JSON(http.StatusOK, resp)
}
