package projection

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sat20-labs/projector/projector"
)

type Service struct {
	model *Model
	// staleAfter is how long a projection may go unrefreshed before
	// health reports stale.
	staleAfter time.Duration
}

func NewService(engine *projector.Engine, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = time.Minute
	}
	return &Service{
		model:      NewModel(engine),
		staleAfter: staleAfter,
	}
}

func (s *Service) InitRouter(r *gin.Engine, basePath string) {
	// 心跳
	r.GET(basePath+"/health", s.getHealth)
	// 投影的区块概览
	r.GET(basePath+"/projection", s.getProjection)
	// 单个投影区块的交易列表
	r.GET(basePath+"/projection/block/:index", s.getBlockDetail)
	// 查询交易在投影中的位置
	r.GET(basePath+"/position/:txid", s.getTxPosition)
	// 费率直方图
	r.GET(basePath+"/histogram", s.getHistogram)
}
