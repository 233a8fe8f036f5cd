package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// StatisticsHandler 管理员看板
type StatisticsHandler struct {
	statisticsSvc service.StatisticsService
	logger        *zap.Logger
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statisticsSvc service.StatisticsService, logger *zap.Logger) *StatisticsHandler {
	return &StatisticsHandler{statisticsSvc: statisticsSvc, logger: logger}
}

// Stages 各阶段提交与审阅统计
// GET /api/v1/statistics/stages
func (h *StatisticsHandler) Stages(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.statisticsSvc.Stages(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}
