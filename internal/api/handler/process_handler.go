package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// ProcessHandler 流程阶段时间窗口
type ProcessHandler struct {
	windowSvc service.StageWindowService
	logger    *zap.Logger
}

// NewProcessHandler 创建 ProcessHandler
func NewProcessHandler(windowSvc service.StageWindowService, logger *zap.Logger) *ProcessHandler {
	return &ProcessHandler{windowSvc: windowSvc, logger: logger}
}

// ListWindows 全部阶段的时间窗口
// GET /api/v1/process/windows
func (h *ProcessHandler) ListWindows(c *gin.Context) {
	list, err := h.windowSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// UpdateWindow 设置阶段时间窗口
// PUT /api/v1/process/windows/:stage
func (h *ProcessHandler) UpdateWindow(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateStageWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.windowSvc.Update(c.Request.Context(), actor, workflow.Stage(c.Param("stage")), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Calendar 时间窗口日历订阅
// GET /api/v1/process/calendar.ics
func (h *ProcessHandler) Calendar(c *gin.Context) {
	ics, err := h.windowSvc.Calendar(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="se-gpms.ics"`)
	// 日历客户端定时轮询
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
