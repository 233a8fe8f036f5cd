package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// ProgressHandler 进度查询 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
	logger      *zap.Logger
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc, logger: logger}
}

// Me 学生本人进度
// GET /api/v1/progress/me
func (h *ProgressHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	h.respond(c, actor.UserID)
}

// Student 指定学生进度
// GET /api/v1/progress/students/:id
func (h *ProgressHandler) Student(c *gin.Context) {
	h.respond(c, c.Param("id"))
}

func (h *ProgressHandler) respond(c *gin.Context, studentID string) {
	result, err := h.progressSvc.GetProgress(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Gate 查询能否在某阶段提交及阻塞原因
// GET /api/v1/progress/gate?stage=
func (h *ProgressHandler) Gate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.GateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.progressSvc.Gate(c.Request.Context(), actor.UserID, workflow.Stage(req.Stage))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}
