package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// TopicHandler 课题与选题 HTTP 处理器
type TopicHandler struct {
	topicSvc service.TopicService
	logger   *zap.Logger
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService, logger *zap.Logger) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc, logger: logger}
}

// List 课题列表
// GET /api/v1/topics?teacher_id=&available=&page=&page_size=
func (h *TopicHandler) List(c *gin.Context) {
	var req dto.TopicListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.topicSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListMine 教师发布的课题
// GET /api/v1/topics/mine
func (h *TopicHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.topicSvc.ListMine(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// Create 发布课题
// POST /api/v1/topics
func (h *TopicHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.topicSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Get 课题详情
// GET /api/v1/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.topicSvc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Update 更新课题（所属教师或管理员），需携带版本号
// PUT /api/v1/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.topicSvc.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除课题，已有学生选择时拒绝
// DELETE /api/v1/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.topicSvc.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}

// Selections 选择该课题的学生名单
// GET /api/v1/topics/:id/selections
func (h *TopicHandler) Selections(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	list, err := h.topicSvc.ListSelections(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// MySelection 学生当前选题，未选题时 data 为 null
// GET /api/v1/topics/selection/me
func (h *TopicHandler) MySelection(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.topicSvc.MySelection(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Select 选择课题
// POST /api/v1/topics/:id/selection
func (h *TopicHandler) Select(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.topicSvc.Select(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Deselect 退选课题
// DELETE /api/v1/topics/:id/selection
func (h *TopicHandler) Deselect(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.topicSvc.Deselect(c.Request.Context(), actor, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, nil)
}
