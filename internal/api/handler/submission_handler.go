package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/service"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/response"
)

// SubmissionHandler 开题报告 / 中期检查 / 论文的提交与审阅
//
// 三类提交物路由结构相同，按 kind 生成处理函数。
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
	reviewSvc     service.ReviewService
	logger        *zap.Logger
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService, reviewSvc service.ReviewService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc, reviewSvc: reviewSvc, logger: logger}
}

// SubmitProposal 提交开题报告
// POST /api/v1/proposals
func (h *SubmissionHandler) SubmitProposal(c *gin.Context) {
	h.submitDocument(c, workflow.StageProposal)
}

// SubmitMidterm 提交中期检查
// POST /api/v1/midterms
func (h *SubmissionHandler) SubmitMidterm(c *gin.Context) {
	h.submitDocument(c, workflow.StageMidterm)
}

func (h *SubmissionHandler) submitDocument(c *gin.Context, stage workflow.Stage) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	payload := service.SubmissionPayload{Title: req.Title, FilePath: req.FilePath}
	h.submit(c, actor, stage, payload)
}

// SubmitThesis 提交论文，stage 为 first_review / second_review / final_submission
// POST /api/v1/theses
func (h *SubmissionHandler) SubmitThesis(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ThesisSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	stage, ok := workflow.StageFromThesisStage(req.Stage)
	if !ok {
		writeError(c, h.logger, service.ErrInvalidStage)
		return
	}
	payload := service.SubmissionPayload{Title: req.Title, FilePath: req.FilePath, Version: req.Version}
	h.submit(c, actor, stage, payload)
}

func (h *SubmissionHandler) submit(c *gin.Context, actor workflow.Actor, stage workflow.Stage, payload service.SubmissionPayload) {
	result, err := h.submissionSvc.Submit(c.Request.Context(), actor, stage, payload)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// ListMine 学生本人的提交历史
// GET /api/v1/{proposals|midterms|theses}/mine
func (h *SubmissionHandler) ListMine(kind service.SubmissionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MustGetActor(c)
		if !ok {
			return
		}

		list, err := h.submissionSvc.ListMine(c.Request.Context(), actor, kind)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		response.OK(c, list)
	}
}

// List 教师/管理员检索提交，q 匹配学生姓名或学号
// GET /api/v1/{proposals|midterms|theses}?q=&stage=&page=&page_size=
func (h *SubmissionHandler) List(kind service.SubmissionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MustGetActor(c)
		if !ok {
			return
		}
		var req dto.SubmissionListRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			bindError(c, err)
			return
		}

		list, total, err := h.submissionSvc.List(c.Request.Context(), actor, kind, &req)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
	}
}

// Review 追加审阅
// POST /api/v1/{proposals|midterms|theses}/:id/reviews
func (h *SubmissionHandler) Review(kind service.SubmissionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := MustGetActor(c)
		if !ok {
			return
		}
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		var req dto.ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := h.reviewSvc.Review(c.Request.Context(), actor, kind, id, &req)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		response.Created(c, result)
	}
}
