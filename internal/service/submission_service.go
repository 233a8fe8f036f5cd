package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// ErrStageNotOpen 前置阶段尚未全部审阅通过
var ErrStageNotOpen = pkgerrors.New(pkgerrors.KindConflict, 40920, "前置阶段尚未审阅通过，不能提交")

// SubmissionPayload 提交内容，Version 仅论文使用
type SubmissionPayload struct {
	Title    string
	FilePath string
	Version  string
}

// SubmissionService 开题报告 / 中期检查 / 论文提交业务接口
type SubmissionService interface {
	// Submit 学生在 stage 提交新版本，受阶段门控约束；选题阶段走选题流程
	Submit(ctx context.Context, actor workflow.Actor, stage workflow.Stage, payload SubmissionPayload) (*dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor workflow.Actor, kind SubmissionKind) ([]dto.SubmissionResponse, error)
	List(ctx context.Context, actor workflow.Actor, kind SubmissionKind, req *dto.SubmissionListRequest) ([]dto.SubmissionResponse, int64, error)
}

type submissionService struct {
	repo    *repository.Repository
	windows StageWindowService
	cache   Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewSubmissionService 创建 SubmissionService 实例
// windows 为 nil 时不检查阶段时间窗口，cache 可为 nil
func NewSubmissionService(repo *repository.Repository, windows StageWindowService, cache Cache, logger *zap.Logger) SubmissionService {
	return &submissionService{
		repo:    repo,
		windows: windows,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor workflow.Actor, stage workflow.Stage, payload SubmissionPayload) (*dto.SubmissionResponse, error) {
	if actor.Role != workflow.RoleStudent {
		return nil, ErrNotStudentRole
	}
	kind, ok := KindForStage(stage)
	if !ok {
		return nil, ErrInvalidStage
	}

	// 1. 门控：前置阶段须全部通过
	records, err := loadRecordSet(ctx, s.repo, actor.UserID)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.String("student_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	if blocker, status, blocked := records.Blocker(stage); blocked {
		s.logger.Debug("提交被门控拒绝",
			zap.String("student_id", actor.UserID),
			zap.String("stage", string(stage)),
			zap.String("blocked_by", string(blocker)),
			zap.String("blocker_status", string(status)),
		)
		return nil, ErrStageNotOpen
	}

	// 2. 时间窗口
	now := s.now()
	if s.windows != nil {
		if err := s.windows.CheckOpen(ctx, stage, now); err != nil {
			return nil, err
		}
	}

	// 3. 写入
	title := strings.TrimSpace(payload.Title)
	var resp dto.SubmissionResponse
	switch kind {
	case KindProposal:
		p := &model.Proposal{StudentID: actor.UserID, Title: title, FilePath: payload.FilePath, SubmittedAt: now}
		if err := s.repo.Proposal.Create(ctx, p); err != nil {
			s.logger.Error("保存开题报告失败", zap.Error(err))
			return nil, err
		}
		resp = proposalDTO(p)
	case KindMidterm:
		m := &model.MidtermCheck{StudentID: actor.UserID, Title: title, FilePath: payload.FilePath, SubmittedAt: now}
		if err := s.repo.Midterm.Create(ctx, m); err != nil {
			s.logger.Error("保存中期检查失败", zap.Error(err))
			return nil, err
		}
		resp = midtermDTO(m)
	case KindThesis:
		thesisStage, _ := stage.ThesisStage()
		version := strings.TrimSpace(payload.Version)
		if version == "" {
			version = "draft"
		}
		t := &model.Thesis{
			StudentID:   actor.UserID,
			Title:       title,
			FilePath:    payload.FilePath,
			Version:     version,
			Stage:       thesisStage,
			SubmittedAt: now,
		}
		if err := s.repo.Thesis.Create(ctx, t); err != nil {
			s.logger.Error("保存论文失败", zap.Error(err))
			return nil, err
		}
		resp = thesisDTO(t)
	}

	invalidateProgress(ctx, s.cache, s.logger, actor.UserID)
	s.logger.Info("学生提交成功",
		zap.String("student_id", actor.UserID),
		zap.String("stage", string(stage)),
		zap.Uint64("submission_id", resp.ID),
	)
	return &resp, nil
}

func (s *submissionService) ListMine(ctx context.Context, actor workflow.Actor, kind SubmissionKind) ([]dto.SubmissionResponse, error) {
	if actor.Role != workflow.RoleStudent {
		return nil, ErrNotStudentRole
	}
	list, _, err := s.list(ctx, kind, repository.SubmissionFilter{StudentIDs: []string{actor.UserID}})
	return list, err
}

func (s *submissionService) List(ctx context.Context, actor workflow.Actor, kind SubmissionKind, req *dto.SubmissionListRequest) ([]dto.SubmissionResponse, int64, error) {
	if !actor.Role.CanReview() {
		return nil, 0, ErrNotReviewerRole
	}
	filter := repository.SubmissionFilter{
		Keyword:     req.Keyword,
		ThesisStage: req.Stage,
		Offset:      req.GetOffset(),
		Limit:       req.GetPageSize(),
	}
	return s.list(ctx, kind, filter)
}

func (s *submissionService) list(ctx context.Context, kind SubmissionKind, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, int64, error) {
	var (
		result []dto.SubmissionResponse
		total  int64
		err    error
	)
	switch kind {
	case KindProposal:
		var list []model.Proposal
		if list, total, err = s.repo.Proposal.List(ctx, filter); err == nil {
			result = make([]dto.SubmissionResponse, 0, len(list))
			for i := range list {
				result = append(result, proposalDTO(&list[i]))
			}
		}
	case KindMidterm:
		var list []model.MidtermCheck
		if list, total, err = s.repo.Midterm.List(ctx, filter); err == nil {
			result = make([]dto.SubmissionResponse, 0, len(list))
			for i := range list {
				result = append(result, midtermDTO(&list[i]))
			}
		}
	case KindThesis:
		var list []model.Thesis
		if list, total, err = s.repo.Thesis.List(ctx, filter); err == nil {
			result = make([]dto.SubmissionResponse, 0, len(list))
			for i := range list {
				result = append(result, thesisDTO(&list[i]))
			}
		}
	default:
		return nil, 0, ErrInvalidStage
	}
	if err != nil {
		s.logger.Error("查询提交记录失败", zap.String("kind", string(kind)), zap.Error(err))
		return nil, 0, err
	}
	return result, total, nil
}
