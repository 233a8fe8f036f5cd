package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// ── 审阅模块业务错误 ──

var (
	ErrInvalidScore  = pkgerrors.New(pkgerrors.KindValidation, 40021, "分数必须在 0 到 100 之间")
	ErrInvalidResult = pkgerrors.New(pkgerrors.KindValidation, 40022, "审阅结论必须是 pass、fail 或 revise")
)

// ReviewService 审阅业务接口
//
// 审阅只追加不修改；同一提交可多次审阅，以最新一条为准。
type ReviewService interface {
	// Review 对 kind 类型的提交 targetID 追加一条审阅
	// 论文审阅的 stage 必须与论文记录的 stage 一致，为空时取论文自身阶段
	Review(ctx context.Context, actor workflow.Actor, kind SubmissionKind, targetID uint64, req *dto.ReviewRequest) (*dto.ReviewResponse, error)
}

type reviewService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewReviewService 创建 ReviewService 实例，cache 可为 nil
func NewReviewService(repo *repository.Repository, cache Cache, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (s *reviewService) Review(ctx context.Context, actor workflow.Actor, kind SubmissionKind, targetID uint64, req *dto.ReviewRequest) (*dto.ReviewResponse, error) {
	if !actor.Role.CanReview() {
		return nil, ErrNotReviewerRole
	}
	result := workflow.Result(req.Result)
	if !result.Valid() {
		return nil, ErrInvalidResult
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return nil, ErrInvalidScore
	}

	reviewerID := actor.UserID
	now := s.now()

	var (
		studentID string
		stage     workflow.Stage
		review    workflow.Review
	)

	switch kind {
	case KindProposal:
		p, err := s.repo.Proposal.GetByID(ctx, targetID)
		if err != nil {
			return nil, s.targetErr(err, kind, targetID)
		}
		r := &model.ProposalReview{
			ProposalID: p.ProposalID,
			ReviewerID: &reviewerID,
			Score:      req.Score,
			Feedback:   req.Feedback,
			Result:     string(result),
			ReviewedAt: now,
		}
		if err := s.repo.Proposal.CreateReview(ctx, r); err != nil {
			s.logger.Error("保存开题审阅失败", zap.Error(err))
			return nil, err
		}
		studentID, stage = p.StudentID, workflow.StageProposal
		review = workflow.Review{ID: r.ReviewID, Stage: stage, TargetID: p.ProposalID, Score: r.Score, Feedback: r.Feedback, Result: result, ReviewedAt: r.ReviewedAt}

	case KindMidterm:
		m, err := s.repo.Midterm.GetByID(ctx, targetID)
		if err != nil {
			return nil, s.targetErr(err, kind, targetID)
		}
		r := &model.MidtermReview{
			MidtermID:  m.MidtermID,
			ReviewerID: &reviewerID,
			Score:      req.Score,
			Feedback:   req.Feedback,
			Result:     string(result),
			ReviewedAt: now,
		}
		if err := s.repo.Midterm.CreateReview(ctx, r); err != nil {
			s.logger.Error("保存中期审阅失败", zap.Error(err))
			return nil, err
		}
		studentID, stage = m.StudentID, workflow.StageMidterm
		review = workflow.Review{ID: r.ReviewID, Stage: stage, TargetID: m.MidtermID, Score: r.Score, Feedback: r.Feedback, Result: result, ReviewedAt: r.ReviewedAt}

	case KindThesis:
		t, err := s.repo.Thesis.GetByID(ctx, targetID)
		if err != nil {
			return nil, s.targetErr(err, kind, targetID)
		}
		thesisStage := req.Stage
		if thesisStage == "" {
			thesisStage = t.Stage
		}
		st, ok := workflow.StageFromThesisStage(thesisStage)
		if !ok || thesisStage != t.Stage {
			return nil, ErrInvalidStage
		}
		r := &model.ThesisReview{
			ThesisID:   t.ThesisID,
			ReviewerID: &reviewerID,
			Stage:      thesisStage,
			Score:      req.Score,
			Feedback:   req.Feedback,
			Result:     string(result),
			ReviewedAt: now,
		}
		if err := s.repo.Thesis.CreateReview(ctx, r); err != nil {
			s.logger.Error("保存论文审阅失败", zap.Error(err))
			return nil, err
		}
		studentID, stage = t.StudentID, st
		review = workflow.Review{ID: r.ReviewID, Stage: stage, TargetID: t.ThesisID, Score: r.Score, Feedback: r.Feedback, Result: result, ReviewedAt: r.ReviewedAt}

	default:
		return nil, ErrInvalidStage
	}

	review.ReviewerID = reviewerID
	if reviewer, err := s.repo.User.GetByID(ctx, reviewerID); err == nil {
		review.ReviewerName = reviewer.DisplayName()
	}

	invalidateProgress(ctx, s.cache, s.logger, studentID)
	s.logger.Info("审阅已提交",
		zap.String("reviewer_id", reviewerID),
		zap.String("student_id", studentID),
		zap.String("stage", string(stage)),
		zap.Uint64("target_id", targetID),
		zap.String("result", string(result)),
	)

	resp := reviewDTO(&review)
	if result == workflow.ResultPass {
		resp.Unlocks = s.unlocked(ctx, studentID, stage)
	}
	return &resp, nil
}

// unlocked 审阅通过后学生开放的下一阶段；读取失败只记录日志
func (s *reviewService) unlocked(ctx context.Context, studentID string, stage workflow.Stage) string {
	records, err := loadRecordSet(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Warn("读取学生记录失败", zap.String("student_id", studentID), zap.Error(err))
		return ""
	}
	if next, ok := records.Unlocks(stage); ok {
		return string(next)
	}
	return ""
}

func (s *reviewService) targetErr(err error, kind SubmissionKind, targetID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubmissionNotFound
	}
	s.logger.Error("查询提交记录失败",
		zap.String("kind", string(kind)),
		zap.Uint64("target_id", targetID),
		zap.Error(err),
	)
	return err
}
