package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	"github.com/23050617sfy/SE-GPMS/pkg/redis"
)

const progressKeyPrefix = "progress:"

// ProgressService 进度查询业务接口，只读
type ProgressService interface {
	// GetProgress 返回按阶段顺序排列的 6 个条目；无任何记录的学生全部为 not_started
	GetProgress(ctx context.Context, studentID string) (*dto.ProgressResponse, error)
	CanSubmit(ctx context.Context, studentID string, stage workflow.Stage) (bool, error)
	Gate(ctx context.Context, studentID string, stage workflow.Stage) (*dto.GateResponse, error)
	LatestResult(ctx context.Context, kind SubmissionKind, targetID uint64) (workflow.Result, error)
}

type progressService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例，cache 可为 nil
func NewProgressService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *progressService) GetProgress(ctx context.Context, studentID string) (*dto.ProgressResponse, error) {
	key := progressKeyPrefix + studentID
	if s.cache != nil {
		var cached dto.ProgressResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			return &cached, nil
		case !errors.Is(err, redis.ErrCacheMiss):
			s.logger.Warn("读取进度缓存失败", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	records, err := loadRecordSet(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := toProgressResponse(records.Progress())
	resp.Student = userBrief(student)

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
			s.logger.Warn("写入进度缓存失败", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return &resp, nil
}

func (s *progressService) CanSubmit(ctx context.Context, studentID string, stage workflow.Stage) (bool, error) {
	if !stage.Valid() {
		return false, nil
	}
	records, err := loadRecordSet(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.String("student_id", studentID), zap.Error(err))
		return false, err
	}
	return records.CanSubmit(stage), nil
}

func (s *progressService) Gate(ctx context.Context, studentID string, stage workflow.Stage) (*dto.GateResponse, error) {
	if !stage.Valid() {
		return nil, ErrInvalidStage
	}
	records, err := loadRecordSet(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := &dto.GateResponse{Stage: string(stage), CanSubmit: true}
	if blocker, status, blocked := records.Blocker(stage); blocked {
		resp.CanSubmit = false
		resp.BlockedBy = string(blocker)
		resp.BlockerStatus = string(status)
	}
	return resp, nil
}

func (s *progressService) LatestResult(ctx context.Context, kind SubmissionKind, targetID uint64) (workflow.Result, error) {
	var (
		stage   workflow.Stage
		reviews []workflow.Review
		err     error
	)
	switch kind {
	case KindProposal:
		p, e := s.repo.Proposal.GetByID(ctx, targetID)
		if err = e; err == nil {
			_, reviews = proposalRecords(p)
			stage = workflow.StageProposal
		}
	case KindMidterm:
		m, e := s.repo.Midterm.GetByID(ctx, targetID)
		if err = e; err == nil {
			_, reviews = midtermRecords(m)
			stage = workflow.StageMidterm
		}
	case KindThesis:
		t, e := s.repo.Thesis.GetByID(ctx, targetID)
		if err = e; err == nil {
			var sub workflow.Submission
			sub, reviews, _ = thesisRecords(t)
			stage = sub.Stage
		}
	default:
		return workflow.ResultNone, ErrInvalidStage
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workflow.ResultNone, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交记录失败", zap.Uint64("target_id", targetID), zap.Error(err))
		return workflow.ResultNone, err
	}
	return workflow.LatestResult(reviews, stage, targetID), nil
}

// invalidateProgress 学生记录变化后删除其进度缓存
func invalidateProgress(ctx context.Context, cache Cache, logger *zap.Logger, studentID string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, progressKeyPrefix+studentID); err != nil {
		logger.Warn("删除进度缓存失败", zap.String("student_id", studentID), zap.Error(err))
	}
}

func toProgressResponse(report workflow.Report) dto.ProgressResponse {
	resp := dto.ProgressResponse{
		Stages:       make([]dto.StageProgressResponse, 0, len(report.Stages)),
		Completed:    report.Completed,
		Total:        len(workflow.Stages),
		CurrentStage: string(report.CurrentStage),
		Finished:     report.Finished,
	}
	for _, entry := range report.Stages {
		item := dto.StageProgressResponse{
			Stage:       string(entry.Stage),
			Label:       entry.Stage.Label(),
			StageStatus: string(entry.Status),
			CanSubmit:   entry.CanSubmit,
		}
		if entry.Submission != nil {
			item.HasSubmission = true
			item.SubmissionID = entry.Submission.ID
			item.Title = entry.Submission.Title
			item.SubmittedAt = formatTime(entry.Submission.SubmittedAt)
		}
		if entry.Review != nil {
			r := reviewDTO(entry.Review)
			item.LatestReview = &r
		}
		resp.Stages = append(resp.Stages, item)
	}
	return resp
}
