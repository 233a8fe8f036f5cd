package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
)

// StatisticsService 管理员看板统计
type StatisticsService interface {
	// Stages 按阶段统计学生当前状态，以每名学生的最新提交与最新审阅为准
	Stages(ctx context.Context, actor workflow.Actor) (*dto.StatisticsResponse, error)
}

type statisticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatisticsService 创建 StatisticsService 实例
func NewStatisticsService(repo *repository.Repository, logger *zap.Logger) StatisticsService {
	return &statisticsService{repo: repo, logger: logger}
}

func (s *statisticsService) Stages(ctx context.Context, actor workflow.Actor) (*dto.StatisticsResponse, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	students, err := s.repo.User.ListByRole(ctx, string(workflow.RoleStudent))
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	ids := make([]string, 0, len(students))
	for _, u := range students {
		ids = append(ids, u.UserID)
	}

	sets, err := loadRecordSets(ctx, s.repo, ids)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.Error(err))
		return nil, err
	}

	selected, err := s.repo.Topic.CountSelections(ctx)
	if err != nil {
		s.logger.Error("统计选题数失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.StatisticsResponse{
		Students:       len(students),
		SelectedTopics: selected,
		Stages:         make([]dto.StageStatisticsResponse, 0, len(workflow.Stages)),
	}
	for _, stage := range workflow.Stages {
		stat := dto.StageStatisticsResponse{Stage: string(stage), Label: stage.Label()}
		for _, id := range ids {
			rs := sets[id]
			sub, rev := rs.Current(stage)
			if sub == nil {
				continue
			}
			stat.Submitted++
			if rev == nil {
				continue
			}
			stat.Reviewed++
			switch rev.Result {
			case workflow.ResultPass:
				stat.Passed++
			case workflow.ResultFail:
				stat.Failed++
			case workflow.ResultRevise:
				stat.Revise++
			}
		}
		resp.Stages = append(resp.Stages, stat)
	}
	return resp, nil
}
