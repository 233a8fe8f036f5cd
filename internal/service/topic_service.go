package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// ── 课题模块业务错误 ──

var (
	ErrTopicNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 40410, "课题不存在")
	ErrNoSuchSelection     = pkgerrors.New(pkgerrors.KindNotFound, 40411, "未选择该课题")
	ErrAlreadySelected     = pkgerrors.New(pkgerrors.KindConflict, 40910, "已选择课题，请先退选")
	ErrCapacityExceeded    = pkgerrors.New(pkgerrors.KindConflict, 40911, "课题名额已满")
	ErrTopicInUse          = pkgerrors.New(pkgerrors.KindConflict, 40912, "课题已有学生选择，无法删除")
	ErrTopicVersion        = pkgerrors.New(pkgerrors.KindConflict, 40913, pkgerrors.ErrOptimisticLock.Error())
	ErrTopicForbidden      = pkgerrors.New(pkgerrors.KindPermission, 40310, "仅课题所属教师或管理员可操作")
	ErrNotTeacherRole      = pkgerrors.New(pkgerrors.KindPermission, 40311, "仅教师可发布课题")
	ErrCapacityBelowFilled = pkgerrors.New(pkgerrors.KindValidation, 40010, "人数上限不能低于已选人数")
)

// TopicService 课题与选题业务接口
//
// Select / Deselect / Delete 的计数与约束由仓储层在单个事务内保证，
// 本层负责角色校验、错误翻译与缓存失效。
type TopicService interface {
	Create(ctx context.Context, actor workflow.Actor, req *dto.CreateTopicRequest) (*dto.TopicResponse, error)
	Get(ctx context.Context, id uint64) (*dto.TopicResponse, error)
	List(ctx context.Context, req *dto.TopicListRequest) ([]dto.TopicResponse, int64, error)
	ListMine(ctx context.Context, actor workflow.Actor) ([]dto.TopicResponse, error)
	Update(ctx context.Context, actor workflow.Actor, id uint64, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	Delete(ctx context.Context, actor workflow.Actor, id uint64) error

	Select(ctx context.Context, actor workflow.Actor, topicID uint64) (*dto.SelectionResponse, error)
	Deselect(ctx context.Context, actor workflow.Actor, topicID uint64) error
	MySelection(ctx context.Context, actor workflow.Actor) (*dto.SelectionResponse, error)
	ListSelections(ctx context.Context, actor workflow.Actor, topicID uint64) ([]dto.SelectionResponse, error)
}

type topicService struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

// NewTopicService 创建 TopicService 实例，cache 可为 nil
func NewTopicService(repo *repository.Repository, cache Cache, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, cache: cache, logger: logger}
}

func (s *topicService) Create(ctx context.Context, actor workflow.Actor, req *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	if actor.Role != workflow.RoleTeacher {
		return nil, ErrNotTeacherRole
	}

	topic := &model.Topic{
		TeacherID:    actor.UserID,
		Title:        strings.TrimSpace(req.Title),
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		MaxStudents:  req.MaxStudents,
		Description:  req.Description,
		Requirements: req.Requirements,
	}
	if topic.Category == "" {
		topic.Category = model.TopicCategories[0]
	}
	if topic.Difficulty == "" {
		topic.Difficulty = "中等"
	}
	if topic.MaxStudents == 0 {
		topic.MaxStudents = 1
	}

	if err := s.repo.Topic.Create(ctx, topic); err != nil {
		s.logger.Error("创建课题失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课题已发布", zap.Uint64("topic_id", topic.TopicID), zap.String("teacher_id", actor.UserID))
	return s.Get(ctx, topic.TopicID)
}

func (s *topicService) Get(ctx context.Context, id uint64) (*dto.TopicResponse, error) {
	topic, err := s.getTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTopicResponse(topic)
	return &resp, nil
}

func (s *topicService) List(ctx context.Context, req *dto.TopicListRequest) ([]dto.TopicResponse, int64, error) {
	topics, total, err := s.repo.Topic.List(ctx, repository.TopicFilter{
		TeacherID:     req.TeacherID,
		AvailableOnly: req.Available,
		Offset:        req.GetOffset(),
		Limit:         req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询课题列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toTopicResponses(topics), total, nil
}

func (s *topicService) ListMine(ctx context.Context, actor workflow.Actor) ([]dto.TopicResponse, error) {
	if actor.Role != workflow.RoleTeacher {
		return nil, ErrNotTeacherRole
	}
	topics, _, err := s.repo.Topic.List(ctx, repository.TopicFilter{TeacherID: actor.UserID})
	if err != nil {
		s.logger.Error("查询我的课题失败", zap.Error(err))
		return nil, err
	}
	return toTopicResponses(topics), nil
}

func (s *topicService) Update(ctx context.Context, actor workflow.Actor, id uint64, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	topic, err := s.getTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, topic) {
		return nil, ErrTopicForbidden
	}

	if req.Title != nil {
		topic.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		topic.Category = *req.Category
	}
	if req.Difficulty != nil {
		topic.Difficulty = *req.Difficulty
	}
	if req.MaxStudents != nil {
		if *req.MaxStudents < topic.SelectedStudents {
			return nil, ErrCapacityBelowFilled
		}
		topic.MaxStudents = *req.MaxStudents
	}
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.Requirements != nil {
		topic.Requirements = *req.Requirements
	}
	topic.Version = req.Version

	if err := s.repo.Topic.Update(ctx, topic); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, ErrTopicVersion
		case errors.Is(err, repository.ErrBelowOccupancy):
			// 读取课题后又有学生选题
			return nil, ErrCapacityBelowFilled
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTopicNotFound
		}
		s.logger.Error("更新课题失败", zap.Uint64("topic_id", id), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *topicService) Delete(ctx context.Context, actor workflow.Actor, id uint64) error {
	topic, err := s.getTopic(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, topic) {
		return ErrTopicForbidden
	}

	if err := s.repo.Topic.DeleteIfEmpty(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTopicOccupied):
			return ErrTopicInUse
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTopicNotFound
		}
		s.logger.Error("删除课题失败", zap.Uint64("topic_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("课题已删除", zap.Uint64("topic_id", id), zap.String("operator", actor.UserID))
	return nil
}

// ── 选题 ──

func (s *topicService) Select(ctx context.Context, actor workflow.Actor, topicID uint64) (*dto.SelectionResponse, error) {
	if actor.Role != workflow.RoleStudent {
		return nil, ErrNotStudentRole
	}

	selection, err := s.repo.Topic.Select(ctx, topicID, actor.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelectionExists):
			return nil, ErrAlreadySelected
		case errors.Is(err, repository.ErrTopicFull):
			return nil, ErrCapacityExceeded
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTopicNotFound
		}
		s.logger.Error("选题失败", zap.Uint64("topic_id", topicID), zap.Error(err))
		return nil, err
	}

	invalidateProgress(ctx, s.cache, s.logger, actor.UserID)
	s.logger.Info("学生选题成功",
		zap.String("student_id", actor.UserID),
		zap.Uint64("topic_id", topicID),
	)

	resp := dto.SelectionResponse{
		ID:         selection.SelectionID,
		TopicID:    selection.TopicID,
		SelectedAt: formatTime(selection.SelectedAt),
	}
	if topic, err := s.repo.Topic.GetByID(ctx, topicID); err == nil {
		t := toTopicResponse(topic)
		resp.Topic = &t
	}
	return &resp, nil
}

func (s *topicService) Deselect(ctx context.Context, actor workflow.Actor, topicID uint64) error {
	if actor.Role != workflow.RoleStudent {
		return ErrNotStudentRole
	}

	if err := s.repo.Topic.Deselect(ctx, topicID, actor.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSelectionMissing):
			return ErrNoSuchSelection
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTopicNotFound
		}
		s.logger.Error("退选失败", zap.Uint64("topic_id", topicID), zap.Error(err))
		return err
	}

	invalidateProgress(ctx, s.cache, s.logger, actor.UserID)
	s.logger.Info("学生退选成功",
		zap.String("student_id", actor.UserID),
		zap.Uint64("topic_id", topicID),
	)
	return nil
}

// MySelection 学生当前选题，未选题时返回 nil
func (s *topicService) MySelection(ctx context.Context, actor workflow.Actor) (*dto.SelectionResponse, error) {
	if actor.Role != workflow.RoleStudent {
		return nil, ErrNotStudentRole
	}
	sel, err := s.repo.Topic.GetSelectionByStudent(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询选题失败", zap.Error(err))
		return nil, err
	}
	resp := toSelectionResponse(sel)
	return &resp, nil
}

func (s *topicService) ListSelections(ctx context.Context, actor workflow.Actor, topicID uint64) ([]dto.SelectionResponse, error) {
	topic, err := s.getTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, topic) {
		return nil, ErrTopicForbidden
	}

	selections, err := s.repo.Topic.ListSelections(ctx, topicID)
	if err != nil {
		s.logger.Error("查询选题名单失败", zap.Uint64("topic_id", topicID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.SelectionResponse, 0, len(selections))
	for i := range selections {
		result = append(result, toSelectionResponse(&selections[i]))
	}
	return result, nil
}

func (s *topicService) getTopic(ctx context.Context, id uint64) (*model.Topic, error) {
	topic, err := s.repo.Topic.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询课题失败", zap.Uint64("topic_id", id), zap.Error(err))
		return nil, err
	}
	return topic, nil
}

// canManage 课题所属教师或管理员
func canManage(actor workflow.Actor, topic *model.Topic) bool {
	return actor.Role == workflow.RoleAdmin ||
		(actor.Role == workflow.RoleTeacher && topic.TeacherID == actor.UserID)
}

func toTopicResponse(t *model.Topic) dto.TopicResponse {
	return dto.TopicResponse{
		ID:               t.TopicID,
		Title:            t.Title,
		Category:         t.Category,
		Difficulty:       t.Difficulty,
		MaxStudents:      t.MaxStudents,
		SelectedStudents: t.SelectedStudents,
		Available:        t.Available(),
		Description:      t.Description,
		Requirements:     t.Requirements,
		Teacher:          userBrief(t.Teacher),
		Version:          t.Version,
		CreatedAt:        formatTime(t.CreatedAt),
		UpdatedAt:        formatTime(t.UpdatedAt),
	}
}

func toTopicResponses(topics []model.Topic) []dto.TopicResponse {
	result := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		result = append(result, toTopicResponse(&topics[i]))
	}
	return result
}

func toSelectionResponse(sel *model.TopicSelection) dto.SelectionResponse {
	resp := dto.SelectionResponse{
		ID:         sel.SelectionID,
		TopicID:    sel.TopicID,
		Student:    userBrief(sel.Student),
		SelectedAt: formatTime(sel.SelectedAt),
	}
	if sel.Topic != nil {
		t := toTopicResponse(sel.Topic)
		resp.Topic = &t
	}
	return resp
}
