package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/config"
	"github.com/23050617sfy/SE-GPMS/internal/dto"
	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// ── 阶段时间窗口业务错误 ──

var (
	ErrInvalidWindow     = pkgerrors.New(pkgerrors.KindValidation, 40040, "开始日期不能晚于结束日期")
	ErrStageWindowClosed = pkgerrors.New(pkgerrors.KindConflict, 40921, "当前不在该阶段的开放时间内")
)

const dateLayout = "2006-01-02"

// StageWindowService 阶段时间窗口业务接口
//
// 窗口默认只作展示；workflow.enforce_windows 开启后，
// CheckOpen 对窗口之外的提交返回 ErrStageWindowClosed。
type StageWindowService interface {
	List(ctx context.Context) ([]dto.StageWindowResponse, error)
	Update(ctx context.Context, actor workflow.Actor, stage workflow.Stage, req *dto.UpdateStageWindowRequest) (*dto.StageWindowResponse, error)
	CheckOpen(ctx context.Context, stage workflow.Stage, now time.Time) error
	// Calendar 导出全部已配置窗口为 iCalendar (RFC 5545)
	Calendar(ctx context.Context) (string, error)
}

type stageWindowService struct {
	repo    *repository.Repository
	enforce bool
	loc     *time.Location
	logger  *zap.Logger
}

// NewStageWindowService 创建 StageWindowService 实例
func NewStageWindowService(repo *repository.Repository, cfg *config.WorkflowConfig, logger *zap.Logger) StageWindowService {
	return &stageWindowService{
		repo:    repo,
		enforce: cfg.EnforceWindows,
		loc:     cfg.Location(),
		logger:  logger,
	}
}

func (s *stageWindowService) List(ctx context.Context) ([]dto.StageWindowResponse, error) {
	windows, err := s.byStage(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now().In(s.loc).Format(dateLayout)
	result := make([]dto.StageWindowResponse, 0, len(workflow.Stages))
	for _, stage := range workflow.Stages {
		result = append(result, toStageWindowResponse(stage, windows[stage], today))
	}
	return result, nil
}

func (s *stageWindowService) Update(ctx context.Context, actor workflow.Actor, stage workflow.Stage, req *dto.UpdateStageWindowRequest) (*dto.StageWindowResponse, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	if !stage.Valid() {
		return nil, ErrInvalidStage
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidWindow
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidWindow
	}
	if start != nil && end != nil && time.Time(*start).After(time.Time(*end)) {
		return nil, ErrInvalidWindow
	}

	updatedBy := actor.UserID
	w := &model.StageWindow{
		Stage:     string(stage),
		StartDate: start,
		EndDate:   end,
		Note:      req.Note,
		UpdatedBy: &updatedBy,
	}
	if err := s.repo.StageWindow.Upsert(ctx, w); err != nil {
		s.logger.Error("保存阶段时间窗口失败", zap.String("stage", string(stage)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("阶段时间窗口已更新",
		zap.String("stage", string(stage)),
		zap.String("operator", actor.UserID),
	)
	resp := toStageWindowResponse(stage, w, time.Now().In(s.loc).Format(dateLayout))
	return &resp, nil
}

func (s *stageWindowService) CheckOpen(ctx context.Context, stage workflow.Stage, now time.Time) error {
	if !s.enforce {
		return nil
	}
	w, err := s.repo.StageWindow.Get(ctx, string(stage))
	if err != nil {
		// 未配置窗口视为不限
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询阶段时间窗口失败", zap.String("stage", string(stage)), zap.Error(err))
		return err
	}
	if !windowOpen(w, now.In(s.loc).Format(dateLayout)) {
		return ErrStageWindowClosed
	}
	return nil
}

func (s *stageWindowService) Calendar(ctx context.Context) (string, error) {
	windows, err := s.byStage(ctx)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendarFor("SE-GPMS")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("毕业设计流程安排")
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now()
	for _, stage := range workflow.Stages {
		w := windows[stage]
		if w == nil || (w.StartDate == nil && w.EndDate == nil) {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("stage-%s@se-gpms", stage))
		event.SetDtStampTime(stamp)
		event.SetDescription(w.Note)

		switch {
		case w.StartDate != nil && w.EndDate != nil:
			event.SetSummary(stage.Label())
			event.SetAllDayStartAt(time.Time(*w.StartDate))
			// DTEND 为开区间
			event.SetAllDayEndAt(time.Time(*w.EndDate).AddDate(0, 0, 1))
		case w.StartDate != nil:
			event.SetSummary(stage.Label() + "开始")
			event.SetAllDayStartAt(time.Time(*w.StartDate))
		default:
			event.SetSummary(stage.Label() + "截止")
			event.SetAllDayStartAt(time.Time(*w.EndDate))
		}
	}
	return cal.Serialize(), nil
}

func (s *stageWindowService) byStage(ctx context.Context) (map[workflow.Stage]*model.StageWindow, error) {
	windows, err := s.repo.StageWindow.List(ctx)
	if err != nil {
		s.logger.Error("查询阶段时间窗口失败", zap.Error(err))
		return nil, err
	}
	m := make(map[workflow.Stage]*model.StageWindow, len(windows))
	for i := range windows {
		m[workflow.Stage(windows[i].Stage)] = &windows[i]
	}
	return m, nil
}

// parseDate 日期按 UTC 零点保存，只比较年月日
func parseDate(s *string) (*datatypes.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

func formatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(dateLayout)
}

// windowOpen 闭区间比较，today 为 YYYY-MM-DD
func windowOpen(w *model.StageWindow, today string) bool {
	if w == nil {
		return true
	}
	if start := formatDate(w.StartDate); start != "" && today < start {
		return false
	}
	if end := formatDate(w.EndDate); end != "" && today > end {
		return false
	}
	return true
}

func toStageWindowResponse(stage workflow.Stage, w *model.StageWindow, today string) dto.StageWindowResponse {
	resp := dto.StageWindowResponse{
		Stage: string(stage),
		Label: stage.Label(),
		Open:  windowOpen(w, today),
	}
	if w != nil {
		resp.StartDate = formatDate(w.StartDate)
		resp.EndDate = formatDate(w.EndDate)
		resp.Note = w.Note
	}
	return resp
}
