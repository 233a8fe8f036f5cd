package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/model"
	"github.com/23050617sfy/SE-GPMS/internal/repository"
	"github.com/23050617sfy/SE-GPMS/internal/workflow"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoStudents = pkgerrors.New(pkgerrors.KindNotFound, 40450, "暂无可导出的学生")
	ErrExportTooLarge   = pkgerrors.New(pkgerrors.KindValidation, 40050, "导出行数超过上限")
)

var statusLabels = map[workflow.Status]string{
	workflow.StatusNotStarted: "未开始",
	workflow.StatusSubmitted:  "已提交",
	workflow.StatusPass:       "通过",
	workflow.StatusFail:       "不通过",
	workflow.StatusRevise:     "需修改",
}

// ExportService 导出业务接口
//
// 教师导出选择其课题的学生，管理员导出全部学生。
// 结果以 bytes.Buffer 返回，由 Handler 层设置下载响应头。
type ExportService interface {
	ExportProgress(ctx context.Context, actor workflow.Actor) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	maxRows int
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例，maxRows<=0 表示不限
func NewExportService(repo *repository.Repository, maxRows int, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, maxRows: maxRows, logger: logger}
}

// exportRow 一名学生的导出行
type exportRow struct {
	student *model.User
	topic   string
}

// ═══════════════════════════════════════════════════════════
// ExportProgress — 导出学生进度为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头：学号 | 姓名 | 课题 | 选题 … 论文终稿 | 已完成 | 当前阶段
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportProgress(ctx context.Context, actor workflow.Actor) (*bytes.Buffer, string, error) {
	// 1. 确定导出范围
	rows, err := s.scope(ctx, actor)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNoStudents
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return nil, "", ErrExportTooLarge
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.student.UserID)
	}

	// 2. 汇总进度
	sets, err := loadRecordSets(ctx, s.repo, ids)
	if err != nil {
		s.logger.Error("读取学生记录失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "学生进度"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	_ = f.DeleteSheet("Sheet1")

	headers := []interface{}{"学号", "姓名", "课题"}
	for _, stage := range workflow.Stages {
		headers = append(headers, stage.Label())
	}
	headers = append(headers, "已完成", "当前阶段")
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("写入表头失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)
	}

	for i, r := range rows {
		report := sets[r.student.UserID].Progress()
		line := []interface{}{r.student.StudentID, r.student.DisplayName(), r.topic}
		for _, entry := range report.Stages {
			line = append(line, statusLabels[entry.Status])
		}
		current := report.CurrentStage.Label()
		if report.Finished {
			current = "已完成"
		}
		line = append(line, fmt.Sprintf("%d/%d", report.Completed, len(workflow.Stages)), current)

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return nil, "", fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "C", 36)
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("学生进度_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("导出学生进度", zap.String("operator", actor.UserID), zap.Int("rows", len(rows)))
	return buf, filename, nil
}

// scope 教师：选择其课题的学生；管理员：全部学生（含未选题者）
func (s *exportService) scope(ctx context.Context, actor workflow.Actor) ([]exportRow, error) {
	switch actor.Role {
	case workflow.RoleTeacher:
		selections, err := s.repo.Topic.ListSelectionsByTeacher(ctx, actor.UserID)
		if err != nil {
			s.logger.Error("查询选题名单失败", zap.Error(err))
			return nil, err
		}
		rows := make([]exportRow, 0, len(selections))
		for _, sel := range selections {
			if sel.Student == nil {
				continue
			}
			row := exportRow{student: sel.Student}
			if sel.Topic != nil {
				row.topic = sel.Topic.Title
			}
			rows = append(rows, row)
		}
		return rows, nil

	case workflow.RoleAdmin:
		students, err := s.repo.User.ListByRole(ctx, string(workflow.RoleStudent))
		if err != nil {
			s.logger.Error("查询学生列表失败", zap.Error(err))
			return nil, err
		}
		selections, err := s.repo.Topic.ListAllSelections(ctx)
		if err != nil {
			s.logger.Error("查询选题记录失败", zap.Error(err))
			return nil, err
		}
		topics := make(map[string]string, len(selections))
		for _, sel := range selections {
			if sel.Topic != nil {
				topics[sel.StudentID] = sel.Topic.Title
			}
		}
		rows := make([]exportRow, 0, len(students))
		for i := range students {
			rows = append(rows, exportRow{student: &students[i], topic: topics[students[i].UserID]})
		}
		return rows, nil
	}
	return nil, ErrPermissionDenied
}
