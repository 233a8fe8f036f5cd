package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/23050617sfy/SE-GPMS/internal/workflow"
)

func TestExport_AdminAllStudents(t *testing.T) {
	f := seedCohort(t)
	svc := NewExportService(f.repo, 0, zap.NewNop())

	buf, filename, err := svc.ExportProgress(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Contains(t, filename, "学生进度_")
	assert.Contains(t, filename, ".xlsx")

	xl, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("学生进度")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"学号", "姓名", "课题"}, rows[0][:3])
	assert.Equal(t, "当前阶段", rows[0][len(rows[0])-1])

	first := rows[1]
	assert.Equal(t, "2021001", first[0])
	assert.Equal(t, "林晓", first[1])
	assert.Equal(t, "面向高校的毕业设计管理平台", first[2])
	assert.Equal(t, "通过", first[3+workflow.StageProposal.Index()])
	assert.Equal(t, "需修改", first[3+workflow.StageMidterm.Index()])
	assert.Equal(t, "2/6", first[3+len(workflow.Stages)])

	// 无姓名时显示学号
	assert.Equal(t, "2021003", rows[3][1])
}

func TestExport_TeacherScope(t *testing.T) {
	f := seedCohort(t)
	svc := NewExportService(f.repo, 0, zap.NewNop())

	buf, _, err := svc.ExportProgress(context.Background(), teacherActor)
	require.NoError(t, err)
	xl, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer xl.Close()
	rows, err := xl.GetRows("学生进度")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2021001", rows[1][0])

	// 无学生选题的教师
	_, _, err = svc.ExportProgress(context.Background(), workflow.Actor{UserID: "t-9", Role: workflow.RoleTeacher})
	assert.ErrorIs(t, err, ErrExportNoStudents)

	_, _, err = svc.ExportProgress(context.Background(), studentActor("s-1"))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExport_RowLimit(t *testing.T) {
	f := seedCohort(t)
	svc := NewExportService(f.repo, 2, zap.NewNop())

	_, _, err := svc.ExportProgress(context.Background(), adminActor)
	assert.ErrorIs(t, err, ErrExportTooLarge)
}
