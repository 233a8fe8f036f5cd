package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/23050617sfy/SE-GPMS/internal/model"
)

// StageWindowRepository 阶段时间窗口数据访问接口
type StageWindowRepository interface {
	List(ctx context.Context) ([]model.StageWindow, error)
	Get(ctx context.Context, stage string) (*model.StageWindow, error)
	Upsert(ctx context.Context, w *model.StageWindow) error
}

type stageWindowRepo struct {
	db *gorm.DB
}

// NewStageWindowRepo 创建 StageWindowRepository 实例
func NewStageWindowRepo(db *gorm.DB) StageWindowRepository {
	return &stageWindowRepo{db: db}
}

func (r *stageWindowRepo) List(ctx context.Context) ([]model.StageWindow, error) {
	var windows []model.StageWindow
	err := r.db.WithContext(ctx).Find(&windows).Error
	return windows, err
}

func (r *stageWindowRepo) Get(ctx context.Context, stage string) (*model.StageWindow, error) {
	var w model.StageWindow
	if err := r.db.WithContext(ctx).Where("stage = ?", stage).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Upsert 按 stage 插入或整体覆盖
func (r *stageWindowRepo) Upsert(ctx context.Context, w *model.StageWindow) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stage"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"start_date": w.StartDate,
			"end_date":   w.EndDate,
			"note":       w.Note,
			"updated_by": w.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(w).Error
}
