package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Topic       TopicRepository
	Proposal    ProposalRepository
	Midterm     MidtermRepository
	Thesis      ThesisRepository
	StageWindow StageWindowRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Topic:       NewTopicRepo(db),
		Proposal:    NewProposalRepo(db),
		Midterm:     NewMidtermRepo(db),
		Thesis:      NewThesisRepo(db),
		StageWindow: NewStageWindowRepo(db),
	}
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务 tx 的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
