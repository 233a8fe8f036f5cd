package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/23050617sfy/SE-GPMS/internal/model"
)

// SubmissionFilter 提交记录列表过滤条件
type SubmissionFilter struct {
	StudentIDs  []string // 为空不限
	Keyword     string   // 匹配学生姓名或学号
	ThesisStage string   // 仅论文有效
	Offset      int
	Limit       int // <=0 不分页
}

// scopeSubmissions 按过滤条件限定 table 上的查询
func scopeSubmissions(db *gorm.DB, table string, f SubmissionFilter) *gorm.DB {
	if len(f.StudentIDs) > 0 {
		db = db.Where(table+".student_id IN ?", f.StudentIDs)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + kw + "%"
		db = db.Joins("JOIN users ON users.user_id = "+table+".student_id").
			Where("users.name ILIKE ? OR users.student_id ILIKE ?", like, like)
	}
	return db
}

func paginate(db *gorm.DB, f SubmissionFilter) *gorm.DB {
	if f.Limit > 0 {
		return db.Offset(f.Offset).Limit(f.Limit)
	}
	return db
}

// reviewsNewestFirst 审阅按 (reviewed_at, review_id) 倒序预加载
func reviewsNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("reviewed_at DESC, review_id DESC")
}

// ── Proposal ──

// ProposalRepository 开题报告及其审阅的数据访问接口
type ProposalRepository interface {
	Create(ctx context.Context, p *model.Proposal) error
	GetByID(ctx context.Context, id uint64) (*model.Proposal, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Proposal, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.Proposal, int64, error)
	CreateReview(ctx context.Context, review *model.ProposalReview) error
}

type proposalRepo struct {
	db *gorm.DB
}

// NewProposalRepo 创建 ProposalRepository 实例
func NewProposalRepo(db *gorm.DB) ProposalRepository {
	return &proposalRepo{db: db}
}

func (r *proposalRepo) Create(ctx context.Context, p *model.Proposal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proposalRepo) GetByID(ctx context.Context, id uint64) (*model.Proposal, error) {
	var p model.Proposal
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Where("proposal_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Proposal, error) {
	list, _, err := r.List(ctx, SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (r *proposalRepo) List(ctx context.Context, filter SubmissionFilter) ([]model.Proposal, int64, error) {
	var list []model.Proposal
	var total int64

	query := func() *gorm.DB {
		return scopeSubmissions(r.db.WithContext(ctx).Model(&model.Proposal{}), "proposals", filter)
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query(), filter).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Order("proposals.submitted_at DESC, proposals.proposal_id DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *proposalRepo) CreateReview(ctx context.Context, review *model.ProposalReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ── MidtermCheck ──

// MidtermRepository 中期检查及其审阅的数据访问接口
type MidtermRepository interface {
	Create(ctx context.Context, m *model.MidtermCheck) error
	GetByID(ctx context.Context, id uint64) (*model.MidtermCheck, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.MidtermCheck, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.MidtermCheck, int64, error)
	CreateReview(ctx context.Context, review *model.MidtermReview) error
}

type midtermRepo struct {
	db *gorm.DB
}

// NewMidtermRepo 创建 MidtermRepository 实例
func NewMidtermRepo(db *gorm.DB) MidtermRepository {
	return &midtermRepo{db: db}
}

func (r *midtermRepo) Create(ctx context.Context, m *model.MidtermCheck) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *midtermRepo) GetByID(ctx context.Context, id uint64) (*model.MidtermCheck, error) {
	var m model.MidtermCheck
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Where("midterm_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *midtermRepo) ListByStudent(ctx context.Context, studentID string) ([]model.MidtermCheck, error) {
	list, _, err := r.List(ctx, SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (r *midtermRepo) List(ctx context.Context, filter SubmissionFilter) ([]model.MidtermCheck, int64, error) {
	var list []model.MidtermCheck
	var total int64

	query := func() *gorm.DB {
		return scopeSubmissions(r.db.WithContext(ctx).Model(&model.MidtermCheck{}), "midterm_checks", filter)
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query(), filter).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Order("midterm_checks.submitted_at DESC, midterm_checks.midterm_id DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *midtermRepo) CreateReview(ctx context.Context, review *model.MidtermReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ── Thesis ──

// ThesisRepository 论文及其审阅的数据访问接口
type ThesisRepository interface {
	Create(ctx context.Context, t *model.Thesis) error
	GetByID(ctx context.Context, id uint64) (*model.Thesis, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Thesis, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.Thesis, int64, error)
	CreateReview(ctx context.Context, review *model.ThesisReview) error
}

type thesisRepo struct {
	db *gorm.DB
}

// NewThesisRepo 创建 ThesisRepository 实例
func NewThesisRepo(db *gorm.DB) ThesisRepository {
	return &thesisRepo{db: db}
}

func (r *thesisRepo) Create(ctx context.Context, t *model.Thesis) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *thesisRepo) GetByID(ctx context.Context, id uint64) (*model.Thesis, error) {
	var t model.Thesis
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Where("thesis_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *thesisRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Thesis, error) {
	list, _, err := r.List(ctx, SubmissionFilter{StudentIDs: []string{studentID}})
	return list, err
}

func (r *thesisRepo) List(ctx context.Context, filter SubmissionFilter) ([]model.Thesis, int64, error) {
	var list []model.Thesis
	var total int64

	query := func() *gorm.DB {
		db := scopeSubmissions(r.db.WithContext(ctx).Model(&model.Thesis{}), "theses", filter)
		if filter.ThesisStage != "" {
			db = db.Where("theses.stage = ?", filter.ThesisStage)
		}
		return db
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query(), filter).
		Preload("Student").
		Preload("Reviews", reviewsNewestFirst).
		Preload("Reviews.Reviewer").
		Order("theses.submitted_at DESC, theses.thesis_id DESC").
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *thesisRepo) CreateReview(ctx context.Context, review *model.ThesisReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}
