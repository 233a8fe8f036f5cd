package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/23050617sfy/SE-GPMS/internal/model"
	pkgerrors "github.com/23050617sfy/SE-GPMS/pkg/errors"
)

// 选题守卫的存储层错误，由 Service 层翻译为业务错误
var (
	ErrSelectionExists  = errors.New("student already holds a selection")
	ErrTopicFull        = errors.New("topic is full")
	ErrSelectionMissing = errors.New("selection does not exist")
	ErrTopicOccupied    = errors.New("topic has selected students")
	ErrBelowOccupancy   = errors.New("max_students below selected_students")
)

// OccupancyReport 一次人数校准的结果
type OccupancyReport struct {
	Fixed int64
	// Overbooked 选题记录数超过 max_students 的课题，计数被压在上限以阻止继续选题
	Overbooked []uint64
}

// TopicFilter 课题列表过滤条件
type TopicFilter struct {
	TeacherID     string
	AvailableOnly bool
	Offset        int
	Limit         int
}

// TopicRepository 课题与选题记录数据访问接口
//
// Select / Deselect / DeleteIfEmpty 各自在单个事务内完成，
// 占用计数只通过条件 UPDATE 修改，并发调用不会超出 max_students。
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id uint64) (*model.Topic, error)
	Update(ctx context.Context, topic *model.Topic) error
	List(ctx context.Context, filter TopicFilter) ([]model.Topic, int64, error)

	Select(ctx context.Context, topicID uint64, studentID string) (*model.TopicSelection, error)
	Deselect(ctx context.Context, topicID uint64, studentID string) error
	DeleteIfEmpty(ctx context.Context, id uint64) error

	GetSelectionByStudent(ctx context.Context, studentID string) (*model.TopicSelection, error)
	ListSelections(ctx context.Context, topicID uint64) ([]model.TopicSelection, error)
	ListSelectionsByTeacher(ctx context.Context, teacherID string) ([]model.TopicSelection, error)
	ListAllSelections(ctx context.Context) ([]model.TopicSelection, error)
	CountSelections(ctx context.Context) (int64, error)
	ReconcileOccupancy(ctx context.Context) (OccupancyReport, error)
}

type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, id uint64) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// Update 更新课题基本信息（乐观锁）
// 不修改 selected_students；新 max_students 低于最新占用时返回 ErrBelowOccupancy
func (r *topicRepo) Update(ctx context.Context, topic *model.Topic) error {
	oldVersion := topic.Version
	result := r.db.WithContext(ctx).
		Model(&model.Topic{}).
		Where("topic_id = ? AND version = ? AND selected_students <= ?", topic.TopicID, oldVersion, topic.MaxStudents).
		Updates(map[string]interface{}{
			"title":        topic.Title,
			"category":     topic.Category,
			"difficulty":   topic.Difficulty,
			"max_students": topic.MaxStudents,
			"description":  topic.Description,
			"requirements": topic.Requirements,
			"version":      oldVersion + 1,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.updateConflict(ctx, topic.TopicID, oldVersion)
	}
	topic.Version = oldVersion + 1
	return nil
}

// updateConflict 区分版本冲突与容量低于占用
func (r *topicRepo) updateConflict(ctx context.Context, id uint64, version int) error {
	var current model.Topic
	err := r.db.WithContext(ctx).
		Select("topic_id", "version").
		Where("topic_id = ?", id).
		Take(&current).Error
	if err != nil {
		return err
	}
	if current.Version != version {
		return pkgerrors.ErrOptimisticLock
	}
	return ErrBelowOccupancy
}

func (r *topicRepo) List(ctx context.Context, filter TopicFilter) ([]model.Topic, int64, error) {
	var topics []model.Topic
	var total int64

	query := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&model.Topic{})
		if filter.TeacherID != "" {
			db = db.Where("teacher_id = ?", filter.TeacherID)
		}
		if filter.AvailableOnly {
			db = db.Where("selected_students < max_students")
		}
		return db
	}

	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db := query().Preload("Teacher").Order("created_at DESC, topic_id DESC")
	if filter.Limit > 0 {
		db = db.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := db.Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// ── 选题守卫 ──

func (r *topicRepo) Select(ctx context.Context, topicID uint64, studentID string) (*model.TopicSelection, error) {
	var selection *model.TopicSelection

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var held int64
		if err := tx.Model(&model.TopicSelection{}).
			Where("student_id = ?", studentID).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return ErrSelectionExists
		}

		result := tx.Model(&model.Topic{}).
			Where("topic_id = ? AND selected_students < max_students", topicID).
			UpdateColumn("selected_students", gorm.Expr("selected_students + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := topicExists(tx, topicID); err != nil {
				return err
			}
			return ErrTopicFull
		}

		selection = &model.TopicSelection{TopicID: topicID, StudentID: studentID}
		if err := tx.Create(selection).Error; err != nil {
			// 并发下第二个插入撞上 student_id 唯一索引，整个事务回滚（含计数）
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSelectionExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return selection, nil
}

func (r *topicRepo) Deselect(ctx context.Context, topicID uint64, studentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockTopic(tx, topicID); err != nil {
			return err
		}

		result := tx.Where("topic_id = ? AND student_id = ?", topicID, studentID).
			Delete(&model.TopicSelection{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSelectionMissing
		}

		return tx.Model(&model.Topic{}).
			Where("topic_id = ?", topicID).
			UpdateColumn("selected_students", gorm.Expr("GREATEST(selected_students - 1, 0)")).Error
	})
}

func (r *topicRepo) DeleteIfEmpty(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("topic_id = ? AND selected_students = 0", id).Delete(&model.Topic{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := topicExists(tx, id); err != nil {
				return err
			}
			return ErrTopicOccupied
		}
		return nil
	})
}

// topicExists 不存在时返回 gorm.ErrRecordNotFound
func topicExists(tx *gorm.DB, id uint64) error {
	var n int64
	if err := tx.Model(&model.Topic{}).Where("topic_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// lockTopic 对课题行加行锁，持有到事务结束；不存在时返回 gorm.ErrRecordNotFound
func lockTopic(tx *gorm.DB, id uint64) (*model.Topic, error) {
	var topic model.Topic
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("topic_id", "max_students", "selected_students").
		Where("topic_id = ?", id).
		Take(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// ── 选题记录查询 ──

func (r *topicRepo) GetSelectionByStudent(ctx context.Context, studentID string) (*model.TopicSelection, error) {
	var selection model.TopicSelection
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Preload("Topic.Teacher").
		Where("student_id = ?", studentID).
		First(&selection).Error
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

func (r *topicRepo) ListSelections(ctx context.Context, topicID uint64) ([]model.TopicSelection, error) {
	var selections []model.TopicSelection
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("topic_id = ?", topicID).
		Order("selected_at ASC, selection_id ASC").
		Find(&selections).Error
	return selections, err
}

func (r *topicRepo) ListSelectionsByTeacher(ctx context.Context, teacherID string) ([]model.TopicSelection, error) {
	var selections []model.TopicSelection
	err := r.db.WithContext(ctx).
		Joins("JOIN topics ON topics.topic_id = topic_selections.topic_id").
		Preload("Student").
		Preload("Topic").
		Where("topics.teacher_id = ?", teacherID).
		Order("topic_selections.selected_at ASC, topic_selections.selection_id ASC").
		Find(&selections).Error
	return selections, err
}

func (r *topicRepo) ListAllSelections(ctx context.Context) ([]model.TopicSelection, error) {
	var selections []model.TopicSelection
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Order("selected_at ASC, selection_id ASC").
		Find(&selections).Error
	return selections, err
}

func (r *topicRepo) CountSelections(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TopicSelection{}).Count(&n).Error
	return n, err
}

// ReconcileOccupancy 以选题记录数为准修正漂移的 selected_students
//
// 先取出计数与记录数不一致的课题，再逐个在事务内锁住课题行后重新计数。
// 选题/退选事务都会锁同一行，锁释放后的 COUNT 能看到其已提交的记录。
func (r *topicRepo) ReconcileOccupancy(ctx context.Context) (OccupancyReport, error) {
	var report OccupancyReport

	var ids []uint64
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.topic_id
		FROM topics t
		LEFT JOIN topic_selections ts ON ts.topic_id = t.topic_id
		GROUP BY t.topic_id, t.selected_students
		HAVING t.selected_students <> COUNT(ts.selection_id)
		ORDER BY t.topic_id`).Scan(&ids).Error
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		fixed, overbooked, err := r.reconcileTopic(ctx, id)
		if err != nil {
			return report, err
		}
		if fixed {
			report.Fixed++
		}
		if overbooked {
			report.Overbooked = append(report.Overbooked, id)
		}
	}
	return report, nil
}

func (r *topicRepo) reconcileTopic(ctx context.Context, id uint64) (fixed, overbooked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, err := lockTopic(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var cnt int64
		if err := tx.Model(&model.TopicSelection{}).Where("topic_id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}

		want := int(cnt)
		// CHECK 约束不允许计数超过上限
		if want > topic.MaxStudents {
			overbooked = true
			want = topic.MaxStudents
		}
		if want == topic.SelectedStudents {
			return nil
		}
		fixed = true
		return tx.Model(&model.Topic{}).
			Where("topic_id = ?", id).
			UpdateColumns(map[string]interface{}{
				"selected_students": want,
				"updated_at":        gorm.Expr("NOW()"),
			}).Error
	})
	return fixed, overbooked, err
}
