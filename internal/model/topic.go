package model

import "time"

// 课题类型与难度取值
var (
	TopicCategories   = []string{"应用研究", "理论研究", "系统设计", "算法设计"}
	TopicDifficulties = []string{"较易", "中等", "较难"}
)

// Topic 课题表 — 对应 topics
// SelectedStudents 为选题人数的缓存计数，只能通过条件更新修改
type Topic struct {
	TopicID          uint64 `gorm:"primaryKey;autoIncrement"                        json:"topic_id"`
	TeacherID        string `gorm:"type:uuid;not null;index"                        json:"teacher_id"`
	Title            string `gorm:"type:varchar(255);not null"                      json:"title"`
	Category         string `gorm:"type:varchar(50);not null;default:'应用研究'"        json:"category"`
	Difficulty       string `gorm:"type:varchar(20);not null;default:'中等'"          json:"difficulty"`
	MaxStudents      int    `gorm:"not null;default:1"                              json:"max_students"`
	SelectedStudents int    `gorm:"not null;default:0"                              json:"selected_students"`
	Description      string `gorm:"type:text;not null;default:''"                   json:"description"`
	Requirements     string `gorm:"type:text;not null;default:''"                   json:"requirements"`
	VersionedModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

func (Topic) TableName() string { return "topics" }

// Available 是否仍有名额
func (t *Topic) Available() bool { return t.SelectedStudents < t.MaxStudents }

// TopicSelection 选题记录表 — 对应 topic_selections
type TopicSelection struct {
	SelectionID uint64    `gorm:"primaryKey;autoIncrement"           json:"selection_id"`
	TopicID     uint64    `gorm:"not null"                           json:"topic_id"`
	StudentID   string    `gorm:"type:uuid;not null;uniqueIndex"     json:"student_id"`
	SelectedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"selected_at"`

	// 关联
	Topic   *Topic `gorm:"foreignKey:TopicID;references:TopicID"   json:"topic,omitempty"`
	Student *User  `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

func (TopicSelection) TableName() string { return "topic_selections" }
