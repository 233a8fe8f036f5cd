package model

import "time"

// ProposalReview 开题报告审阅 — 对应 proposal_reviews
type ProposalReview struct {
	ReviewID   uint64    `gorm:"primaryKey;autoIncrement"           json:"review_id"`
	ProposalID uint64    `gorm:"not null;index"                     json:"proposal_id"`
	ReviewerID *string   `gorm:"type:uuid"                          json:"reviewer_id,omitempty"`
	Score      *int      `                                          json:"score,omitempty"`
	Feedback   string    `gorm:"type:text;not null;default:''"      json:"feedback"`
	Result     string    `gorm:"type:varchar(20);not null"          json:"result"` // pass | fail | revise
	ReviewedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"reviewed_at"`

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

func (ProposalReview) TableName() string { return "proposal_reviews" }

// MidtermReview 中期检查审阅 — 对应 midterm_reviews
type MidtermReview struct {
	ReviewID   uint64    `gorm:"primaryKey;autoIncrement"           json:"review_id"`
	MidtermID  uint64    `gorm:"not null;index"                     json:"midterm_id"`
	ReviewerID *string   `gorm:"type:uuid"                          json:"reviewer_id,omitempty"`
	Score      *int      `                                          json:"score,omitempty"`
	Feedback   string    `gorm:"type:text;not null;default:''"      json:"feedback"`
	Result     string    `gorm:"type:varchar(20);not null"          json:"result"`
	ReviewedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"reviewed_at"`

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

func (MidtermReview) TableName() string { return "midterm_reviews" }

// ThesisReview 论文审阅 — 对应 thesis_reviews
type ThesisReview struct {
	ReviewID   uint64    `gorm:"primaryKey;autoIncrement"           json:"review_id"`
	ThesisID   uint64    `gorm:"not null;index"                     json:"thesis_id"`
	ReviewerID *string   `gorm:"type:uuid"                          json:"reviewer_id,omitempty"`
	Stage      string    `gorm:"type:varchar(30);not null"          json:"stage"` // 与论文记录的 stage 一致
	Score      *int      `                                          json:"score,omitempty"`
	Feedback   string    `gorm:"type:text;not null;default:''"      json:"feedback"`
	Result     string    `gorm:"type:varchar(20);not null"          json:"result"`
	ReviewedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"reviewed_at"`

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

func (ThesisReview) TableName() string { return "thesis_reviews" }
