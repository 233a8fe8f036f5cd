package model

import "time"

// Proposal 开题报告表 — 对应 proposals
type Proposal struct {
	ProposalID  uint64    `gorm:"primaryKey;autoIncrement"                       json:"proposal_id"`
	StudentID   string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Title       string    `gorm:"type:varchar(255);not null"                     json:"title"`
	FilePath    string    `gorm:"type:varchar(500);not null;default:''"          json:"file_path"`
	Status      string    `gorm:"type:varchar(30);not null;default:'submitted'"  json:"status"`
	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Student *User            `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Reviews []ProposalReview `gorm:"foreignKey:ProposalID"                  json:"reviews,omitempty"`
}

func (Proposal) TableName() string { return "proposals" }

// MidtermCheck 中期检查表 — 对应 midterm_checks
type MidtermCheck struct {
	MidtermID   uint64    `gorm:"primaryKey;autoIncrement"                       json:"midterm_id"`
	StudentID   string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Title       string    `gorm:"type:varchar(255);not null"                     json:"title"`
	FilePath    string    `gorm:"type:varchar(500);not null;default:''"          json:"file_path"`
	Status      string    `gorm:"type:varchar(30);not null;default:'submitted'"  json:"status"`
	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Student *User           `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Reviews []MidtermReview `gorm:"foreignKey:MidtermID"                   json:"reviews,omitempty"`
}

func (MidtermCheck) TableName() string { return "midterm_checks" }

// Thesis 论文表 — 对应 theses
// 每条记录是某一阶段（first_review | second_review | final_submission）的一个版本
type Thesis struct {
	ThesisID    uint64    `gorm:"primaryKey;autoIncrement"                          json:"thesis_id"`
	StudentID   string    `gorm:"type:uuid;not null;index"                          json:"student_id"`
	Title       string    `gorm:"type:varchar(255);not null"                        json:"title"`
	FilePath    string    `gorm:"type:varchar(500);not null;default:''"             json:"file_path"`
	Version     string    `gorm:"type:varchar(50);not null;default:'draft'"         json:"version"`
	Status      string    `gorm:"type:varchar(30);not null;default:'submitted'"     json:"status"`
	Stage       string    `gorm:"type:varchar(30);not null;default:'first_review'"  json:"stage"`
	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"submitted_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"updated_at"`

	// 关联
	Student *User          `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Reviews []ThesisReview `gorm:"foreignKey:ThesisID"                    json:"reviews,omitempty"`
}

func (Thesis) TableName() string { return "theses" }
