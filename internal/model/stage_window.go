package model

import "gorm.io/datatypes"

// StageWindow 阶段时间窗口 — 对应 stage_windows
// 起止日期均为闭区间，任一为空表示该侧不限
type StageWindow struct {
	Stage     string          `gorm:"type:varchar(30);primaryKey"           json:"stage"`
	StartDate *datatypes.Date `gorm:"type:date"                             json:"start_date,omitempty"`
	EndDate   *datatypes.Date `gorm:"type:date"                             json:"end_date,omitempty"`
	Note      string          `gorm:"type:varchar(500);not null;default:''" json:"note"`
	UpdatedBy *string         `gorm:"type:uuid"                             json:"updated_by,omitempty"`
	BaseModel
}

func (StageWindow) TableName() string { return "stage_windows" }
