package dto

// ── 进度 / 统计 / 时间窗口 DTO ──

// ProgressResponse 学生进度报告
type ProgressResponse struct {
	Student      *UserBrief              `json:"student,omitempty"`
	Stages       []StageProgressResponse `json:"stages"`
	Completed    int                     `json:"completed"`
	Total        int                     `json:"total"`
	CurrentStage string                  `json:"current_stage"`
	Finished     bool                    `json:"finished"`
}

// StageProgressResponse 进度报告中的单个阶段
type StageProgressResponse struct {
	Stage         string          `json:"stage"`
	Label         string          `json:"label"`
	HasSubmission bool            `json:"has_submission"`
	SubmissionID  uint64          `json:"submission_id,omitempty"`
	Title         string          `json:"title,omitempty"`
	SubmittedAt   string          `json:"submitted_at,omitempty"`
	LatestReview  *ReviewResponse `json:"latest_review,omitempty"`
	StageStatus   string          `json:"stage_status"`
	CanSubmit     bool            `json:"can_submit"`
}

// GateRequest 门控查询参数
type GateRequest struct {
	Stage string `form:"stage" binding:"required,workflow_stage"`
}

// GateResponse 门控查询结果
type GateResponse struct {
	Stage         string `json:"stage"`
	CanSubmit     bool   `json:"can_submit"`
	BlockedBy     string `json:"blocked_by,omitempty"`
	BlockerStatus string `json:"blocker_status,omitempty"`
}

// StageStatisticsResponse 单阶段统计
type StageStatisticsResponse struct {
	Stage     string `json:"stage"`
	Label     string `json:"label"`
	Submitted int    `json:"submitted"`
	Reviewed  int    `json:"reviewed"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Revise    int    `json:"revise"`
}

// StatisticsResponse 管理员看板统计
type StatisticsResponse struct {
	Students       int                       `json:"students"`
	SelectedTopics int64                     `json:"selected_topics"`
	Stages         []StageStatisticsResponse `json:"stages"`
}

// UpdateStageWindowRequest 设置阶段时间窗口，日期格式 YYYY-MM-DD
type UpdateStageWindowRequest struct {
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Note      string  `json:"note"       binding:"max=500"`
}

// StageWindowResponse 阶段时间窗口
type StageWindowResponse struct {
	Stage     string `json:"stage"`
	Label     string `json:"label"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Note      string `json:"note"`
	Open      bool   `json:"open"`
}
