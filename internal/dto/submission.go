package dto

// ── 提交与审阅 DTO ──

// SubmitRequest 开题报告 / 中期检查提交请求
type SubmitRequest struct {
	Title    string `json:"title"     binding:"required,notblank,max=255"`
	FilePath string `json:"file_path" binding:"max=500"`
}

// ThesisSubmitRequest 论文提交请求
type ThesisSubmitRequest struct {
	Title    string `json:"title"     binding:"required,notblank,max=255"`
	FilePath string `json:"file_path" binding:"max=500"`
	Version  string `json:"version"   binding:"max=50"`
	Stage    string `json:"stage"     binding:"required,thesis_stage"`
}

// ReviewRequest 审阅请求
// Stage 仅论文审阅使用，为空时取论文自身阶段
type ReviewRequest struct {
	Score    *int   `json:"score"    binding:"omitempty,min=0,max=100"`
	Feedback string `json:"feedback" binding:"max=5000"`
	Result   string `json:"result"   binding:"required,review_result"`
	Stage    string `json:"stage"    binding:"omitempty,thesis_stage"`
}

// SubmissionListRequest 教师/管理员检索提交记录
type SubmissionListRequest struct {
	Keyword string `form:"q"     binding:"max=100"`
	Stage   string `form:"stage" binding:"omitempty,thesis_stage"`
	PaginationRequest
}

// ── 响应 ──

// SubmissionResponse 提交记录响应（含审阅，最新在前）
type SubmissionResponse struct {
	ID            uint64           `json:"id"`
	Kind          string           `json:"kind"`
	WorkflowStage string           `json:"workflow_stage"`
	Student       *UserBrief       `json:"student,omitempty"`
	Title         string           `json:"title"`
	FilePath      string           `json:"file_path"`
	Status        string           `json:"status"`
	Version       string           `json:"version,omitempty"`
	Stage         string           `json:"stage,omitempty"`
	LatestResult  string           `json:"latest_result,omitempty"`
	Reviews       []ReviewResponse `json:"reviews"`
	SubmittedAt   string           `json:"submitted_at"`
}

// ReviewResponse 审阅记录响应
type ReviewResponse struct {
	ID           uint64 `json:"id"`
	TargetID     uint64 `json:"target_id"`
	Stage        string `json:"stage,omitempty"`
	ReviewerID   string `json:"reviewer_id,omitempty"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Score        *int   `json:"score,omitempty"`
	Feedback     string `json:"feedback"`
	Result       string `json:"result"`
	ReviewedAt   string `json:"reviewed_at"`
	// Unlocks 该结论为 pass 且开放了下一阶段时返回下一阶段
	Unlocks string `json:"unlocks,omitempty"`
}
