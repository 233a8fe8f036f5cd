package dto

// ── 课题模块 DTO ──

// CreateTopicRequest 创建课题请求
type CreateTopicRequest struct {
	Title        string `json:"title"        binding:"required,notblank,max=255"`
	Category     string `json:"category"     binding:"omitempty,oneof=应用研究 理论研究 系统设计 算法设计"`
	Difficulty   string `json:"difficulty"   binding:"omitempty,oneof=较易 中等 较难"`
	MaxStudents  int    `json:"max_students" binding:"omitempty,min=1,max=20"`
	Description  string `json:"description"  binding:"max=5000"`
	Requirements string `json:"requirements" binding:"max=5000"`
}

// UpdateTopicRequest 更新课题请求，字段为空表示不修改
type UpdateTopicRequest struct {
	Title        *string `json:"title"        binding:"omitempty,notblank,max=255"`
	Category     *string `json:"category"     binding:"omitempty,oneof=应用研究 理论研究 系统设计 算法设计"`
	Difficulty   *string `json:"difficulty"   binding:"omitempty,oneof=较易 中等 较难"`
	MaxStudents  *int    `json:"max_students" binding:"omitempty,min=1,max=20"`
	Description  *string `json:"description"  binding:"omitempty,max=5000"`
	Requirements *string `json:"requirements" binding:"omitempty,max=5000"`
	Version      int     `json:"version"      binding:"required,min=1"`
}

// TopicListRequest 课题列表查询参数
type TopicListRequest struct {
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	Available bool   `form:"available"`
	PaginationRequest
}

// ── 响应 ──

// TopicResponse 课题响应
type TopicResponse struct {
	ID               uint64     `json:"id"`
	Title            string     `json:"title"`
	Category         string     `json:"category"`
	Difficulty       string     `json:"difficulty"`
	MaxStudents      int        `json:"max_students"`
	SelectedStudents int        `json:"selected_students"`
	Available        bool       `json:"available"`
	Description      string     `json:"description"`
	Requirements     string     `json:"requirements"`
	Teacher          *UserBrief `json:"teacher,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// SelectionResponse 选题记录响应
type SelectionResponse struct {
	ID         uint64         `json:"id"`
	TopicID    uint64         `json:"topic_id"`
	Topic      *TopicResponse `json:"topic,omitempty"`
	Student    *UserBrief     `json:"student,omitempty"`
	SelectedAt string         `json:"selected_at"`
}
