package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求，account 可为学号/工号或邮箱
type LoginRequest struct {
	Account  string `json:"account"  binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name      string `json:"name"       binding:"required,notblank,max=100"`
	StudentID string `json:"student_id" binding:"required,notblank,max=150"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=6,max=64"`
	Role      string `json:"role"       binding:"omitempty,oneof=student teacher"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
