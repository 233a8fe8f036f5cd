package model

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null;default:''"          json:"name"`
	StudentID    string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"student_id"` // 登录名（学号/工号）
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"` // student | teacher | admin
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 展示名：优先姓名，缺省回退为学号
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.StudentID
}
