package models

import "time"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RolePublisher UserRole = "publisher"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) String() string {
	return string(r)
}

// IsValid 判断角色是否合法
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	default:
		return false
	}
}

// User 用户模型
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:256;not null"` // 密码不会在JSON中返回
	Email        string    `json:"email,omitempty" gorm:"size:128"`
	Role         UserRole  `json:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor 发起请求的身份，由身份提供方解析得到
type Actor struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanPublish 发布者和管理员可以发布任务
func (a Actor) CanPublish() bool {
	return a.Role == RolePublisher || a.Role == RoleAdmin
}
