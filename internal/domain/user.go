package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User 账号 + 凭证记录。ResetToken/ResetTokenExpiry 要么同时为空，
// 要么同时有值；密码只存 bcrypt 散列。
type User struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	FullName         string     `gorm:"size:255" json:"fullName"`
	Email            string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash     string     `gorm:"size:191;not null" json:"-"`
	Role             Role       `gorm:"size:16;not null;default:member" json:"role"`
	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	// SaveResetToken 同时写入（或清空）token 与过期时间两个字段
	SaveResetToken(ctx context.Context, id string, token *string, expiry *time.Time) error
	// ResetPassword 单条 UPDATE：写新散列并置空 reset 字段
	ResetPassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	SetRole(ctx context.Context, id string, role Role) error
}
