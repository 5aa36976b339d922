package model

import (
	"time"
)

// UserRecord 凭据库中的完整用户记录，只在 UserRepository 内部流转
type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Username     string    `json:"username"`
	Country      string    `json:"country"`
	Role         string    `json:"role"`
	Institution  string    `json:"institution"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser 对外暴露的用户视图（不含密码）
// swagger:model PublicUser
type PublicUser struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Country     string    `json:"country"`
	Role        string    `json:"role"`
	Institution string    `json:"institution"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUserInput 创建用户所需字段，Password 为明文，由仓库负责哈希
type NewUserInput struct {
	Name        string
	Email       string
	Password    string
	Username    string
	Country     string
	Role        string
	Institution string
}

// swagger:model SignUpRequest
type SignUpRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	Country     string `json:"country"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
