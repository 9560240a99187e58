package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email    string `gorm:"size:254" json:"email,omitempty"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}
