package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a marketplace account (PostgreSQL)
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string    `json:"-"`                        // Store hashed password, ignore for JSON serialization
	ResetPass   string    `json:"-"`                        // Hashed one-shot temporary password from forgot-password
	Photo       string    `json:"photo" gorm:"default:'https://robohash.org/set_set1/bgset_bg1/seamarket?size=400x400'"`
	Phone       string    `json:"phone" gorm:"size:20"`
	About       string    `json:"about" gorm:"size:250"`
	Address     string    `json:"address" gorm:"size:100"`
	AvailableWA bool      `json:"available_wa" gorm:"default:false"`
	Role        string    `json:"role" gorm:"size:30;default:'customer'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Photo       string `json:"photo,omitempty" validate:"omitempty,url"`
	About       string `json:"about,omitempty" validate:"omitempty,max=250"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=100"`
	AvailableWA *bool  `json:"available_wa,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
