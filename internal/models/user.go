package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
)

// User is a StayX member profile. FirebaseID is the opaque key issued by the
// identity provider; it is never interpreted, only correlated 1:1 with a row.
type User struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	FirebaseID        string         `json:"firebase_id,omitempty" gorm:"uniqueIndex;size:128"`
	Username          string         `json:"username" gorm:"uniqueIndex;size:30"`
	Email             string         `json:"email" gorm:"uniqueIndex;size:100"`
	DisplayName       string         `json:"display_name" gorm:"size:50"`
	PhotoURL          string         `json:"photo_url,omitempty"`
	Bio               string         `json:"bio,omitempty" gorm:"size:160"`
	Interests         pq.StringArray `json:"interests" gorm:"type:text[]"`
	Level             int            `json:"level" gorm:"default:1"`
	AchievementPoints int            `json:"achievement_points" gorm:"default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	LastActive        time.Time      `json:"last_active"`
}

// CreateUserRequest defines the request body for registering a new profile
type CreateUserRequest struct {
	FirebaseID  string   `json:"firebase_id" validate:"required"`
	Username    string   `json:"username" validate:"required,min=3,max=30,username"`
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"display_name" validate:"required,min=1,max=50"`
	PhotoURL    string   `json:"photo_url,omitempty" validate:"omitempty,url"`
	Bio         string   `json:"bio,omitempty" validate:"omitempty,max=160"`
	Interests   []string `json:"interests,omitempty"`
}

// UpdateUserRequest is a partial profile update. Nil fields are left
// untouched; the storage layer refreshes LastActive on every update
// regardless of which fields were supplied.
type UpdateUserRequest struct {
	DisplayName *string   `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	PhotoURL    *string   `json:"photo_url,omitempty" validate:"omitempty,url"`
	Bio         *string   `json:"bio,omitempty" validate:"omitempty,max=160"`
	Interests   *[]string `json:"interests,omitempty"`
	Level       *int      `json:"level,omitempty" validate:"omitempty,min=1"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
