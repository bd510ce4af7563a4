package models

import (
	"time"
)

const (
	RoleLearner  = "learner"
	RoleEducator = "educator"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	Role         string     `gorm:"size:20;not null;default:'learner'" json:"role"`
	LastLogin    *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
