package models

import (
	"time"
)

type VirtualClass struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CourseID        uint      `gorm:"not null;index" json:"course_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	MeetingLink     string    `gorm:"size:255" json:"meeting_link"`
	Schedule        time.Time `gorm:"not null" json:"schedule"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`

	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
