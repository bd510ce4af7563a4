package models

import (
	"time"
)

type Material struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CourseID     uint   `gorm:"not null;index" json:"course_id"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	FileURL      string `gorm:"type:text" json:"file_url"`
	MaterialType string `gorm:"size:50;default:'pdf'" json:"material_type"`

	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
