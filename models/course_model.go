package models

import (
	"time"
)

type Course struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Title         string  `gorm:"size:255;not null" json:"title"`
	Description   string  `gorm:"type:text" json:"description"`
	Category      string  `gorm:"size:100;not null;default:'General'" json:"category"`
	EducatorID    uint    `gorm:"not null;index" json:"educator_id"`
	Price         float64 `gorm:"type:numeric(10,2);default:0.00" json:"price"`
	DurationHours int     `gorm:"default:10" json:"duration_hours"`
	IsPublished   bool    `gorm:"default:false" json:"is_published"`

	Educator User `gorm:"foreignkey:EducatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
