package models

import (
	"time"
)

type Enrollment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	LearnerID uint `gorm:"not null;uniqueIndex:idx_learner_course" json:"learner_id"`
	CourseID  uint `gorm:"not null;uniqueIndex:idx_learner_course" json:"course_id"`
	Progress  int  `gorm:"default:0" json:"progress"`
	Completed bool `gorm:"default:false" json:"completed"`

	Learner User   `gorm:"foreignkey:LearnerID" json:"-"`
	Course  Course `gorm:"foreignkey:CourseID" json:"-"`

	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
