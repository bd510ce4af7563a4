package models

import (
	"time"
)

type Submission struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AssessmentID  uint   `gorm:"not null;index" json:"assessment_id"`
	LearnerID     uint   `gorm:"not null;index" json:"learner_id"`
	SubmissionURL string `gorm:"type:text" json:"submission_url"`
	Marks         *int   `json:"marks"`
	Feedback      string `gorm:"type:text" json:"feedback"`

	Assessment Assessment `gorm:"foreignkey:AssessmentID" json:"-"`
	Learner    User       `gorm:"foreignkey:LearnerID" json:"-"`

	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
