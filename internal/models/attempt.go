package models

import (
	"time"
)

type AttemptStatus string

const (
	// AttemptPending means the answer scored below the passing band and is
	// waiting for the student to resubmit. At most one pending attempt may
	// exist per (student, question) pair; a resubmission replaces it.
	AttemptPending AttemptStatus = "pending"

	// AttemptFinalized means the grade is set. Finalized attempts are
	// immutable history and are never touched by resubmission.
	AttemptFinalized AttemptStatus = "finalized"
)

type AnswerAttempt struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	StudentID  string `json:"student_id" gorm:"not null;index:idx_student_question;size:255"`
	QuestionID uint   `json:"question_id" gorm:"not null;index:idx_student_question"`

	SubmittedDate time.Time `json:"submitted_date" gorm:"not null;index"`
	AnswerText    string    `json:"answer_text" gorm:"type:text;not null"`

	// Grade is the 1-5 band; nil while the attempt is pending resubmission.
	Grade  *int   `json:"grade" gorm:"index"`
	Remark string `json:"remark" gorm:"type:text"`

	Status AttemptStatus `json:"status" gorm:"not null;default:pending;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student  User             `json:"student" gorm:"foreignKey:StudentID"`
	Question HomeworkQuestion `json:"question" gorm:"foreignKey:QuestionID"`
}

func (AnswerAttempt) TableName() string {
	return "answer_attempts"
}

// IsGraded reports whether the attempt reached the finalized state.
func (a *AnswerAttempt) IsGraded() bool {
	return a.Grade != nil
}
