package models

import (
	"time"
)

// ClassLevels and Subjects are the fixed pick lists homework can be filed
// under. Questions outside these lists are rejected at creation time.
var (
	ClassLevels = []string{"5th", "6th", "7th", "8th", "9th", "10th", "11th", "12th"}

	Subjects = []string{
		"Hindi", "English", "Math", "Science", "SST", "Computer",
		"GK", "Physics", "Chemistry", "Biology", "Advance Classes",
	}
)

func ValidClassLevel(class string) bool {
	for _, c := range ClassLevels {
		if c == class {
			return true
		}
	}
	return false
}

func ValidSubject(subject string) bool {
	for _, s := range Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// HomeworkQuestion is immutable once students start answering it; the
// service exposes no update path.
type HomeworkQuestion struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ClassLevel string `json:"class_level" gorm:"not null;index;size:10"`
	Subject    string `json:"subject" gorm:"not null;index;size:100"`
	Question   string `json:"question" gorm:"type:text;not null"`

	// ModelAnswer is the reference text every submission is scored against.
	ModelAnswer string `json:"model_answer" gorm:"type:text;not null"`

	AssignedDate time.Time `json:"assigned_date" gorm:"not null;index"`
	DueDate      time.Time `json:"due_date" gorm:"not null"`

	UploadedBy string `json:"uploaded_by" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Uploader User `json:"uploader" gorm:"foreignKey:UploadedBy"`
}

func (HomeworkQuestion) TableName() string {
	return "homework_questions"
}
