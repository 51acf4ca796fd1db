package repositories

import (
	"time"
)

// QuestionFilters narrows homework question listings.
type QuestionFilters struct {
	ClassLevel *string
	Subject    *string
	UploadedBy *string
	// AssignedOn restricts to questions assigned on the given calendar day.
	AssignedOn *time.Time
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}

// AnswerFilters narrows answer attempt listings.
type AnswerFilters struct {
	StudentID  *string
	QuestionID *uint
	// Graded filters on whether a grade has been assigned.
	Graded *bool
	Limit  int
	Offset int
}

// LeaderboardEntry is one row of a graded-average ranking.
type LeaderboardEntry struct {
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	ClassLevel   string  `json:"class_level"`
	AverageGrade float64 `json:"average_grade"`
}

// SubjectAverage is the average graded result for one subject.
type SubjectAverage struct {
	Subject      string  `json:"subject"`
	AverageGrade float64 `json:"average_grade"`
}

// ClassAverage is the average graded result for one class level.
type ClassAverage struct {
	ClassLevel   string  `json:"class_level"`
	AverageGrade float64 `json:"average_grade"`
}

// ScorePoint is a single graded attempt on a student's growth timeline.
type ScorePoint struct {
	Date  time.Time `json:"date"`
	Grade int       `json:"grade"`
}

// TeacherActivity counts homework uploads for one teacher.
type TeacherActivity struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Count       int64  `json:"count"`
}
