package events

import "time"

// Event types published by this service.
const (
	EventAnswerSubmitted = "answer.submitted"
	EventAnswerGraded    = "answer.graded"
	EventHomeworkCreated = "homework.created"
)

// AnswerSubmittedEvent is emitted when a student submits an answer that
// stays pending and awaits the student's resubmission.
type AnswerSubmittedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	StudentID  string    `json:"student_id"`
	QuestionID uint      `json:"question_id"`
	Submitted  time.Time `json:"submitted"`
}

// AnswerGradedEvent is emitted when an attempt receives its final grade.
type AnswerGradedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	StudentID  string    `json:"student_id"`
	QuestionID uint      `json:"question_id"`
	Grade      int       `json:"grade"`
	Similarity float64   `json:"similarity"`
	GradedAt   time.Time `json:"graded_at"`
}

// HomeworkCreatedEvent is emitted when a teacher uploads new homework.
type HomeworkCreatedEvent struct {
	QuestionID uint      `json:"question_id"`
	ClassLevel string    `json:"class_level"`
	Subject    string    `json:"subject"`
	UploadedBy string    `json:"uploaded_by"`
	DueDate    time.Time `json:"due_date"`
}
