package validator

import "time"

// CreateHomeworkRequest represents the request structure for uploading homework
type CreateHomeworkRequest struct {
	ClassLevel  string     `json:"class_level" validate:"required,class_level"`
	Subject     string     `json:"subject" validate:"required,subject"`
	Question    string     `json:"question" validate:"required,min=1,max=4000"`
	ModelAnswer string     `json:"model_answer" validate:"required,min=1,max=8000"`
	DueDate     *time.Time `json:"due_date" validate:"omitempty"`
}

// SubmitAnswerRequest represents the request structure for submitting an answer
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	AnswerText string `json:"answer_text" validate:"required,max=8000"`
}

// UploadSelectionRequest narrows a teacher's uploads to one class and subject
type UploadSelectionRequest struct {
	ClassLevel string `json:"class_level" validate:"required,class_level"`
	Subject    string `json:"subject" validate:"required,subject"`
}
