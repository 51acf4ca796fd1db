package services

import (
	"context"
	"time"

	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/validator"
)

// ===== REQUEST TYPES =====

type CreateHomeworkRequest = validator.CreateHomeworkRequest
type SubmitAnswerRequest = validator.SubmitAnswerRequest
type UploadSelectionRequest = validator.UploadSelectionRequest

// ===== RESPONSE TYPES =====

// Attempt states reported to clients.
const (
	AttemptStatusFinalized = "finalized"
	AttemptStatusPending   = "pending"
)

// HomeworkResponse is the client view of an assigned question.
type HomeworkResponse struct {
	ID           uint      `json:"id"`
	ClassLevel   string    `json:"class_level"`
	Subject      string    `json:"subject"`
	Question     string    `json:"question"`
	ModelAnswer  string    `json:"model_answer,omitempty"`
	AssignedDate time.Time `json:"assigned_date"`
	DueDate      time.Time `json:"due_date"`
	UploadedBy   string    `json:"uploaded_by"`
	// TimerSeconds hints how long the answer box stays open.
	TimerSeconds int `json:"timer_seconds"`
	// Attempted is set on student listings.
	Attempted bool `json:"attempted,omitempty"`
}

// SubmitAnswerResponse reports the outcome of a submission.
type SubmitAnswerResponse struct {
	AttemptID     uint      `json:"attempt_id"`
	QuestionID    uint      `json:"question_id"`
	Status        string    `json:"status"`
	Grade         *int      `json:"grade,omitempty"`
	GradeLabel    string    `json:"grade_label,omitempty"`
	Remark        string    `json:"remark"`
	Similarity    *float64  `json:"similarity,omitempty"`
	SubmittedDate time.Time `json:"submitted_date"`
}

// AttemptResponse is the client view of an answer attempt.
type AttemptResponse struct {
	ID            uint      `json:"id"`
	QuestionID    uint      `json:"question_id"`
	Subject       string    `json:"subject,omitempty"`
	Question      string    `json:"question,omitempty"`
	AnswerText    string    `json:"answer_text"`
	Grade         *int      `json:"grade,omitempty"`
	GradeLabel    string    `json:"grade_label,omitempty"`
	Remark        string    `json:"remark,omitempty"`
	Status        string    `json:"status"`
	SubmittedDate time.Time `json:"submitted_date"`
}

// PendingHomeworkEntry pairs a pending question with the student's prior
// ungraded attempt, when one exists, so the resubmission page can show
// the last answer and its remark.
type PendingHomeworkEntry struct {
	*HomeworkResponse
	PriorAttempt *AttemptResponse `json:"prior_attempt,omitempty"`
}

// UserSummary is the minimal user view used in dashboards.
type UserSummary struct {
	ID               string `json:"id"`
	UserName         string `json:"user_name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	ClassLevel       string `json:"class_level,omitempty"`
	PaymentConfirmed bool   `json:"payment_confirmed,omitempty"`
	IsConfirmed      bool   `json:"is_confirmed,omitempty"`
	SalaryPoints     int    `json:"salary_points,omitempty"`
}

// StudentDashboard aggregates a student's standing and workload.
type StudentDashboard struct {
	AssignedCount    int                            `json:"assigned_count"`
	CompletedCount   int                            `json:"completed_count"`
	PendingCount     int                            `json:"pending_count"`
	AverageGrade     float64                        `json:"average_grade"`
	AverageLabel     string                         `json:"average_label"`
	SubjectAverages  []repositories.SubjectAverage  `json:"subject_averages"`
	Growth           []repositories.ScorePoint      `json:"growth"`
	ClassRank        int                            `json:"class_rank"`
	ClassToppers     []repositories.LeaderboardEntry `json:"class_toppers"`
	PendingHomework  []*PendingHomeworkEntry        `json:"pending_homework"`
	GradedAttempts   []*AttemptResponse             `json:"graded_attempts"`
	PaymentConfirmed bool                           `json:"payment_confirmed"`
}

// TeacherDashboard aggregates a teacher's uploads, standing and the
// school totals shown alongside them.
type TeacherDashboard struct {
	StudentCount     int64                                      `json:"student_count"`
	AttemptCount     int64                                      `json:"attempt_count"`
	TotalUploads     int64                                      `json:"total_uploads"`
	TodayUploads     []*HomeworkResponse                        `json:"today_uploads"`
	SalaryPoints     int                                        `json:"salary_points"`
	SalaryRank       int                                        `json:"salary_rank"`
	TopStudents      []repositories.LeaderboardEntry            `json:"top_students"`
	ClasswiseToppers map[string][]repositories.LeaderboardEntry `json:"classwise_toppers"`
}

// PrincipalDashboard aggregates school-wide analytics.
type PrincipalDashboard struct {
	StudentCount    int64                           `json:"student_count"`
	TeacherCount    int64                           `json:"teacher_count"`
	QuestionCount   int64                           `json:"question_count"`
	SubjectRankings []repositories.SubjectAverage   `json:"subject_rankings"`
	ClassRankings   []repositories.ClassAverage     `json:"class_rankings"`
	TodayActivity   []repositories.TeacherActivity  `json:"today_activity"`
	TeachersRanked  []UserSummary                   `json:"teachers_ranked"`
	TopStudents     []repositories.LeaderboardEntry `json:"top_students"`
}

// AdminDashboard aggregates administration counts and pending confirmations.
type AdminDashboard struct {
	StudentCount        int64         `json:"student_count"`
	TeacherCount        int64         `json:"teacher_count"`
	QuestionCount       int64         `json:"question_count"`
	AttemptCount        int64         `json:"attempt_count"`
	UnconfirmedStudents []UserSummary `json:"unconfirmed_students"`
	UnconfirmedStaff    []UserSummary `json:"unconfirmed_staff"`
}

// ===== SERVICE INTERFACES =====

// HomeworkService manages the homework question lifecycle.
type HomeworkService interface {
	Create(ctx context.Context, req *CreateHomeworkRequest, uploaderID string) (*HomeworkResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*HomeworkResponse, error)

	// ListForClass returns every question assigned to a class level.
	ListForClass(ctx context.Context, classLevel string) ([]*HomeworkResponse, error)

	// ListForStudent returns the student's pending homework: questions
	// for their class without a graded attempt, flagged when a pending
	// attempt exists.
	ListForStudent(ctx context.Context, studentID string) ([]*HomeworkResponse, error)

	// TodayUploads returns what the teacher uploaded today.
	TodayUploads(ctx context.Context, teacherID string) ([]*HomeworkResponse, error)

	// UploadSelection narrows today's uploads to one class and subject.
	UploadSelection(ctx context.Context, teacherID string, req *UploadSelectionRequest) ([]*HomeworkResponse, error)
}

// SubmissionService manages answer submission and auto-grading.
type SubmissionService interface {
	// Submit records a student's answer. Any prior ungraded attempt for
	// the same question is replaced; graded attempts are immutable.
	Submit(ctx context.Context, req *SubmitAnswerRequest, studentID string) (*SubmitAnswerResponse, error)

	// GetLatestAttempt returns the student's most recent attempt for a question.
	GetLatestAttempt(ctx context.Context, studentID string, questionID uint) (*AttemptResponse, error)

	// PreviousAttempt returns the student's pending attempt for a question
	// so the resubmission page can show the last answer and its remark.
	PreviousAttempt(ctx context.Context, studentID string, questionID uint) (*AttemptResponse, error)

	// ListGraded returns the student's graded attempts, newest first.
	ListGraded(ctx context.Context, studentID string) ([]*AttemptResponse, error)
}

// DashboardService builds the role dashboards.
type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID string) (*StudentDashboard, error)
	TeacherDashboard(ctx context.Context, teacherID string) (*TeacherDashboard, error)
	PrincipalDashboard(ctx context.Context) (*PrincipalDashboard, error)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)

	// ForUser dispatches to the dashboard matching the user's role.
	ForUser(ctx context.Context, userID string) (interface{}, error)
}

// ReportService exports school analytics.
type ReportService interface {
	// ExportSchoolReport renders the principal analytics as an xlsx workbook.
	ExportSchoolReport(ctx context.Context) ([]byte, error)
}

// ServiceManager wires and manages all services.
type ServiceManager interface {
	Homework() HomeworkService
	Submission() SubmissionService
	Dashboard() DashboardService
	Report() ReportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
