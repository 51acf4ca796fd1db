package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/events"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/validator"
)

// minTimerSeconds is the floor for the answer-box countdown.
const minTimerSeconds = 10

type homeworkService struct {
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewHomeworkService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) HomeworkService {
	return &homeworkService{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// Create uploads a homework question for a class. Students cannot upload.
// When no due date is given the question falls due one day after upload.
func (s *homeworkService) Create(ctx context.Context, req *CreateHomeworkRequest, uploaderID string) (*HomeworkResponse, error) {
	if verrs := s.validator.ValidateHomeworkCreate(req); len(verrs) > 0 {
		return nil, verrs
	}

	uploader, err := s.repo.User().GetByID(ctx, nil, uploaderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get uploader: %w", err)
	}
	if !uploader.Role.IsStaff() && uploader.Role != models.RoleAdmin {
		return nil, NewPermissionError(uploaderID, "homework", "create", "students cannot upload homework")
	}

	now := time.Now()
	dueDate := now.AddDate(0, 0, 1)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	question := &models.HomeworkQuestion{
		ClassLevel:   req.ClassLevel,
		Subject:      req.Subject,
		Question:     req.Question,
		ModelAnswer:  req.ModelAnswer,
		AssignedDate: now,
		DueDate:      dueDate,
		UploadedBy:   uploaderID,
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create homework: %w", err)
	}

	s.publishCreatedEvent(ctx, question)

	s.logger.Info("Homework uploaded",
		"question_id", question.ID,
		"class_level", question.ClassLevel,
		"subject", question.Subject,
		"uploader_id", uploaderID)

	return s.toResponse(question, true), nil
}

// GetByID returns a question. Students only see questions assigned to
// their class, and never the model answer.
func (s *homeworkService) GetByID(ctx context.Context, id uint, userID string) (*HomeworkResponse, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get homework: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleStudent {
		if question.ClassLevel != user.ClassLevel {
			return nil, NewPermissionError(userID, "homework", "view", "question is not assigned to the student's class")
		}
		return s.toResponse(question, false), nil
	}

	return s.toResponse(question, true), nil
}

// ListForClass returns every question assigned to a class level.
func (s *homeworkService) ListForClass(ctx context.Context, classLevel string) ([]*HomeworkResponse, error) {
	if !models.ValidClassLevel(classLevel) {
		return nil, NewValidationError("class_level", "must be a valid class level", classLevel)
	}

	questions, err := s.repo.Question().GetByClass(ctx, nil, classLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to list homework for class: %w", err)
	}

	return s.toResponses(questions, true), nil
}

// ListForStudent returns the student's pending homework: class questions
// without a graded attempt, flagged when a pending attempt exists.
func (s *homeworkService) ListForStudent(ctx context.Context, studentID string) ([]*HomeworkResponse, error) {
	student, err := s.repo.User().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(studentID, "homework", "list", "not a student account")
	}

	questions, err := s.repo.Question().GetByClass(ctx, nil, student.ClassLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to list class homework: %w", err)
	}

	gradedIDs, err := s.repo.Answer().GetGradedQuestionIDs(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get graded question IDs: %w", err)
	}
	graded := make(map[uint]bool, len(gradedIDs))
	for _, id := range gradedIDs {
		graded[id] = true
	}

	pending := make([]*models.HomeworkQuestion, 0, len(questions))
	pendingIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		if !graded[q.ID] {
			pending = append(pending, q)
			pendingIDs = append(pendingIDs, q.ID)
		}
	}

	attempted, err := s.repo.Answer().HasAnyAttempt(ctx, nil, studentID, pendingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check prior attempts: %w", err)
	}

	responses := make([]*HomeworkResponse, 0, len(pending))
	for _, q := range pending {
		resp := s.toResponse(q, false)
		resp.Attempted = attempted[q.ID]
		responses = append(responses, resp)
	}
	return responses, nil
}

// TodayUploads returns what the teacher uploaded today.
func (s *homeworkService) TodayUploads(ctx context.Context, teacherID string) ([]*HomeworkResponse, error) {
	questions, err := s.repo.Question().GetByUploaderOnDate(ctx, nil, teacherID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list today's uploads: %w", err)
	}
	return s.toResponses(questions, true), nil
}

// UploadSelection narrows today's uploads to one class and subject.
func (s *homeworkService) UploadSelection(ctx context.Context, teacherID string, req *UploadSelectionRequest) ([]*HomeworkResponse, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	questions, err := s.repo.Question().GetByUploaderSelection(ctx, nil, teacherID, time.Now(), req.ClassLevel, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload selection: %w", err)
	}
	return s.toResponses(questions, true), nil
}

func (s *homeworkService) publishCreatedEvent(ctx context.Context, question *models.HomeworkQuestion) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(events.EventHomeworkCreated, events.HomeworkCreatedEvent{
		QuestionID: question.ID,
		ClassLevel: question.ClassLevel,
		Subject:    question.Subject,
		UploadedBy: question.UploadedBy,
		DueDate:    question.DueDate,
	})

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish homework created event",
			"error", err,
			"question_id", question.ID)
	}
}

func (s *homeworkService) toResponse(q *models.HomeworkQuestion, includeModelAnswer bool) *HomeworkResponse {
	resp := &HomeworkResponse{
		ID:           q.ID,
		ClassLevel:   q.ClassLevel,
		Subject:      q.Subject,
		Question:     q.Question,
		AssignedDate: q.AssignedDate,
		DueDate:      q.DueDate,
		UploadedBy:   q.UploadedBy,
		TimerSeconds: timerSeconds(q.ModelAnswer),
	}
	if includeModelAnswer {
		resp.ModelAnswer = q.ModelAnswer
	}
	return resp
}

func (s *homeworkService) toResponses(questions []*models.HomeworkQuestion, includeModelAnswer bool) []*HomeworkResponse {
	responses := make([]*HomeworkResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, s.toResponse(q, includeModelAnswer))
	}
	return responses
}

// timerSeconds sizes the answer countdown to the reference answer's
// length, one second per word with a ten second floor.
func timerSeconds(modelAnswer string) int {
	words := len(strings.Fields(modelAnswer))
	if words < minTimerSeconds {
		return minTimerSeconds
	}
	return words
}
