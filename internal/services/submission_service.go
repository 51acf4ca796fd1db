package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/events"
	"github.com/schoolpulse/homework-service/internal/grading"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/validator"
)

type submissionService struct {
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewSubmissionService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// Submit records a student's answer attempt. The answer is scored against
// the question's model answer; a passing band finalizes the attempt and
// makes it immutable, while a failing band stores it ungraded with a
// corrective remark so the student can resubmit. The replace runs inside
// one transaction, and the partial unique index on ungraded attempts
// rejects a concurrent submission whose pending row this transaction
// cannot see yet.
func (s *submissionService) Submit(ctx context.Context, req *SubmitAnswerRequest, studentID string) (*SubmitAnswerResponse, error) {
	if verrs := s.validator.ValidateSubmission(req); len(verrs) > 0 {
		return nil, verrs
	}

	student, err := s.repo.User().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(studentID, "homework", "submit", "only students submit answers")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.ClassLevel != student.ClassLevel {
		return nil, NewPermissionError(studentID, "homework", "submit", "question is not assigned to the student's class")
	}

	attempt := &models.AnswerAttempt{
		StudentID:     studentID,
		QuestionID:    question.ID,
		AnswerText:    req.AnswerText,
		SubmittedDate: time.Now(),
		Status:        models.AttemptPending,
	}

	var similarity float64
	var band int
	scored := strings.TrimSpace(question.ModelAnswer) != ""
	if scored {
		similarity = grading.Similarity(req.AnswerText, question.ModelAnswer)
		band = grading.GradeFor(similarity)
		attempt.Remark = grading.RemarkFor(band, similarity)
		// Below the passing band the attempt stays ungraded so the
		// student can resubmit; the grade is only reported back.
		if band >= grading.PassingGrade {
			attempt.Grade = &band
			attempt.Status = models.AttemptFinalized
		}
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// A finalized attempt must never be replaced.
		if latest, err := txRepo.Answer().GetLatest(ctx, nil, studentID, question.ID); err == nil && latest.IsGraded() {
			return ErrAlreadyGraded
		} else if err != nil && !repositories.IsNotFoundError(err) {
			return err
		}

		if err := txRepo.Answer().DeleteUngraded(ctx, nil, studentID, question.ID); err != nil {
			return err
		}
		return txRepo.Answer().Create(ctx, nil, attempt)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrConcurrentSubmission
		}
		return nil, err
	}

	s.publishSubmissionEvent(ctx, attempt, similarity)

	resp := &SubmitAnswerResponse{
		AttemptID:     attempt.ID,
		QuestionID:    attempt.QuestionID,
		Status:        AttemptStatusPending,
		Remark:        attempt.Remark,
		SubmittedDate: attempt.SubmittedDate,
	}
	if scored {
		resp.Grade = &band
		resp.GradeLabel = grading.GradeLabel(band)
		resp.Similarity = &similarity
	}
	if attempt.IsGraded() {
		resp.Status = AttemptStatusFinalized
	}

	s.logger.Info("Answer submitted",
		"student_id", studentID,
		"question_id", question.ID,
		"status", resp.Status)

	return resp, nil
}

// GetLatestAttempt returns the student's most recent attempt for a question.
func (s *submissionService) GetLatestAttempt(ctx context.Context, studentID string, questionID uint) (*AttemptResponse, error) {
	attempt, err := s.repo.Answer().GetLatest(ctx, nil, studentID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}
	return toAttemptResponse(attempt), nil
}

// PreviousAttempt returns the student's pending attempt for a question,
// or a not-found error once the pair is finalized or never attempted.
func (s *submissionService) PreviousAttempt(ctx context.Context, studentID string, questionID uint) (*AttemptResponse, error) {
	attempt, err := s.repo.Answer().GetUngraded(ctx, nil, studentID, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get pending attempt: %w", err)
	}
	return toAttemptResponse(attempt), nil
}

// ListGraded returns the student's graded attempts, newest first.
func (s *submissionService) ListGraded(ctx context.Context, studentID string) ([]*AttemptResponse, error) {
	attempts, err := s.repo.Answer().GetGradedByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list graded attempts: %w", err)
	}

	responses := make([]*AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, toAttemptResponse(attempt))
	}
	return responses, nil
}

func (s *submissionService) publishSubmissionEvent(ctx context.Context, attempt *models.AnswerAttempt, similarity float64) {
	if s.eventPublisher == nil {
		return
	}

	var event *events.Event
	if attempt.IsGraded() {
		event = events.NewEvent(events.EventAnswerGraded, events.AnswerGradedEvent{
			AttemptID:  attempt.ID,
			StudentID:  attempt.StudentID,
			QuestionID: attempt.QuestionID,
			Grade:      *attempt.Grade,
			Similarity: similarity,
			GradedAt:   attempt.SubmittedDate,
		})
	} else {
		event = events.NewEvent(events.EventAnswerSubmitted, events.AnswerSubmittedEvent{
			AttemptID:  attempt.ID,
			StudentID:  attempt.StudentID,
			QuestionID: attempt.QuestionID,
			Submitted:  attempt.SubmittedDate,
		})
	}

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish submission event",
			"error", err,
			"event_type", event.Type,
			"attempt_id", attempt.ID)
	}
}

func toAttemptResponse(attempt *models.AnswerAttempt) *AttemptResponse {
	resp := &AttemptResponse{
		ID:            attempt.ID,
		QuestionID:    attempt.QuestionID,
		AnswerText:    attempt.AnswerText,
		Grade:         attempt.Grade,
		Remark:        attempt.Remark,
		Status:        AttemptStatusPending,
		SubmittedDate: attempt.SubmittedDate,
	}
	if attempt.IsGraded() {
		resp.Status = AttemptStatusFinalized
		resp.GradeLabel = grading.GradeLabel(*attempt.Grade)
	}
	if attempt.Question.ID != 0 {
		resp.Subject = attempt.Question.Subject
		resp.Question = attempt.Question.Question
	}
	return resp
}
