package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/models"
)

// AnswerRepository manages answer attempts.
type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.AnswerAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AnswerAttempt, error)
	List(ctx context.Context, tx *gorm.DB, filters AnswerFilters) ([]*models.AnswerAttempt, int64, error)

	// GetUngraded returns the student's ungraded attempt for a question,
	// or a not-found error when none exists.
	GetUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error)

	// DeleteUngraded removes the student's ungraded attempts for a
	// question. Graded attempts are never touched.
	DeleteUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) error

	// GetLatest returns the student's most recent attempt for a question,
	// graded or not, or a not-found error when none exists.
	GetLatest(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error)

	// GetGradedByStudent returns the student's graded attempts, newest
	// first, with the question preloaded.
	GetGradedByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.AnswerAttempt, error)

	// GetGradedQuestionIDs returns the IDs of questions the student has a
	// graded attempt for.
	GetGradedQuestionIDs(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error)

	// HasAnyAttempt reports whether the student has submitted for any of
	// the given questions.
	HasAnyAttempt(ctx context.Context, tx *gorm.DB, studentID string, questionIDs []uint) (map[uint]bool, error)

	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
