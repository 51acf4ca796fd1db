package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/cache"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAnswerPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create creates a new answer attempt and invalidates the student's caches.
// An ungraded insert that collides with the one-ungraded-attempt index
// surfaces as a duplicate error.
func (a *AnswerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.AnswerAttempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("attempt already live for student %s question %d: %w",
				attempt.StudentID, attempt.QuestionID, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to create answer attempt: %w", err)
	}

	cache.InvalidateAnswerCache(ctx, a.cacheManager, attempt.StudentID, attempt.QuestionID)

	return nil
}

// GetByID retrieves an answer attempt by ID
func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AnswerAttempt, error) {
	db := a.getDB(tx)
	var attempt models.AnswerAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer attempt not found with ID %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get answer attempt: %w", err)
	}
	return &attempt, nil
}

// List retrieves answer attempts matching filters with pagination
func (a *AnswerPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AnswerFilters) ([]*models.AnswerAttempt, int64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.AnswerAttempt{})
	query = a.helpers.ApplyAnswerFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count answer attempts: %w", err)
	}

	query = a.helpers.ApplyPaginationAndSort(query, "submitted_date", "desc", filters.Limit, filters.Offset)

	var attempts []*models.AnswerAttempt
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list answer attempts: %w", err)
	}

	return attempts, total, nil
}

// GetUngraded returns the student's ungraded attempt for a question
func (a *AnswerPostgreSQL) GetUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error) {
	db := a.getDB(tx)
	var attempt models.AnswerAttempt
	err := db.WithContext(ctx).
		Where("student_id = ? AND question_id = ? AND grade IS NULL", studentID, questionID).
		Order("submitted_date DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no ungraded attempt for student %s question %d: %w", studentID, questionID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ungraded attempt: %w", err)
	}
	return &attempt, nil
}

// DeleteUngraded removes the student's ungraded attempts for a question.
// Attempts that already carry a grade are never deleted.
func (a *AnswerPostgreSQL) DeleteUngraded(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) error {
	db := a.getDB(tx)
	err := db.WithContext(ctx).
		Where("student_id = ? AND question_id = ? AND grade IS NULL", studentID, questionID).
		Delete(&models.AnswerAttempt{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete ungraded attempts: %w", err)
	}

	cache.InvalidateAnswerCache(ctx, a.cacheManager, studentID, questionID)

	return nil
}

// GetLatest returns the student's most recent attempt for a question
func (a *AnswerPostgreSQL) GetLatest(ctx context.Context, tx *gorm.DB, studentID string, questionID uint) (*models.AnswerAttempt, error) {
	db := a.getDB(tx)
	var attempt models.AnswerAttempt
	err := db.WithContext(ctx).
		Where("student_id = ? AND question_id = ?", studentID, questionID).
		Order("submitted_date DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no attempt for student %s question %d: %w", studentID, questionID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}
	return &attempt, nil
}

// GetGradedByStudent returns the student's graded attempts, newest first
func (a *AnswerPostgreSQL) GetGradedByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.AnswerAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.AnswerAttempt
	err := db.WithContext(ctx).
		Preload("Question").
		Where("student_id = ? AND grade IS NOT NULL", studentID).
		Order("submitted_date DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get graded attempts for student %s: %w", studentID, err)
	}
	return attempts, nil
}

// GetGradedQuestionIDs returns the question IDs the student has a graded attempt for
func (a *AnswerPostgreSQL) GetGradedQuestionIDs(ctx context.Context, tx *gorm.DB, studentID string) ([]uint, error) {
	db := a.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Where("student_id = ? AND grade IS NOT NULL", studentID).
		Distinct().
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get graded question IDs for student %s: %w", studentID, err)
	}
	return ids, nil
}

// HasAnyAttempt reports, per question, whether the student has submitted at all
func (a *AnswerPostgreSQL) HasAnyAttempt(ctx context.Context, tx *gorm.DB, studentID string, questionIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}

	db := a.getDB(tx)
	var attempted []uint
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Where("student_id = ? AND question_id IN ?", studentID, questionIDs).
		Distinct().
		Pluck("question_id", &attempted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check attempts for student %s: %w", studentID, err)
	}

	for _, id := range attempted {
		result[id] = true
	}
	return result, nil
}

// Count counts all answer attempts
func (a *AnswerPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.AnswerAttempt{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count answer attempts: %w", err)
	}
	return count, nil
}
