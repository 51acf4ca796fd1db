package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/cache"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// Create creates a new homework question and invalidates cache
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.HomeworkQuestion) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create homework question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.UploadedBy, question.ClassLevel)

	return nil
}

// GetByID retrieves a homework question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.HomeworkQuestion, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.HomeworkQuestion

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.HomeworkQuestion
		if err := db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("homework question not found with ID %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get homework question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

// List retrieves homework questions matching filters with pagination
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.HomeworkQuestion, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.HomeworkQuestion{})
	query = q.helpers.ApplyQuestionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count homework questions: %w", err)
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var questions []*models.HomeworkQuestion
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list homework questions: %w", err)
	}

	return questions, total, nil
}

// GetByClass retrieves every question assigned to a class level, newest first
func (q *QuestionPostgreSQL) GetByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.HomeworkQuestion, error) {
	db := q.getDB(tx)
	var questions []*models.HomeworkQuestion
	if err := db.WithContext(ctx).
		Where("class_level = ?", classLevel).
		Order("assigned_date DESC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions for class %s: %w", classLevel, err)
	}
	return questions, nil
}

// GetByUploaderOnDate retrieves the questions a teacher uploaded on one day
func (q *QuestionPostgreSQL) GetByUploaderOnDate(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time) ([]*models.HomeworkQuestion, error) {
	db := q.getDB(tx)
	start, end := dayRange(day)

	var questions []*models.HomeworkQuestion
	if err := db.WithContext(ctx).
		Where("uploaded_by = ? AND assigned_date >= ? AND assigned_date < ?", uploaderID, start, end).
		Order("class_level, subject").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get uploads for teacher %s: %w", uploaderID, err)
	}
	return questions, nil
}

// GetByUploaderSelection narrows a teacher's uploads to one class and subject
func (q *QuestionPostgreSQL) GetByUploaderSelection(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time, classLevel, subject string) ([]*models.HomeworkQuestion, error) {
	db := q.getDB(tx)
	start, end := dayRange(day)

	var questions []*models.HomeworkQuestion
	if err := db.WithContext(ctx).
		Where("uploaded_by = ? AND assigned_date >= ? AND assigned_date < ? AND class_level = ? AND subject = ?",
			uploaderID, start, end, classLevel, subject).
		Order("id").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get upload selection for teacher %s: %w", uploaderID, err)
	}
	return questions, nil
}

// CountByUploader counts a teacher's total uploads
func (q *QuestionPostgreSQL) CountByUploader(ctx context.Context, tx *gorm.DB, uploaderID string) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.HomeworkQuestion{}).
		Where("uploaded_by = ?", uploaderID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads for teacher %s: %w", uploaderID, err)
	}
	return count, nil
}

// Count counts all homework questions
func (q *QuestionPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.HomeworkQuestion{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count homework questions: %w", err)
	}
	return count, nil
}
