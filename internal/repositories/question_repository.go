package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/models"
)

// QuestionRepository manages homework questions.
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.HomeworkQuestion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.HomeworkQuestion, error)
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.HomeworkQuestion, int64, error)

	// GetByClass returns every question assigned to a class level,
	// newest first.
	GetByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.HomeworkQuestion, error)

	// GetByUploaderOnDate returns the questions a teacher uploaded on the
	// given calendar day.
	GetByUploaderOnDate(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time) ([]*models.HomeworkQuestion, error)

	// GetByUploaderSelection narrows a teacher's uploads for one day to a
	// class and subject, for the upload detail view.
	GetByUploaderSelection(ctx context.Context, tx *gorm.DB, uploaderID string, day time.Time, classLevel, subject string) ([]*models.HomeworkQuestion, error)

	CountByUploader(ctx context.Context, tx *gorm.DB, uploaderID string) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
