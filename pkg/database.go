package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/schoolpulse/homework-service/internal/config"
	"github.com/schoolpulse/homework-service/internal/models"
)

// InitDatabase opens the Postgres connection and runs migrations.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.HomeworkQuestion{},
		&models.AnswerAttempt{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// At most one ungraded attempt may exist per (student, question) pair.
	// Without this, two concurrent submissions can each delete zero rows and
	// both insert. AutoMigrate cannot express a partial index.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_answer_attempts_one_ungraded
		 ON answer_attempts (student_id, question_id) WHERE grade IS NULL`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create ungraded-attempt index: %w", err)
	}

	return db, nil
}
