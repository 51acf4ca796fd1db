package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/cache"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

// AverageGrade returns the student's average over graded attempts, 0 when none
func (d *DashboardPostgreSQL) AverageGrade(ctx context.Context, tx *gorm.DB, studentID string) (float64, error) {
	db := d.getDB(tx)
	var avg float64
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Where("student_id = ? AND grade IS NOT NULL", studentID).
		Select("COALESCE(AVG(grade), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average grade for student %s: %w", studentID, err)
	}
	return avg, nil
}

// SubjectAverages returns a student's per-subject graded averages, best first
func (d *DashboardPostgreSQL) SubjectAverages(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.SubjectAverage, error) {
	db := d.getDB(tx)
	var rows []repositories.SubjectAverage
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Select("homework_questions.subject AS subject, AVG(answer_attempts.grade) AS average_grade").
		Joins("JOIN homework_questions ON homework_questions.id = answer_attempts.question_id").
		Where("answer_attempts.student_id = ? AND answer_attempts.grade IS NOT NULL", studentID).
		Group("homework_questions.subject").
		Order("average_grade DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute subject averages for student %s: %w", studentID, err)
	}
	return rows, nil
}

// SchoolSubjectAverages returns school-wide per-subject graded averages, best first, cached briefly
func (d *DashboardPostgreSQL) SchoolSubjectAverages(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectAverage, error) {
	db := d.getDB(tx)
	var rows []repositories.SubjectAverage

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, "school_subjects", &rows, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []repositories.SubjectAverage
		err := db.WithContext(ctx).
			Model(&models.AnswerAttempt{}).
			Select("homework_questions.subject AS subject, AVG(answer_attempts.grade) AS average_grade").
			Joins("JOIN homework_questions ON homework_questions.id = answer_attempts.question_id").
			Where("answer_attempts.grade IS NOT NULL").
			Group("homework_questions.subject").
			Order("average_grade DESC").
			Scan(&dbRows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to compute school subject averages: %w", err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClassAverages returns per-class graded averages, best first, cached briefly
func (d *DashboardPostgreSQL) ClassAverages(ctx context.Context, tx *gorm.DB) ([]repositories.ClassAverage, error) {
	db := d.getDB(tx)
	var rows []repositories.ClassAverage

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, "class_averages", &rows, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []repositories.ClassAverage
		err := db.WithContext(ctx).
			Model(&models.AnswerAttempt{}).
			Select("users.class_level AS class_level, AVG(answer_attempts.grade) AS average_grade").
			Joins("JOIN users ON users.id = answer_attempts.student_id").
			Where("answer_attempts.grade IS NOT NULL").
			Group("users.class_level").
			Order("average_grade DESC").
			Scan(&dbRows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to compute class averages: %w", err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ScoreSeries returns a student's graded attempts as a timeline, oldest first
func (d *DashboardPostgreSQL) ScoreSeries(ctx context.Context, tx *gorm.DB, studentID string) ([]repositories.ScorePoint, error) {
	db := d.getDB(tx)
	var rows []repositories.ScorePoint
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Select("submitted_date AS date, grade").
		Where("student_id = ? AND grade IS NOT NULL", studentID).
		Order("submitted_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get score series for student %s: %w", studentID, err)
	}
	return rows, nil
}

// ClassLeaderboard ranks a class's students by graded average, best first, cached briefly
func (d *DashboardPostgreSQL) ClassLeaderboard(ctx context.Context, tx *gorm.DB, classLevel string) ([]repositories.LeaderboardEntry, error) {
	db := d.getDB(tx)
	cacheKey := fmt.Sprintf("leaderboard:%s", classLevel)
	var rows []repositories.LeaderboardEntry

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, cacheKey, &rows, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		var dbRows []repositories.LeaderboardEntry
		err := db.WithContext(ctx).
			Model(&models.AnswerAttempt{}).
			Select("users.id AS student_id, users.user_name AS student_name, users.class_level AS class_level, AVG(answer_attempts.grade) AS average_grade").
			Joins("JOIN users ON users.id = answer_attempts.student_id").
			Where("answer_attempts.grade IS NOT NULL AND users.class_level = ?", classLevel).
			Group("users.id, users.user_name, users.class_level").
			Order("average_grade DESC").
			Scan(&dbRows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to compute leaderboard for class %s: %w", classLevel, err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopStudents ranks all students by graded average, best first, capped at limit, cached briefly
func (d *DashboardPostgreSQL) TopStudents(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.LeaderboardEntry, error) {
	db := d.getDB(tx)
	cacheKey := fmt.Sprintf("top:%d", limit)
	var rows []repositories.LeaderboardEntry

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, cacheKey, &rows, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		query := db.WithContext(ctx).
			Model(&models.AnswerAttempt{}).
			Select("users.id AS student_id, users.user_name AS student_name, users.class_level AS class_level, AVG(answer_attempts.grade) AS average_grade").
			Joins("JOIN users ON users.id = answer_attempts.student_id").
			Where("answer_attempts.grade IS NOT NULL").
			Group("users.id, users.user_name, users.class_level").
			Order("average_grade DESC")

		if limit > 0 {
			query = query.Limit(limit)
		}

		var dbRows []repositories.LeaderboardEntry
		if err := query.Scan(&dbRows).Error; err != nil {
			return nil, fmt.Errorf("failed to compute top students: %w", err)
		}
		return dbRows, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// StudentsRanked returns graded students ordered by class then average descending
func (d *DashboardPostgreSQL) StudentsRanked(ctx context.Context, tx *gorm.DB) ([]repositories.LeaderboardEntry, error) {
	db := d.getDB(tx)
	var rows []repositories.LeaderboardEntry
	err := db.WithContext(ctx).
		Model(&models.AnswerAttempt{}).
		Select("users.id AS student_id, users.user_name AS student_name, users.class_level AS class_level, AVG(answer_attempts.grade) AS average_grade").
		Joins("JOIN users ON users.id = answer_attempts.student_id").
		Where("answer_attempts.grade IS NOT NULL").
		Group("users.id, users.user_name, users.class_level").
		Order("users.class_level, average_grade DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank students: %w", err)
	}
	return rows, nil
}

// UploadActivityOnDate counts homework uploads per teacher for one calendar day
func (d *DashboardPostgreSQL) UploadActivityOnDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]repositories.TeacherActivity, error) {
	db := d.getDB(tx)
	start, end := dayRange(day)

	var rows []repositories.TeacherActivity
	err := db.WithContext(ctx).
		Model(&models.HomeworkQuestion{}).
		Select("users.id AS teacher_id, users.user_name AS teacher_name, COUNT(homework_questions.id) AS count").
		Joins("JOIN users ON users.id = homework_questions.uploaded_by").
		Where("homework_questions.assigned_date >= ? AND homework_questions.assigned_date < ?", start, end).
		Group("users.id, users.user_name").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get upload activity: %w", err)
	}
	return rows, nil
}
