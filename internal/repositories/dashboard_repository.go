package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository runs the aggregate queries behind the role
// dashboards. All averages consider graded attempts only.
type DashboardRepository interface {
	// AverageGrade returns the student's average over graded attempts,
	// or 0 when none exist.
	AverageGrade(ctx context.Context, tx *gorm.DB, studentID string) (float64, error)

	// SubjectAverages returns a student's per-subject graded averages.
	SubjectAverages(ctx context.Context, tx *gorm.DB, studentID string) ([]SubjectAverage, error)

	// SchoolSubjectAverages returns school-wide per-subject graded
	// averages, best first.
	SchoolSubjectAverages(ctx context.Context, tx *gorm.DB) ([]SubjectAverage, error)

	// ClassAverages returns per-class graded averages, best first.
	ClassAverages(ctx context.Context, tx *gorm.DB) ([]ClassAverage, error)

	// ScoreSeries returns a student's graded attempts as a timeline,
	// oldest first.
	ScoreSeries(ctx context.Context, tx *gorm.DB, studentID string) ([]ScorePoint, error)

	// ClassLeaderboard ranks a class's students by graded average,
	// best first.
	ClassLeaderboard(ctx context.Context, tx *gorm.DB, classLevel string) ([]LeaderboardEntry, error)

	// TopStudents ranks all students by graded average, best first,
	// capped at limit.
	TopStudents(ctx context.Context, tx *gorm.DB, limit int) ([]LeaderboardEntry, error)

	// StudentsRanked returns every graded student ordered by class level
	// then average descending, for class-wise toppers.
	StudentsRanked(ctx context.Context, tx *gorm.DB) ([]LeaderboardEntry, error)

	// UploadActivityOnDate counts homework uploads per teacher for one
	// calendar day.
	UploadActivityOnDate(ctx context.Context, tx *gorm.DB, day time.Time) ([]TeacherActivity, error)
}
