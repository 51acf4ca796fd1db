package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/models"
)

// UserRepository reads portal accounts. Account creation and identity
// live in the auth provider; this service only consumes the mirrored
// rows.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	GetStudentsByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.User, error)

	// GetTeachersRanked returns teachers ordered by salary points,
	// highest first.
	GetTeachersRanked(ctx context.Context, tx *gorm.DB) ([]*models.User, error)

	CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error)

	// GetUnconfirmedStudents returns students whose fee payment has not
	// been confirmed.
	GetUnconfirmedStudents(ctx context.Context, tx *gorm.DB) ([]*models.User, error)

	// GetUnconfirmedStaff returns teachers and principals awaiting
	// account confirmation.
	GetUnconfirmedStaff(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
}
