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

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user not found with ID %s: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &dbUser, nil
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found with email %s: %w", email, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetStudentsByClass retrieves the students enrolled in a class level
func (u *UserPostgreSQL) GetStudentsByClass(ctx context.Context, tx *gorm.DB, classLevel string) ([]*models.User, error) {
	db := u.getDB(tx)
	var students []*models.User
	err := db.WithContext(ctx).
		Where("role = ? AND class_level = ?", models.RoleStudent, classLevel).
		Order("user_name").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get students for class %s: %w", classLevel, err)
	}
	return students, nil
}

// GetTeachersRanked retrieves teachers ordered by salary points, highest first
func (u *UserPostgreSQL) GetTeachersRanked(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := u.getDB(tx)
	var teachers []*models.User
	err := db.WithContext(ctx).
		Where("role = ?", models.RoleTeacher).
		Order("salary_points DESC").
		Find(&teachers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ranked teachers: %w", err)
	}
	return teachers, nil
}

// CountByRole counts users holding a role
func (u *UserPostgreSQL) CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) (int64, error) {
	db := u.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users with role %s: %w", role, err)
	}
	return count, nil
}

// GetUnconfirmedStudents retrieves students with unconfirmed fee payment
func (u *UserPostgreSQL) GetUnconfirmedStudents(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := u.getDB(tx)
	var students []*models.User
	err := db.WithContext(ctx).
		Where("role = ? AND payment_confirmed = ?", models.RoleStudent, false).
		Order("class_level, user_name").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unconfirmed students: %w", err)
	}
	return students, nil
}

// GetUnconfirmedStaff retrieves teachers and principals awaiting confirmation
func (u *UserPostgreSQL) GetUnconfirmedStaff(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := u.getDB(tx)
	var staff []*models.User
	err := db.WithContext(ctx).
		Where("role IN ? AND is_confirmed = ?", []models.UserRole{models.RoleTeacher, models.RolePrincipal}, false).
		Order("user_name").
		Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unconfirmed staff: %w", err)
	}
	return staff, nil
}
