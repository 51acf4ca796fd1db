package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleTeacher   UserRole = "teacher"
	RoleAdmin     UserRole = "admin"
	RolePrincipal UserRole = "principal"
)

// IsStaff reports whether the role goes through the admin identity
// confirmation flow instead of the student payment flow.
func (r UserRole) IsStaff() bool {
	return r == RoleTeacher || r == RolePrincipal
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	UserName string   `json:"user_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;index;size:20"`

	// Students
	ClassLevel       string `json:"class_level" gorm:"index;size:10"`
	PaymentConfirmed bool   `json:"payment_confirmed" gorm:"default:false"`

	// Teachers / principals
	IsConfirmed  bool `json:"is_confirmed" gorm:"default:false"`
	SalaryPoints int  `json:"salary_points" gorm:"default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
