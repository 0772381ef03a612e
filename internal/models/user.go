package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleStudent    UserRole = "student"
)

// IsValid reports whether r is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:36"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName string   `json:"first_name" gorm:"size:150"`
	LastName  string   `json:"last_name" gorm:"size:150"`
	Role      UserRole `json:"role" gorm:"not null;size:20;index"`

	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// Profile
	Theme          Theme             `json:"theme" gorm:"size:10"`
	Bio            string            `json:"bio" gorm:"type:text"`
	ProfilePicture *string           `json:"profile_picture" gorm:"size:500"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`

	// Status
	IsActive    bool `json:"is_active" gorm:"not null"`
	IsStaff     bool `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser bool `json:"is_superuser" gorm:"not null;default:false;index"`

	DateJoined time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin  *time.Time `json:"last_login"`
	UpdatedAt  time.Time  `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Theme == "" {
		u.Theme = ThemeLight
	}
	return nil
}

// FullName joins first and last name the way they are displayed in listings
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
