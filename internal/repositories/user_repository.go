package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
)

// UserRepository persists user accounts. Email lookups are exact matches.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// Mutations
	UpdateProfile(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error
}

// PasswordResetRepository stores reset tokens; rows are never deleted
type PasswordResetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, token *models.PasswordResetToken) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.PasswordResetToken, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PasswordResetToken, error)

	// MarkUsed flips is_used only if it is still false and reports whether
	// this call consumed the token.
	MarkUsed(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, token *models.RefreshToken) error
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, tx *gorm.DB, id uint, at time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error
}
