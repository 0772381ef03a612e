package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// ===== PASSWORD RESET TOKENS =====

type PasswordResetPostgreSQL struct {
	db *gorm.DB
}

func NewPasswordResetPostgreSQL(db *gorm.DB) repositories.PasswordResetRepository {
	return &PasswordResetPostgreSQL{db: db}
}

func (p *PasswordResetPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PasswordResetPostgreSQL) Create(ctx context.Context, tx *gorm.DB, token *models.PasswordResetToken) error {
	if err := p.getDB(tx).WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

func (p *PasswordResetPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.PasswordResetToken, error) {
	var reset models.PasswordResetToken
	if err := p.getDB(tx).WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &reset, nil
}

func (p *PasswordResetPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.PasswordResetToken, error) {
	var tokens []*models.PasswordResetToken
	if err := p.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list reset tokens: %w", err)
	}
	return tokens, nil
}

func (p *PasswordResetPostgreSQL) MarkUsed(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := p.getDB(tx).WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark reset token used: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ===== REFRESH TOKENS =====

type RefreshTokenPostgreSQL struct {
	db *gorm.DB
}

func NewRefreshTokenPostgreSQL(db *gorm.DB) repositories.RefreshTokenRepository {
	return &RefreshTokenPostgreSQL{db: db}
}

func (r *RefreshTokenPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *RefreshTokenPostgreSQL) Create(ctx context.Context, tx *gorm.DB, token *models.RefreshToken) error {
	if err := r.getDB(tx).WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenPostgreSQL) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.getDB(tx).WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &token, nil
}

// Revoke reports false when the token was already revoked
func (r *RefreshTokenPostgreSQL) Revoke(ctx context.Context, tx *gorm.DB, id uint, at time.Time) (bool, error) {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *RefreshTokenPostgreSQL) RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID string, at time.Time) error {
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}
