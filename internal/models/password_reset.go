package models

import "time"

// PasswordResetToken is created on a forgot-password request and consumed
// once by a successful reset. Rows are never deleted.
type PasswordResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index;size:36"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null;size:128"`
	IsUsed    bool      `json:"is_used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsValid reports whether the token can still be redeemed at now
func (t *PasswordResetToken) IsValid(now time.Time, ttl time.Duration) bool {
	if t.IsUsed {
		return false
	}
	return now.Sub(t.CreatedAt) <= ttl
}

// RefreshToken backs the refresh half of a session token pair. Only a hash
// of the JWT id is stored.
type RefreshToken struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"not null;index;size:36"`
	TokenHash string     `json:"-" gorm:"uniqueIndex;not null;size:64"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
