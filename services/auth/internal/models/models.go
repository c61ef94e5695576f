package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a single credential record with a role tag. Role-specific profile
// fields live on the same row as optional columns instead of the old
// table-per-subclass split.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	Enabled      bool   `gorm:"not null;default:true"    json:"enabled"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uint      `gorm:"index;not null"        json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *PasswordResetToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *PasswordResetToken) Expired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}

// BlacklistedToken holds a bearer token revoked by logout before its natural
// expiry. Rows past ExpiresAt are safe to purge.
type BlacklistedToken struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Token         string    `gorm:"uniqueIndex;size:1024;not null" json:"-"`
	ExpiresAt     time.Time `gorm:"not null"                       json:"expires_at"`
	BlacklistedAt time.Time `gorm:"not null"                       json:"blacklisted_at"`
}

func (t *BlacklistedToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
