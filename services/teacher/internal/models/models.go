package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Teacher is a staff record. The password hash is the initial credential
// generated at admin registration; the row is never exposed with it.
type Teacher struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID   string    `gorm:"uniqueIndex;not null" json:"employee_id"`
	Title        string    `gorm:"not null"             json:"title"`
	FirstName    string    `gorm:"not null"             json:"first_name"`
	LastName     string    `gorm:"not null"             json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	PhoneNumber  string    `gorm:"not null"             json:"phone_number"`

	Address    string `gorm:"not null" json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`

	// Comma-separated subject list, e.g. "Mathematics,Physics".
	Subjects string `json:"subjects"`

	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Teacher) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}
