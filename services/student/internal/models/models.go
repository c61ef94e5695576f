package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"

	LivesWithBothParents = "BOTH_PARENTS"
	LivesWithMother      = "MOTHER"
	LivesWithFather      = "FATHER"
	LivesWithGuardian    = "GUARDIAN"
)

type Student struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AdmissionNumber string    `gorm:"uniqueIndex"          json:"admission_number"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`

	Surname     string `gorm:"not null" json:"surname"`
	FirstName   string `gorm:"not null" json:"first_name"`
	MiddleNames string `json:"middle_names"`

	Gender      string    `gorm:"not null" json:"gender"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`

	ClassAppliedFor string `json:"class_applied_for"`
	ClassAdmittedTo string `json:"class_admitted_to"`
	PreviousSchool  string `json:"previous_school"`

	ResidentialAddress string `json:"residential_address"`
	Nationality        string `json:"nationality"`
	BloodGroup         string `json:"blood_group"`
	LivesWith          string `json:"lives_with"`

	Active bool `gorm:"not null;default:true" json:"active"`

	Guardians []StudentGuardian `gorm:"constraint:OnDelete:CASCADE" json:"guardians"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Student) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StudentGuardian rows are owned by their student and replaced wholesale on
// update.
type StudentGuardian struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID `gorm:"type:uuid;index;not null" json:"student_id"`
	Relationship string    `gorm:"not null" json:"relationship"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	Email        string    `json:"email"`
	Occupation   string    `json:"occupation"`
}

func (g *StudentGuardian) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
