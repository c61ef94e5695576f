package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/altera-edu/school-platform/pkg/events"
	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/services/student/internal/models"
	"github.com/altera-edu/school-platform/services/student/internal/repo"
	"github.com/altera-edu/school-platform/services/student/internal/search"
	"github.com/altera-edu/school-platform/services/student/internal/transport"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("email already in use")
	ErrNotFound   = errors.New("not found")
)

const admissionNumberPrefix = "ADM-"

type StudentService struct {
	Repo    *repo.GormRepo
	Indexer *search.Indexer
	Events  events.Publisher
}

func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.Repo.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context, offset, limit int) (int64, []models.Student, error) {
	return s.Repo.ListStudents(ctx, offset, limit)
}

func (s *StudentService) Create(ctx context.Context, req transport.CreateStudentRequest) (*models.Student, error) {
	l := logging.FromContext(ctx).With("svc", "student.create", "email", req.Email)

	student, err := fromCreateRequest(req)
	if err != nil {
		l.Warn("create_failed", "status", 400, "error", err)
		return nil, ErrValidation
	}

	taken, err := s.Repo.EmailTaken(ctx, student.Email, uuid.Nil)
	if err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return nil, err
	}
	if taken {
		l.Warn("create_failed", "status", 409, "reason", "email already in use")
		return nil, ErrConflict
	}

	student.AdmissionNumber = newAdmissionNumber()
	if err := s.Repo.CreateStudent(ctx, student); err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return nil, err
	}

	s.reindex(ctx, student)
	s.publish(ctx, events.Event{
		Type:    events.TypeStudentAdmitted,
		Subject: student.Email,
		Data:    map[string]any{"admission_number": student.AdmissionNumber},
	})

	l.Info("student_created", "admission_number", student.AdmissionNumber)
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateStudentRequest) (*models.Student, error) {
	l := logging.FromContext(ctx).With("svc", "student.update", "id", id)

	student, err := s.Repo.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// email uniqueness is re-checked only when the email actually changes
	if req.Email != nil && *req.Email != student.Email {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, ErrValidation
		}
		taken, err := s.Repo.EmailTaken(ctx, *req.Email, student.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			l.Warn("update_failed", "status", 409, "reason", "email already in use")
			return nil, ErrConflict
		}
		student.Email = *req.Email
	}

	applyUpdate(student, req)

	if req.Guardians != nil {
		guardians := make([]models.StudentGuardian, 0, len(req.Guardians))
		for _, g := range req.Guardians {
			guardians = append(guardians, models.StudentGuardian{
				StudentID:    student.ID,
				Relationship: g.Relationship,
				FirstName:    g.FirstName,
				LastName:     g.LastName,
				PhoneNumber:  g.PhoneNumber,
				Email:        g.Email,
				Occupation:   g.Occupation,
			})
		}
		if err := s.Repo.SaveStudentWithGuardians(ctx, student, guardians); err != nil {
			l.Error("update_failed", "status", 500, "error", err)
			return nil, err
		}
	} else if err := s.Repo.SaveStudent(ctx, student); err != nil {
		l.Error("update_failed", "status", 500, "error", err)
		return nil, err
	}

	s.reindex(ctx, student)
	l.Info("student_updated")
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "student.delete", "id", id)

	if err := s.Repo.DeleteStudent(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("delete_failed", "status", 500, "error", err)
		return err
	}

	if s.Indexer.Enabled() {
		if err := s.Indexer.RemoveStudent(ctx, id); err != nil {
			l.Warn("index_remove_failed", "error", err)
		}
	}
	l.Info("student_deleted")
	return nil
}

// Search prefers the Elasticsearch index and falls back to a SQL scan when
// no index is configured.
func (s *StudentService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Student, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Student{}, nil
	}

	if s.Indexer.Enabled() {
		total, ids, err := s.Indexer.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.StudentsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("es_search_failed_falling_back", "error", err)
	}

	return s.Repo.SearchStudents(ctx, q, offset, limit)
}

func (s *StudentService) reindex(ctx context.Context, student *models.Student) {
	if !s.Indexer.Enabled() {
		return
	}
	if err := s.Indexer.IndexStudent(ctx, student); err != nil {
		logging.FromContext(ctx).Warn("index_student_failed", "id", student.ID, "error", err)
	}
}

func (s *StudentService) publish(ctx context.Context, evt events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", evt.Type, "error", err)
	}
}

func fromCreateRequest(req transport.CreateStudentRequest) (*models.Student, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, err
	}
	if req.Surname == "" || req.FirstName == "" {
		return nil, errors.New("surname and first name are required")
	}
	if req.Gender != models.GenderMale && req.Gender != models.GenderFemale {
		return nil, errors.New("unknown gender")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date of birth: %w", err)
	}

	student := &models.Student{
		Email:              req.Email,
		Surname:            req.Surname,
		FirstName:          req.FirstName,
		MiddleNames:        req.MiddleNames,
		Gender:             req.Gender,
		DateOfBirth:        dob,
		ClassAppliedFor:    req.ClassAppliedFor,
		PreviousSchool:     req.PreviousSchool,
		ResidentialAddress: req.ResidentialAddress,
		Nationality:        req.Nationality,
		BloodGroup:         req.BloodGroup,
		LivesWith:          req.LivesWith,
		Active:             true,
	}
	for _, g := range req.Guardians {
		student.Guardians = append(student.Guardians, models.StudentGuardian{
			Relationship: g.Relationship,
			FirstName:    g.FirstName,
			LastName:     g.LastName,
			PhoneNumber:  g.PhoneNumber,
			Email:        g.Email,
			Occupation:   g.Occupation,
		})
	}
	return student, nil
}

func applyUpdate(student *models.Student, req transport.UpdateStudentRequest) {
	if req.Surname != nil {
		student.Surname = *req.Surname
	}
	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.MiddleNames != nil {
		student.MiddleNames = *req.MiddleNames
	}
	if req.ClassAdmittedTo != nil {
		student.ClassAdmittedTo = *req.ClassAdmittedTo
	}
	if req.PreviousSchool != nil {
		student.PreviousSchool = *req.PreviousSchool
	}
	if req.ResidentialAddress != nil {
		student.ResidentialAddress = *req.ResidentialAddress
	}
	if req.Nationality != nil {
		student.Nationality = *req.Nationality
	}
	if req.BloodGroup != nil {
		student.BloodGroup = *req.BloodGroup
	}
	if req.LivesWith != nil {
		student.LivesWith = *req.LivesWith
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
}

func newAdmissionNumber() string {
	return admissionNumberPrefix + strings.ToUpper(uuid.NewString()[:8])
}
