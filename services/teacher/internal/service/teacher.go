package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/altera-edu/school-platform/pkg/events"
	pkghash "github.com/altera-edu/school-platform/pkg/hash"
	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/services/teacher/internal/models"
	"github.com/altera-edu/school-platform/services/teacher/internal/repo"
	"github.com/altera-edu/school-platform/services/teacher/internal/transport"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("email already in use")
	ErrNotFound   = errors.New("not found")
)

const (
	employeeIDPrefix = "TCH-"
	defaultTitle     = "Teacher"
	defaultAddress   = "Not specified"
)

// MailDispatch is the fire-and-forget slice of the mailer the service needs.
type MailDispatch interface {
	DispatchCredentials(to, name, email, password string)
}

type TeacherService struct {
	Repo   *repo.GormRepo
	Mailer MailDispatch
	Events events.Publisher
}

func (s *TeacherService) Get(ctx context.Context, id uuid.UUID) (*models.Teacher, error) {
	teacher, err := s.Repo.GetTeacher(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return teacher, nil
}

func (s *TeacherService) List(ctx context.Context, offset, limit int) (int64, []models.Teacher, error) {
	return s.Repo.ListTeachers(ctx, offset, limit)
}

// Register creates a teacher with a generated employee id and a generated
// initial password, then dispatches the credentials by email. The plaintext
// password exists only for the lifetime of this call and the mail goroutine.
func (s *TeacherService) Register(ctx context.Context, req transport.RegisterTeacherRequest) (*models.Teacher, error) {
	l := logging.FromContext(ctx).With("svc", "teacher.register", "email", req.Email)

	if err := validateRegistration(req); err != nil {
		l.Warn("register_teacher_failed", "status", 400, "error", err)
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		l.Error("register_teacher_failed", "status", 500, "error", err)
		return nil, err
	}
	if taken {
		l.Warn("register_teacher_failed", "status", 409, "reason", "email already in use")
		return nil, ErrConflict
	}

	password := newInitialPassword()
	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		l.Error("register_teacher_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	teacher := models.Teacher{
		EmployeeID:   newEmployeeID(),
		Title:        defaultTitle,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: pwHash,
		PhoneNumber:  req.PhoneNumber,
		Address:      defaultAddress,
		Subjects:     strings.Join(req.Subjects, ","),
		Active:       true,
	}
	if err := s.Repo.CreateTeacher(ctx, &teacher); err != nil {
		l.Error("register_teacher_failed", "status", 500, "error", err)
		return nil, err
	}

	if s.Mailer != nil {
		s.Mailer.DispatchCredentials(teacher.Email, teacher.FullName(), teacher.Email, password)
	}
	s.publish(ctx, events.Event{
		Type:    events.TypeTeacherRegistered,
		Subject: teacher.Email,
		Data:    map[string]any{"employee_id": teacher.EmployeeID},
	})

	l.Info("register_teacher_successful", "employee_id", teacher.EmployeeID)
	return &teacher, nil
}

func (s *TeacherService) Update(ctx context.Context, id uuid.UUID, req transport.UpdateTeacherRequest) (*models.Teacher, error) {
	l := logging.FromContext(ctx).With("svc", "teacher.update", "id", id)

	teacher, err := s.Repo.GetTeacher(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Email != nil && *req.Email != teacher.Email {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, ErrValidation
		}
		taken, err := s.Repo.EmailTaken(ctx, *req.Email, id)
		if err != nil {
			l.Error("update_teacher_failed", "status", 500, "error", err)
			return nil, err
		}
		if taken {
			return nil, ErrConflict
		}
	}

	applyUpdate(teacher, req)
	if err := s.Repo.SaveTeacher(ctx, teacher); err != nil {
		l.Error("update_teacher_failed", "status", 500, "error", err)
		return nil, err
	}
	return teacher, nil
}

func (s *TeacherService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteTeacher(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *TeacherService) publish(ctx context.Context, evt events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", evt.Type, "error", err)
	}
}

func applyUpdate(t *models.Teacher, req transport.UpdateTeacherRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.FirstName != nil {
		t.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		t.LastName = *req.LastName
	}
	if req.Email != nil {
		t.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		t.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		t.Address = *req.Address
	}
	if req.City != nil {
		t.City = *req.City
	}
	if req.State != nil {
		t.State = *req.State
	}
	if req.Country != nil {
		t.Country = *req.Country
	}
	if req.PostalCode != nil {
		t.PostalCode = *req.PostalCode
	}
	if req.Subjects != nil {
		t.Subjects = strings.Join(*req.Subjects, ",")
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
}

func validateRegistration(req transport.RegisterTeacherRequest) error {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return ErrValidation
	}
	if req.FirstName == "" || req.LastName == "" {
		return ErrValidation
	}
	return nil
}

func newEmployeeID() string {
	return employeeIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

func newInitialPassword() string {
	return uuid.NewString()[:8]
}
