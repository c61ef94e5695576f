package service

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkghash "github.com/altera-edu/school-platform/pkg/hash"
	"github.com/altera-edu/school-platform/services/teacher/internal/models"
	"github.com/altera-edu/school-platform/services/teacher/internal/repo"
	"github.com/altera-edu/school-platform/services/teacher/internal/transport"
)

type credentialsMail struct {
	to       string
	email    string
	password string
}

type recordingMailer struct {
	sent []credentialsMail
}

func (m *recordingMailer) DispatchCredentials(to, _, email, password string) {
	m.sent = append(m.sent, credentialsMail{to: to, email: email, password: password})
}

func newTestService(t *testing.T) (*TeacherService, *recordingMailer, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Teacher{}))

	mailer := &recordingMailer{}
	svc := &TeacherService{
		Repo:   &repo.GormRepo{DB: db},
		Mailer: mailer,
	}
	return svc, mailer, db
}

func registerTeacher(t *testing.T, svc *TeacherService, email string) *models.Teacher {
	t.Helper()

	teacher, err := svc.Register(context.Background(), transport.RegisterTeacherRequest{
		FirstName:   "Kwesi",
		LastName:    "Appiah",
		Email:       email,
		PhoneNumber: "+233200000000",
		Subjects:    []string{"Mathematics", "Physics"},
	})
	require.NoError(t, err)
	return teacher
}

func TestTeacherService_Register_GeneratesCredentials(t *testing.T) {
	t.Parallel()

	svc, mailer, _ := newTestService(t)
	teacher := registerTeacher(t, svc, "kwesi@example.com")

	assert.True(t, strings.HasPrefix(teacher.EmployeeID, "TCH-"))
	assert.Len(t, teacher.EmployeeID, len("TCH-")+8)
	assert.Equal(t, "Teacher", teacher.Title)
	assert.Equal(t, "Mathematics,Physics", teacher.Subjects)
	assert.True(t, teacher.Active)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "kwesi@example.com", sent.to)
	assert.Equal(t, "kwesi@example.com", sent.email)
	require.NotEmpty(t, sent.password)

	// the mailed password matches the stored hash, never the plaintext
	assert.NotEqual(t, sent.password, teacher.PasswordHash)
	assert.True(t, pkghash.CheckPassword(teacher.PasswordHash, sent.password))
}

func TestTeacherService_Register_Failures(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	registerTeacher(t, svc, "kwesi@example.com")

	_, err := svc.Register(ctx, transport.RegisterTeacherRequest{
		FirstName: "Other", LastName: "Person", Email: "kwesi@example.com",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, transport.RegisterTeacherRequest{
		FirstName: "No", LastName: "Email", Email: "not-an-email",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, transport.RegisterTeacherRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTeacherService_Update(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	teacher := registerTeacher(t, svc, "kwesi@example.com")
	registerTeacher(t, svc, "taken@example.com")

	title := "Head of Department"
	subjects := []string{"Chemistry"}
	updated, err := svc.Update(ctx, teacher.ID, transport.UpdateTeacherRequest{
		Title:    &title,
		Subjects: &subjects,
	})
	require.NoError(t, err)
	assert.Equal(t, "Head of Department", updated.Title)
	assert.Equal(t, "Chemistry", updated.Subjects)

	taken := "taken@example.com"
	_, err = svc.Update(ctx, teacher.ID, transport.UpdateTeacherRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Update(ctx, uuid.New(), transport.UpdateTeacherRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeacherService_ListAndDelete(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	teacher := registerTeacher(t, svc, "kwesi@example.com")
	registerTeacher(t, svc, "ama@example.com")

	total, items, err := svc.List(ctx, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	require.NoError(t, svc.Delete(ctx, teacher.ID))
	assert.ErrorIs(t, svc.Delete(ctx, teacher.ID), ErrNotFound)

	_, err = svc.Get(ctx, teacher.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
