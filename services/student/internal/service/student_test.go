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

	"github.com/altera-edu/school-platform/services/student/internal/models"
	"github.com/altera-edu/school-platform/services/student/internal/repo"
	"github.com/altera-edu/school-platform/services/student/internal/search"
	"github.com/altera-edu/school-platform/services/student/internal/transport"
)

func newTestService(t *testing.T) (*StudentService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.StudentGuardian{}))

	svc := &StudentService{
		Repo:    &repo.GormRepo{DB: db},
		Indexer: &search.Indexer{},
	}
	return svc, db
}

func validCreateRequest(email string) transport.CreateStudentRequest {
	return transport.CreateStudentRequest{
		Email:           email,
		Surname:         "Mensah",
		FirstName:       "Ama",
		Gender:          models.GenderFemale,
		DateOfBirth:     "2014-03-12",
		ClassAppliedFor: "Primary 4",
		LivesWith:       models.LivesWithBothParents,
		Guardians: []transport.GuardianRequest{
			{Relationship: "Mother", FirstName: "Esi", LastName: "Mensah", PhoneNumber: "+233200000000"},
		},
	}
}

func TestStudentService_Create(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, student.ID)
	assert.True(t, strings.HasPrefix(student.AdmissionNumber, "ADM-"))
	assert.Len(t, student.AdmissionNumber, len("ADM-")+8)
	assert.True(t, student.Active)
	require.Len(t, student.Guardians, 1)
	assert.Equal(t, "Mother", student.Guardians[0].Relationship)

	loaded, err := svc.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.AdmissionNumber, loaded.AdmissionNumber)
	require.Len(t, loaded.Guardians, 1)
}

func TestStudentService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*transport.CreateStudentRequest)
	}{
		{name: "bad email", mutate: func(r *transport.CreateStudentRequest) { r.Email = "not-an-email" }},
		{name: "missing surname", mutate: func(r *transport.CreateStudentRequest) { r.Surname = "" }},
		{name: "unknown gender", mutate: func(r *transport.CreateStudentRequest) { r.Gender = "OTHER" }},
		{name: "bad date of birth", mutate: func(r *transport.CreateStudentRequest) { r.DateOfBirth = "12/03/2014" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest("ok@example.com")
			tt.mutate(&req)
			student, err := svc.Create(ctx, req)
			assert.Nil(t, student)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestStudentService_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)

	student, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	assert.Nil(t, student)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStudentService_Update(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)

	class := "Primary 5"
	updated, err := svc.Update(ctx, student.ID, transport.UpdateStudentRequest{
		ClassAdmittedTo: &class,
	})
	require.NoError(t, err)
	assert.Equal(t, "Primary 5", updated.ClassAdmittedTo)
	assert.Equal(t, "ama@example.com", updated.Email)

	_, err = svc.Update(ctx, uuid.New(), transport.UpdateStudentRequest{ClassAdmittedTo: &class})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudentService_Update_EmailConflictOnlyOnChange(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, validCreateRequest("a@example.com"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validCreateRequest("b@example.com"))
	require.NoError(t, err)

	// keeping the same email is fine
	same := "a@example.com"
	_, err = svc.Update(ctx, a.ID, transport.UpdateStudentRequest{Email: &same})
	require.NoError(t, err)

	// moving onto another student's email is not
	taken := "b@example.com"
	_, err = svc.Update(ctx, a.ID, transport.UpdateStudentRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestStudentService_Update_ReplacesGuardians(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, student.ID, transport.UpdateStudentRequest{
		Guardians: []transport.GuardianRequest{
			{Relationship: "Father", FirstName: "Kofi", LastName: "Mensah"},
			{Relationship: "Guardian", FirstName: "Yaa", LastName: "Asante"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Guardians, 2)

	var count int64
	require.NoError(t, db.Model(&models.StudentGuardian{}).
		Where("student_id = ?", student.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestStudentService_Delete(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	student, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, student.ID))

	_, err = svc.Get(ctx, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.StudentGuardian{}).
		Where("student_id = ?", student.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Delete(ctx, student.ID), ErrNotFound)
}

func TestStudentService_Search_SQLFallback(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	ama, err := svc.Create(ctx, validCreateRequest("ama@example.com"))
	require.NoError(t, err)
	other := validCreateRequest("kwame@example.com")
	other.Surname = "Owusu"
	other.FirstName = "Kwame"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	total, items, err := svc.Search(ctx, "mensah", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mensah", items[0].Surname)

	total, items, err = svc.Search(ctx, ama.AdmissionNumber, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	total, items, err = svc.Search(ctx, "   ", 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}
