package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altera-edu/school-platform/services/student/internal/models"
)

var ErrNotFound = errors.New("record not found")

type GormRepo struct {
	DB *gorm.DB
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *GormRepo) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := r.DB.WithContext(ctx).Preload("Guardians").
		Where("id = ?", id).First(&student).Error; err != nil {
		return nil, translate(err)
	}
	return &student, nil
}

func (r *GormRepo) ListStudents(ctx context.Context, offset, limit int) (int64, []models.Student, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Student{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Student
	if err := r.DB.WithContext(ctx).Preload("Guardians").
		Order("admission_number ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Student{}).Where("email = ?", email)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateStudent(ctx context.Context, s *models.Student) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SaveStudent(ctx context.Context, s *models.Student) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

// ReplaceGuardians swaps the whole guardian set of a student in one
// transaction together with the student row update.
func (r *GormRepo) SaveStudentWithGuardians(ctx context.Context, s *models.Student, guardians []models.StudentGuardian) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", s.ID).Delete(&models.StudentGuardian{}).Error; err != nil {
			return err
		}
		s.Guardians = guardians
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(s).Error
	})
}

func (r *GormRepo) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.StudentGuardian{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Student{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// StudentsByIDs loads the given students preserving the order of ids, which
// carries the search ranking through from Elasticsearch.
func (r *GormRepo) StudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Student, error) {
	if len(ids) == 0 {
		return []models.Student{}, nil
	}
	var items []models.Student
	if err := r.DB.WithContext(ctx).Preload("Guardians").
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Student, len(items))
	for _, s := range items {
		byID[s.ID] = s
	}
	ordered := make([]models.Student, 0, len(items))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// SearchStudents is the SQL fallback used when Elasticsearch is not
// configured. lower() keeps the match case-insensitive on both postgres and
// the sqlite driver the tests run on.
func (r *GormRepo) SearchStudents(ctx context.Context, q string, offset, limit int) (int64, []models.Student, error) {
	pattern := "%" + q + "%"
	where := "lower(first_name) LIKE lower(?) OR lower(surname) LIKE lower(?) OR lower(admission_number) LIKE lower(?)"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Student{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Student
	if err := r.DB.WithContext(ctx).Preload("Guardians").
		Where(where, pattern, pattern, pattern).
		Order("surname ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
