package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altera-edu/school-platform/services/teacher/internal/models"
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

func (r *GormRepo) GetTeacher(ctx context.Context, id uuid.UUID) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&teacher).Error; err != nil {
		return nil, translate(err)
	}
	return &teacher, nil
}

func (r *GormRepo) ListTeachers(ctx context.Context, offset, limit int) (int64, []models.Teacher, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Teacher{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Teacher
	if err := r.DB.WithContext(ctx).
		Order("employee_id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Teacher{}).Where("email = ?", email)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) SaveTeacher(ctx context.Context, t *models.Teacher) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *GormRepo) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Delete(&models.Teacher{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
