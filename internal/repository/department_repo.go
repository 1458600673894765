package repository

import (
	"context"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id uint) (*models.Department, error)
	GetByName(ctx context.Context, name string) (*models.Department, error)
	List(ctx context.Context, page models.Pagination) ([]models.Department, int64, error)
	ListAll(ctx context.Context) ([]models.Department, error)
	Recent(ctx context.Context, limit int) ([]models.Department, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type GormDepartmentRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormDepartmentRepository(db *gorm.DB) (*GormDepartmentRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Department{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate departments table")
		return nil, err
	}

	logger.Info("Department repository initialized")

	return &GormDepartmentRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormDepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	r.logger.WithField("name", department.Name).Info("Creating department")

	if err := r.db.WithContext(ctx).Omit("Professors").Create(department).Error; err != nil {
		r.logger.WithError(err).Warn("Failed to create department")
		return translate("create department", err)
	}

	return nil
}

func (r *GormDepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	r.logger.WithField("id", department.ID).Info("Updating department")

	result := r.db.WithContext(ctx).
		Model(&models.Department{ID: department.ID}).
		Select("Name", "Description").
		Updates(department)
	if result.Error != nil {
		r.logger.WithError(result.Error).Warn("Failed to update department")
		return translate("update department", result.Error)
	}

	if result.RowsAffected == 0 {
		return errors.Wrap(apperr.ErrNotFound, "update department")
	}

	return nil
}

func (r *GormDepartmentRepository) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).
		Preload("Professors", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		First(&department, id).Error
	if err != nil {
		return nil, translate("get department", err)
	}
	return &department, nil
}

// GetByName returns (nil, nil) when no department carries name.
func (r *GormDepartmentRepository) GetByName(ctx context.Context, name string) (*models.Department, error) {
	var department models.Department
	result := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&department)
	if result.Error != nil {
		return nil, translate("find department", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &department, nil
}

func (r *GormDepartmentRepository) List(ctx context.Context, page models.Pagination) ([]models.Department, int64, error) {
	var departments []models.Department

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Preload("Professors").
		Order("name ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&departments).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list departments")
		return nil, 0, translate("list departments", err)
	}

	return departments, total, nil
}

func (r *GormDepartmentRepository) ListAll(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, translate("list departments", err)
	}
	return departments, nil
}

func (r *GormDepartmentRepository) Recent(ctx context.Context, limit int) ([]models.Department, error) {
	var departments []models.Department
	err := r.db.WithContext(ctx).
		Preload("Professors").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&departments).Error
	if err != nil {
		return nil, translate("list recent departments", err)
	}
	return departments, nil
}

func (r *GormDepartmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Department{}).Count(&count).Error; err != nil {
		return 0, translate("count departments", err)
	}
	return count, nil
}

// Delete removes a department that no professor belongs to.
func (r *GormDepartmentRepository) Delete(ctx context.Context, id uint) error {
	r.logger.WithField("id", id).Info("Deleting department")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Department{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return translate("delete department", err)
		}
		if exists == 0 {
			return errors.Wrap(apperr.ErrNotFound, "delete department")
		}

		var professors int64
		if err := tx.Model(&models.Professor{}).Where("department_id = ?", id).Count(&professors).Error; err != nil {
			return translate("delete department", err)
		}
		if professors > 0 {
			r.logger.WithFields(logrus.Fields{
				"id":         id,
				"professors": professors,
			}).Warn("Department has professors and cannot be deleted")
			return errors.Wrapf(apperr.ErrHasDependents, "department has %d professors", professors)
		}

		if err := tx.Delete(&models.Department{}, id).Error; err != nil {
			return translate("delete department", err)
		}

		r.logger.WithField("id", id).Info("Department deleted successfully")
		return nil
	})
}
