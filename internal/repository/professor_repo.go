package repository

import (
	"context"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProfessorRepository interface {
	Create(ctx context.Context, professor *models.Professor) error
	Update(ctx context.Context, professor *models.Professor) error
	GetByID(ctx context.Context, id uint) (*models.Professor, error)
	GetByEmail(ctx context.Context, email string) (*models.Professor, error)
	GetByMatricula(ctx context.Context, matricula string) (*models.Professor, error)
	List(ctx context.Context, page models.Pagination) ([]models.Professor, int64, error)
	ListAll(ctx context.Context) ([]models.Professor, error)
	Recent(ctx context.Context, limit int) ([]models.Professor, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.ProfessorStatus) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type GormProfessorRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormProfessorRepository(db *gorm.DB) (*GormProfessorRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Department{}, &models.Professor{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate professors table")
		return nil, err
	}

	logger.Info("Professor repository initialized")

	return &GormProfessorRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	r.logger.WithField("email", professor.Email).Info("Creating professor")

	if err := r.db.WithContext(ctx).Create(professor).Error; err != nil {
		r.logger.WithError(err).Warn("Failed to create professor")
		return translate("create professor", err)
	}

	r.logger.WithField("id", professor.ID).Info("Professor created successfully")
	return nil
}

func (r *GormProfessorRepository) Update(ctx context.Context, professor *models.Professor) error {
	r.logger.WithField("id", professor.ID).Info("Updating professor")

	result := r.db.WithContext(ctx).
		Model(&models.Professor{ID: professor.ID}).
		Select("Name", "Matricula", "Email", "PasswordHash", "Status", "DepartmentID").
		Updates(professor)
	if result.Error != nil {
		r.logger.WithError(result.Error).Warn("Failed to update professor")
		return translate("update professor", result.Error)
	}

	if result.RowsAffected == 0 {
		return errors.Wrap(apperr.ErrNotFound, "update professor")
	}

	return nil
}

func (r *GormProfessorRepository) GetByID(ctx context.Context, id uint) (*models.Professor, error) {
	var professor models.Professor
	err := r.db.WithContext(ctx).Preload("Department").First(&professor, id).Error
	if err != nil {
		return nil, translate("get professor", err)
	}
	return &professor, nil
}

func (r *GormProfessorRepository) GetByEmail(ctx context.Context, email string) (*models.Professor, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormProfessorRepository) GetByMatricula(ctx context.Context, matricula string) (*models.Professor, error) {
	return r.findOne(ctx, "matricula = ?", matricula)
}

// findOne returns (nil, nil) when nothing matches.
func (r *GormProfessorRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Professor, error) {
	var professor models.Professor
	result := r.db.WithContext(ctx).Preload("Department").Where(query, args...).Limit(1).Find(&professor)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to look up professor")
		return nil, translate("find professor", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &professor, nil
}

func (r *GormProfessorRepository) List(ctx context.Context, page models.Pagination) ([]models.Professor, int64, error) {
	var professors []models.Professor

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Preload("Department").
		Order("name ASC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&professors).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list professors")
		return nil, 0, translate("list professors", err)
	}

	return professors, total, nil
}

func (r *GormProfessorRepository) ListAll(ctx context.Context) ([]models.Professor, error) {
	var professors []models.Professor
	err := r.db.WithContext(ctx).Preload("Department").Order("name ASC").Find(&professors).Error
	if err != nil {
		return nil, translate("list professors", err)
	}
	return professors, nil
}

func (r *GormProfessorRepository) Recent(ctx context.Context, limit int) ([]models.Professor, error) {
	var professors []models.Professor
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&professors).Error
	if err != nil {
		return nil, translate("list recent professors", err)
	}
	return professors, nil
}

func (r *GormProfessorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Professor{}).Count(&count).Error; err != nil {
		return 0, translate("count professors", err)
	}
	return count, nil
}

func (r *GormProfessorRepository) CountByStatus(ctx context.Context, status models.ProfessorStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Professor{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, translate("count professors", err)
	}
	return count, nil
}

// Delete removes a professor that owns no attendance records.
func (r *GormProfessorRepository) Delete(ctx context.Context, id uint) error {
	r.logger.WithField("id", id).Info("Deleting professor")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Professor{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return translate("delete professor", err)
		}
		if exists == 0 {
			return errors.Wrap(apperr.ErrNotFound, "delete professor")
		}

		var records int64
		if err := tx.Model(&models.AttendanceRecord{}).Where("professor_id = ?", id).Count(&records).Error; err != nil {
			return translate("delete professor", err)
		}
		if records > 0 {
			r.logger.WithFields(logrus.Fields{
				"id":      id,
				"records": records,
			}).Warn("Professor has attendance records and cannot be deleted")
			return errors.Wrapf(apperr.ErrHasDependents, "professor has %d attendance records", records)
		}

		if err := tx.Delete(&models.Professor{}, id).Error; err != nil {
			return translate("delete professor", err)
		}

		r.logger.WithField("id", id).Info("Professor deleted successfully")
		return nil
	})
}
