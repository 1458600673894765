package repository

import (
	"context"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type GormAdminRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAdminRepository(db *gorm.DB) (*GormAdminRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate admins table")
		return nil, err
	}

	logger.Info("Admin repository initialized")

	return &GormAdminRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	r.logger.WithField("email", admin.Email).Info("Creating administrator")

	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		r.logger.WithError(err).Warn("Failed to create administrator")
		return translate("create admin", err)
	}

	return nil
}

func (r *GormAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	result := r.db.WithContext(ctx).
		Model(&models.Admin{ID: admin.ID}).
		Select("Name", "Email", "PasswordHash").
		Updates(admin)
	if result.Error != nil {
		r.logger.WithError(result.Error).Warn("Failed to update administrator")
		return translate("update admin", result.Error)
	}

	if result.RowsAffected == 0 {
		return errors.Wrap(apperr.ErrNotFound, "update admin")
	}

	return nil
}

func (r *GormAdminRepository) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translate("get admin", err)
	}
	return &admin, nil
}

// GetByEmail returns (nil, nil) when no administrator uses email.
func (r *GormAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	result := r.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&admin)
	if result.Error != nil {
		return nil, translate("find admin", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &admin, nil
}

func (r *GormAdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, translate("count admins", err)
	}
	return count, nil
}
