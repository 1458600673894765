package repository

import (
	"context"
	"time"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"
	"attendance-service/pkg/civildate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	FindRecord(ctx context.Context, professorID uint, date time.Time) (*models.AttendanceRecord, error)
	CreateRecord(ctx context.Context, record *models.AttendanceRecord) error
	GetByID(ctx context.Context, id uint) (*models.AttendanceRecord, error)
	ListByProfessor(ctx context.Context, professorID uint, page models.Pagination) ([]models.AttendanceRecord, int64, error)
	ListByStatus(ctx context.Context, status models.AttendanceStatus, limit int) ([]models.AttendanceRecord, error)
	ListAll(ctx context.Context) ([]models.AttendanceRecord, error)
	ListApprovedBetween(ctx context.Context, professorID uint, from, to time.Time) ([]models.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, id uint, status models.AttendanceStatus) error
	TransitionStatus(ctx context.Context, id uint, from, to models.AttendanceStatus) error
	CountByProfessor(ctx context.Context, professorID uint) (int64, error)
	CountByStatus(ctx context.Context, status models.AttendanceStatus) (int64, error)
	WithinTransaction(ctx context.Context, fn func(repo AttendanceRepository) error) error
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.AttendanceRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance_records table")
		return nil, err
	}

	logger.Info("Attendance repository initialized")

	return &GormAttendanceRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAttendanceRepository) WithinTransaction(ctx context.Context, fn func(repo AttendanceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormAttendanceRepository{db: tx, logger: r.logger})
	})
}

func (r *GormAttendanceRepository) FindRecord(ctx context.Context, professorID uint, date time.Time) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	date = civildate.Normalize(date)

	result := r.db.WithContext(ctx).
		Where("professor_id = ? AND date = ?", professorID, date).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to find attendance record by professor and date")
		return nil, translate("find attendance record", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithFields(logrus.Fields{
			"professor_id": professorID,
			"date":         civildate.ISO(date),
		}).Debug("Attendance record not found for professor/date")
		return nil, nil
	}

	return &record, nil
}

func (r *GormAttendanceRepository) CreateRecord(ctx context.Context, record *models.AttendanceRecord) error {
	record.Date = civildate.Normalize(record.Date)

	fields := logrus.Fields{
		"professor_id": record.ProfessorID,
		"date":         civildate.ISO(record.Date),
		"status":       record.Status,
		"retroactive":  record.Retroactive,
	}
	r.logger.WithFields(fields).Info("Creating attendance record")

	if !record.IsValid() {
		r.logger.WithFields(fields).Warn("Invalid attendance record data")
		return apperr.Validation("invalid attendance record")
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isForeignKeyViolation(err) {
			r.logger.WithFields(fields).Warn("Professor no longer exists")
			return errors.Wrapf(apperr.ErrNotFound, "professor %d", record.ProfessorID)
		}
		err = translate("create attendance record", err)
		if errors.Is(err, apperr.ErrConstraintViolation) {
			r.logger.WithFields(fields).Warn("Attendance record already exists for this date")
		} else {
			r.logger.WithError(err).Error("Failed to create attendance record")
		}
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":           record.ID,
		"professor_id": record.ProfessorID,
		"status":       record.Status,
	}).Info("Attendance record created successfully")

	return nil
}

func (r *GormAttendanceRepository) GetByID(ctx context.Context, id uint) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Professor").
		Preload("Professor.Department").
		First(&record, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.WithError(err).Error("Failed to get attendance record by ID")
		}
		return nil, translate("get attendance record", err)
	}

	return &record, nil
}

func (r *GormAttendanceRepository) ListByProfessor(ctx context.Context, professorID uint, page models.Pagination) ([]models.AttendanceRecord, int64, error) {
	var records []models.AttendanceRecord

	total, err := r.CountByProfessor(ctx, professorID)
	if err != nil {
		r.logger.WithError(err).Error("Failed to count attendance records")
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Where("professor_id = ?", professorID).
		Order("date DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&records).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list attendance records by professor")
		return nil, 0, translate("list attendance records", err)
	}

	r.logger.WithFields(logrus.Fields{
		"professor_id": professorID,
		"page":         page.Page,
		"count":        len(records),
		"total":        total,
	}).Debug("Retrieved attendance history")

	return records, total, nil
}

func (r *GormAttendanceRepository) ListByStatus(ctx context.Context, status models.AttendanceStatus, limit int) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord

	query := r.db.WithContext(ctx).
		Preload("Professor").
		Preload("Professor.Department").
		Where("status = ?", status).
		Order("date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list attendance records by status")
		return nil, translate("list attendance records by status", err)
	}

	return records, nil
}

func (r *GormAttendanceRepository) ListAll(ctx context.Context) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord

	err := r.db.WithContext(ctx).
		Preload("Professor").
		Preload("Professor.Department").
		Order("date DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list attendance records")
		return nil, translate("list attendance records", err)
	}

	return records, nil
}

func (r *GormAttendanceRepository) ListApprovedBetween(ctx context.Context, professorID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord

	err := r.db.WithContext(ctx).
		Where("professor_id = ? AND status = ? AND date BETWEEN ? AND ?",
			professorID,
			models.StatusApproved,
			civildate.Normalize(from),
			civildate.Normalize(to)).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list approved attendance records")
		return nil, translate("list approved attendance records", err)
	}

	r.logger.WithFields(logrus.Fields{
		"professor_id": professorID,
		"from":         civildate.ISO(from),
		"to":           civildate.ISO(to),
		"count":        len(records),
	}).Debug("Retrieved approved attendance records")

	return records, nil
}

func (r *GormAttendanceRepository) UpdateStatus(ctx context.Context, id uint, status models.AttendanceStatus) error {
	r.logger.WithFields(logrus.Fields{
		"id":     id,
		"status": status,
	}).Info("Updating attendance status")

	result := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update attendance status")
		return translate("update attendance status", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Warn("Attendance record not found for status update")
		return errors.Wrap(apperr.ErrNotFound, "update attendance status")
	}

	return nil
}

func (r *GormAttendanceRepository) TransitionStatus(ctx context.Context, id uint, from, to models.AttendanceStatus) error {
	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("Transitioning attendance status")

	result := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to transition attendance status")
		return translate("transition attendance status", result.Error)
	}

	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate("transition attendance status", err)
	}
	if count == 0 {
		r.logger.WithField("id", id).Warn("Attendance record not found for transition")
		return errors.Wrap(apperr.ErrNotFound, "transition attendance status")
	}

	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
	}).Warn("Attendance record is no longer in the expected status")
	return errors.Wrapf(apperr.ErrInvalidState, "attendance record %d is not %s", id, from)
}

func (r *GormAttendanceRepository) CountByProfessor(ctx context.Context, professorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("professor_id = ?", professorID).
		Count(&count).Error
	if err != nil {
		return 0, translate("count attendance records", err)
	}
	return count, nil
}

func (r *GormAttendanceRepository) CountByStatus(ctx context.Context, status models.AttendanceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, translate("count attendance records", err)
	}
	return count, nil
}
