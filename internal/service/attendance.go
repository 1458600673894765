package service

import (
	"context"
	"strings"
	"time"

	"attendance-service/internal/apperr"
	"attendance-service/internal/auth"
	"attendance-service/internal/models"
	"attendance-service/internal/repository"
	"attendance-service/pkg/civildate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	todayHistorySize  = 30
	dashboardListSize = 5
)

type AttendanceOptions struct {
	// AllowRedecide lets Decide overwrite an already decided record.
	AllowRedecide bool
	PageSize      int
}

type AttendanceService struct {
	attendanceRepo  repository.AttendanceRepository
	professorRepo   repository.ProfessorRepository
	departmentRepo  repository.DepartmentRepository
	calendar        *civildate.Calendar
	notifier        Notifier
	allowRedecide   bool
	defaultPageSize int
	logger          *logrus.Logger
}

func NewAttendanceService(
	attendanceRepo repository.AttendanceRepository,
	professorRepo repository.ProfessorRepository,
	departmentRepo repository.DepartmentRepository,
	calendar *civildate.Calendar,
	notifier Notifier,
	opts AttendanceOptions,
) *AttendanceService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	return &AttendanceService{
		attendanceRepo:  attendanceRepo,
		professorRepo:   professorRepo,
		departmentRepo:  departmentRepo,
		calendar:        calendar,
		notifier:        notifier,
		allowRedecide:   opts.AllowRedecide,
		defaultPageSize: pageSize,
		logger:          newLogger(),
	}
}

// HistoryPage is one page of a professor's records, newest first.
type HistoryPage struct {
	Records    []models.AttendanceRecord `json:"records"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
}

// TodayView is what a professor sees on the dashboard.
type TodayView struct {
	Date   time.Time                 `json:"date"`
	Record *models.AttendanceRecord  `json:"record"`
	Recent []models.AttendanceRecord `json:"recent"`
}

type AdminDashboard struct {
	TotalProfessors    int64                     `json:"total_professors"`
	ActiveProfessors   int64                     `json:"active_professors"`
	InactiveProfessors int64                     `json:"inactive_professors"`
	TotalDepartments   int64                     `json:"total_departments"`
	PendingRequests    int64                     `json:"pending_requests"`
	RecentProfessors   []models.Professor        `json:"recent_professors"`
	RecentDepartments  []models.Department       `json:"recent_departments"`
	RecentPending      []models.AttendanceRecord `json:"recent_pending"`
}

// RegisterToday records the caller's presence for the current civil date.
func (s *AttendanceService) RegisterToday(ctx context.Context, who auth.Identity) (*models.AttendanceRecord, error) {
	if err := who.Require(auth.RoleProfessor); err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		ProfessorID:  who.ID,
		Date:         s.calendar.Today(),
		RegisteredAt: s.calendar.Now(),
		Retroactive:  false,
		Status:       models.StatusApproved,
	}

	if _, err := s.create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"professor_id": who.ID,
		"date":         civildate.ISO(record.Date),
	}).Info("Attendance registered")

	return record, nil
}

// RequestRetroactive files a pending record for date. Notification failures
// are logged and never returned.
func (s *AttendanceService) RequestRetroactive(ctx context.Context, who auth.Identity, date time.Time, justification string) (*models.AttendanceRecord, error) {
	if err := who.Require(auth.RoleProfessor); err != nil {
		return nil, err
	}

	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, apperr.Validation("justification is required")
	}
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}

	record := &models.AttendanceRecord{
		ProfessorID:   who.ID,
		Date:          civildate.Normalize(date),
		RegisteredAt:  s.calendar.Now(),
		Retroactive:   true,
		Justification: justification,
		Status:        models.StatusPending,
	}

	professor, err := s.create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":           record.ID,
		"professor_id": who.ID,
		"date":         civildate.ISO(record.Date),
	}).Info("Retroactive attendance requested")

	s.notifyRetroactive(ctx, professor, record)

	return record, nil
}

// create files record for an existing, active professor. A professor deleted
// after this check is caught by the foreign key and reported as not found.
func (s *AttendanceService) create(ctx context.Context, record *models.AttendanceRecord) (*models.Professor, error) {
	professor, err := s.professorRepo.GetByID(ctx, record.ProfessorID)
	if err != nil {
		return nil, err
	}
	if !professor.IsActive() {
		s.logger.WithField("professor_id", professor.ID).Warn("Inactive professor tried to file attendance")
		return nil, errors.Wrapf(apperr.ErrInactive, "professor %d", professor.ID)
	}

	err = s.attendanceRepo.WithinTransaction(ctx, func(tx repository.AttendanceRepository) error {
		existing, err := tx.FindRecord(ctx, record.ProfessorID, record.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.Wrapf(apperr.ErrAlreadyRegistered, "attendance for %s", civildate.Format(record.Date))
		}
		return tx.CreateRecord(ctx, record)
	})
	if errors.Is(err, apperr.ErrConstraintViolation) {
		// Lost a race with a concurrent insert for the same date.
		return nil, errors.Wrapf(apperr.ErrAlreadyRegistered, "attendance for %s", civildate.Format(record.Date))
	}
	if err != nil {
		return nil, err
	}
	return professor, nil
}

func (s *AttendanceService) notifyRetroactive(ctx context.Context, professor *models.Professor, record *models.AttendanceRecord) {
	if err := s.notifier.RetroactiveRequested(ctx, professor, record); err != nil {
		s.logger.WithError(err).WithField("id", record.ID).Warn("Failed to notify administrators")
	}
}

// Decide approves or rejects a retroactive request.
func (s *AttendanceService) Decide(ctx context.Context, who auth.Identity, recordID uint, decision models.Decision) (*models.AttendanceRecord, error) {
	if err := who.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}

	status, ok := decision.Status()
	if !ok {
		return nil, apperr.Validationf("unknown decision %q", decision)
	}

	fields := logrus.Fields{
		"id":       recordID,
		"decision": decision,
		"admin_id": who.ID,
	}

	var err error
	if s.allowRedecide {
		err = s.redecide(ctx, recordID, status, fields)
	} else {
		err = s.attendanceRepo.TransitionStatus(ctx, recordID, models.StatusPending, status)
	}
	if err != nil {
		s.logger.WithFields(fields).WithError(err).Warn("Decision not applied")
		return nil, err
	}

	s.logger.WithFields(fields).Info("Attendance request decided")

	return s.attendanceRepo.GetByID(ctx, recordID)
}

// redecide overwrites the status unconditionally, logging when a final
// decision is replaced.
func (s *AttendanceService) redecide(ctx context.Context, recordID uint, status models.AttendanceStatus, fields logrus.Fields) error {
	current, err := s.attendanceRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if current.IsDecided() {
		s.logger.WithFields(fields).WithField("previous", current.Status).Warn("Overwriting a decided attendance record")
	}
	return s.attendanceRepo.UpdateStatus(ctx, recordID, status)
}

// ListHistory returns one page of professorID's records. Professors may only
// read their own history.
func (s *AttendanceService) ListHistory(ctx context.Context, who auth.Identity, professorID uint, page, pageSize int) (*HistoryPage, error) {
	switch {
	case who.IsAdmin():
		if _, err := s.professorRepo.GetByID(ctx, professorID); err != nil {
			return nil, err
		}
	case who.IsProfessor():
		if who.ID != professorID {
			return nil, apperr.ErrForbidden
		}
	default:
		return nil, apperr.ErrForbidden
	}

	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	p := models.NewPagination(page, pageSize)

	records, total, err := s.attendanceRepo.ListByProfessor(ctx, professorID, p)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Records:    records,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}, nil
}

// ListPending returns the requests awaiting a decision, newest first.
func (s *AttendanceService) ListPending(ctx context.Context, who auth.Identity) ([]models.AttendanceRecord, error) {
	if err := who.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListByStatus(ctx, models.StatusPending, 0)
}

// ListRequests returns every record, newest first.
func (s *AttendanceService) ListRequests(ctx context.Context, who auth.Identity) ([]models.AttendanceRecord, error) {
	if err := who.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListAll(ctx)
}

func (s *AttendanceService) ApprovedBetween(ctx context.Context, professorID uint, from, to time.Time) ([]models.AttendanceRecord, error) {
	return s.attendanceRepo.ListApprovedBetween(ctx, professorID, from, to)
}

func (s *AttendanceService) Today(ctx context.Context, who auth.Identity) (*TodayView, error) {
	if err := who.Require(auth.RoleProfessor); err != nil {
		return nil, err
	}

	today := s.calendar.Today()
	record, err := s.attendanceRepo.FindRecord(ctx, who.ID, today)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.attendanceRepo.ListByProfessor(ctx, who.ID, models.NewPagination(1, todayHistorySize))
	if err != nil {
		return nil, err
	}

	return &TodayView{
		Date:   today,
		Record: record,
		Recent: recent,
	}, nil
}

func (s *AttendanceService) Dashboard(ctx context.Context, who auth.Identity) (*AdminDashboard, error) {
	if err := who.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		d   AdminDashboard
		err error
	)

	if d.TotalProfessors, err = s.professorRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.ActiveProfessors, err = s.professorRepo.CountByStatus(ctx, models.ProfessorActive); err != nil {
		return nil, err
	}
	if d.InactiveProfessors, err = s.professorRepo.CountByStatus(ctx, models.ProfessorInactive); err != nil {
		return nil, err
	}
	if d.TotalDepartments, err = s.departmentRepo.Count(ctx); err != nil {
		return nil, err
	}
	if d.PendingRequests, err = s.attendanceRepo.CountByStatus(ctx, models.StatusPending); err != nil {
		return nil, err
	}
	if d.RecentProfessors, err = s.professorRepo.Recent(ctx, dashboardListSize); err != nil {
		return nil, err
	}
	if d.RecentDepartments, err = s.departmentRepo.Recent(ctx, dashboardListSize); err != nil {
		return nil, err
	}
	if d.RecentPending, err = s.attendanceRepo.ListByStatus(ctx, models.StatusPending, dashboardListSize); err != nil {
		return nil, err
	}

	return &d, nil
}
