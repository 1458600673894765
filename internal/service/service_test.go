package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"attendance-service/internal/auth"
	"attendance-service/internal/database"
	"attendance-service/internal/models"
	"attendance-service/internal/repository"
	"attendance-service/pkg/civildate"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

// testClock is a settable clock shared by a test and its services.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []models.AttendanceRecord
	err     error
}

func (n *recordingNotifier) RetroactiveRequested(_ context.Context, _ *models.Professor, record *models.AttendanceRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, *record)
	return n.err
}

type fixture struct {
	clock       *testClock
	calendar    *civildate.Calendar
	notifier    *recordingNotifier
	attendance  *AttendanceService
	professors  *ProfessorService
	departments *DepartmentService
	admins      *AdminService
	reports     *ReportService

	attendanceRepo *repository.GormAttendanceRepository
}

func newFixture(t *testing.T, opts AttendanceOptions) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	db, err := database.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	departmentRepo, err := repository.NewGormDepartmentRepository(db)
	require.NoError(t, err)
	professorRepo, err := repository.NewGormProfessorRepository(db)
	require.NoError(t, err)
	adminRepo, err := repository.NewGormAdminRepository(db)
	require.NoError(t, err)
	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	calendar, err := civildate.NewCalendar(civildate.DefaultTimezone, clock)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	f := &fixture{
		clock:          clock,
		calendar:       calendar,
		notifier:       notifier,
		attendanceRepo: attendanceRepo,
	}
	f.attendance = NewAttendanceService(attendanceRepo, professorRepo, departmentRepo, calendar, notifier, opts)
	f.professors = NewProfessorService(professorRepo, departmentRepo, 10)
	f.departments = NewDepartmentService(departmentRepo, 10)
	f.admins = NewAdminService(adminRepo)
	f.reports = NewReportService(f.professors, f.attendance, calendar)
	return f
}

func (f *fixture) professor(t *testing.T, name, email string) auth.Identity {
	t.Helper()
	p, err := f.professors.Create(context.Background(), ProfessorInput{
		Name:     name,
		Email:    email,
		Password: "secret",
		Status:   models.ProfessorActive,
	})
	require.NoError(t, err)
	return auth.Identity{ID: p.ID, Role: auth.RoleProfessor, Name: p.Name, Email: p.Email}
}

func (f *fixture) admin(t *testing.T) auth.Identity {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.admins.InitializeAdmin(ctx, "Admin", "admin@uni.br", "admin123"))
	a, err := f.admins.Authenticate(ctx, "admin@uni.br", "admin123")
	require.NoError(t, err)
	return auth.Identity{ID: a.ID, Role: auth.RoleAdmin, Name: a.Name, Email: a.Email}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
