package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance-service/internal/apperr"
	"attendance-service/internal/auth"
	"attendance-service/internal/database"
	"attendance-service/internal/repository"
	"attendance-service/internal/service"
	"attendance-service/pkg/civildate"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	logrus.SetLevel(logrus.ErrorLevel)

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

	calendar, err := civildate.NewCalendar(civildate.DefaultTimezone, civildate.FixedClock{
		At: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	attendance := service.NewAttendanceService(attendanceRepo, professorRepo, departmentRepo, calendar, nil, service.AttendanceOptions{})
	professors := service.NewProfessorService(professorRepo, departmentRepo, 10)
	departments := service.NewDepartmentService(departmentRepo, 10)
	admins := service.NewAdminService(adminRepo)
	reports := service.NewReportService(professors, attendance, calendar)

	require.NoError(t, admins.InitializeAdmin(context.Background(), "Admin", "admin@uni.br", "admin123"))

	h := NewHandler(attendance, professors, departments, admins, reports,
		auth.NewTokenIssuer("test-secret", time.Hour),
		Options{LoginRateLimit: 1000},
	)
	return h.NewApp()
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	if resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSONCharsetUTF8 ||
		resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func login(t *testing.T, app *fiber.App, kind, email, password string) string {
	t.Helper()
	resp, env := do(t, app, http.MethodPost, "/api/auth/"+kind+"/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func decodeID(t *testing.T, raw json.RawMessage) uint {
	t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v.ID
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{apperr.ErrInactive, http.StatusForbidden},
		{apperr.ErrForbidden, http.StatusForbidden},
		{errors.Wrap(apperr.ErrNotFound, "get professor"), http.StatusNotFound},
		{errors.Wrap(apperr.ErrAlreadyRegistered, "today"), http.StatusConflict},
		{apperr.ErrConstraintViolation, http.StatusConflict},
		{apperr.ErrHasDependents, http.StatusConflict},
		{apperr.ErrInvalidState, http.StatusConflict},
		{apperr.Storage("list", errors.New("connection refused")), http.StatusServiceUnavailable},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodPost, "/api/auth/admin/login", "", fiber.Map{
		"email": "admin@uni.br", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, apperr.ErrInvalidCredentials.Error(), env.Error)

	resp, _ = do(t, app, http.MethodPost, "/api/auth/admin/login", "", fiber.Map{"email": "admin@uni.br"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env = do(t, app, http.MethodPost, "/api/auth/admin/login", "", fiber.Map{
		"email": "admin@uni.br", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	// The session cookie lives exactly as long as the token.
	assert.Regexp(t, `(?i)max-age=3600`, resp.Header.Get(fiber.HeaderSetCookie))

	token := login(t, app, "admin", "admin@uni.br", "admin123")
	resp, env = do(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"role":"admin"`)

	resp, _ = do(t, app, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := resp.Header.Get(fiber.HeaderSetCookie)
	assert.Contains(t, cookie, "session=")
}

func TestSessionCookie(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "admin", "admin@uni.br", "admin123")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAttendanceWorkflowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin", "admin@uni.br", "admin123")

	resp, env := do(t, app, http.MethodPost, "/api/admin/departments", adminToken, fiber.Map{"name": "Matemática"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	deptID := decodeID(t, env.Data)

	resp, env = do(t, app, http.MethodPost, "/api/admin/professors", adminToken, fiber.Map{
		"name":          "Ana Souza",
		"email":         "ana@uni.br",
		"password":      "secret",
		"status":        "active",
		"department_id": deptID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	professorID := decodeID(t, env.Data)

	token := login(t, app, "professor", "ana@uni.br", "secret")

	// Role guard.
	resp, _ = do(t, app, http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, http.MethodPost, "/api/professor/attendance/today", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = do(t, app, http.MethodPost, "/api/professor/attendance/today", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	assert.Contains(t, string(env.Data), `"status":"approved"`)

	resp, env = do(t, app, http.MethodPost, "/api/professor/attendance/today", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = do(t, app, http.MethodPost, "/api/professor/attendance/retroactive", token, fiber.Map{
		"date": "2024-03-05", "justification": "  ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/professor/attendance/retroactive", token, fiber.Map{
		"date": "05-03-2024", "justification": "forgot",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = do(t, app, http.MethodPost, "/api/professor/attendance/retroactive", token, fiber.Map{
		"date": "05/03/2024", "justification": "forgot to check in",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	requestID := decodeID(t, env.Data)
	assert.Contains(t, string(env.Data), `"status":"pending"`)

	resp, env = do(t, app, http.MethodGet, "/api/admin/requests", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "forgot to check in")

	resp, _ = do(t, app, http.MethodGet, "/api/admin/requests?status=weird", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = do(t, app, http.MethodPost, fmt.Sprintf("/api/admin/requests/%d/approve", requestID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	assert.Contains(t, string(env.Data), `"status":"approved"`)

	resp, _ = do(t, app, http.MethodPost, fmt.Sprintf("/api/admin/requests/%d/reject", requestID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/admin/requests/9999/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/admin/requests/abc/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = do(t, app, http.MethodGet, "/api/professor/attendance?page=1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history service.HistoryPage
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, int64(2), history.Total)
	assert.Equal(t, 1, history.TotalPages)

	resp, env = do(t, app, http.MethodGet, fmt.Sprintf("/api/admin/professors/%d/attendance", professorID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"total":2`)

	resp, env = do(t, app, http.MethodGet, "/api/professor/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), `"date":"2024-03-10"`)
	assert.Contains(t, string(env.Data), `"registered":true`)

	// Referential blocks.
	resp, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/admin/departments/%d", deptID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/admin/professors/%d", professorID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/admin/reports/attendance?professor_id=%d&year=2024&month=3", professorID), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
	pdfResp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, pdfResp.StatusCode)
	assert.Equal(t, "application/pdf", pdfResp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, pdfResp.Header.Get(fiber.HeaderContentDisposition), "relatorio_Ana_Souza_3_2024.pdf")
	body, err := io.ReadAll(pdfResp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, _ = do(t, app, http.MethodGet,
		fmt.Sprintf("/api/admin/reports/attendance?professor_id=%d&year=2024&month=13", professorID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin", "admin@uni.br", "admin123")

	resp, env := do(t, app, http.MethodPost, "/api/admin/professors", adminToken, fiber.Map{
		"name": "Ana Souza", "email": "ana@uni.br", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)

	token := login(t, app, "professor", "ana@uni.br", "secret")

	resp, env = do(t, app, http.MethodPut, "/api/professor/profile", token, fiber.Map{
		"name": "Ana Maria", "email": "ana@uni.br",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	assert.Contains(t, string(env.Data), `"name":"Ana Maria"`)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = do(t, app, http.MethodGet, "/api/admin/profile", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "admin@uni.br")

	resp, _ = do(t, app, http.MethodPut, "/api/admin/profile", adminToken, fiber.Map{
		"name": "Admin", "email": "ana@uni.br", "current_password": "bad", "new_password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInactiveProfessorCannotLogIn(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin", "admin@uni.br", "admin123")

	resp, env := do(t, app, http.MethodPost, "/api/admin/professors", adminToken, fiber.Map{
		"name": "Ana Souza", "email": "ana@uni.br", "password": "secret", "status": "inactive",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)

	resp, env = do(t, app, http.MethodPost, "/api/auth/professor/login", "", fiber.Map{
		"email": "ana@uni.br", "password": "secret",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, env.Error, apperr.ErrInactive.Error())
}

func TestDeactivatedProfessorSessionCannotFile(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin", "admin@uni.br", "admin123")

	resp, env := do(t, app, http.MethodPost, "/api/admin/professors", adminToken, fiber.Map{
		"name": "Ana Souza", "email": "ana@uni.br", "password": "secret", "status": "active",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error)
	professorID := decodeID(t, env.Data)

	token := login(t, app, "professor", "ana@uni.br", "secret")

	resp, env = do(t, app, http.MethodPut, fmt.Sprintf("/api/admin/professors/%d", professorID), adminToken, fiber.Map{
		"name": "Ana Souza", "email": "ana@uni.br", "status": "inactive",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, env = do(t, app, http.MethodPost, "/api/professor/attendance/today", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, env.Error, apperr.ErrInactive.Error())

	resp, _ = do(t, app, http.MethodPost, "/api/professor/attendance/retroactive", token, fiber.Map{
		"date": "2024-03-05", "justification": "forgot to check in",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Once deleted, the same session reports the account as gone.
	resp, env = do(t, app, http.MethodDelete, fmt.Sprintf("/api/admin/professors/%d", professorID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, _ = do(t, app, http.MethodPost, "/api/professor/attendance/today", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	resp, env := do(t, app, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
}
