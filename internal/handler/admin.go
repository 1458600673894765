package handler

import (
	"attendance-service/internal/apperr"
	"attendance-service/internal/models"
	"attendance-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) adminDashboard(c *fiber.Ctx) error {
	dashboard, err := h.attendanceService.Dashboard(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return ok(c, dashboard)
}

// listRequests serves the pending queue by default and every record with ?status=all.
func (h *Handler) listRequests(c *fiber.Ctx) error {
	var (
		records []models.AttendanceRecord
		err     error
	)

	switch c.Query("status", "pending") {
	case "pending":
		records, err = h.attendanceService.ListPending(c.UserContext(), caller(c))
	case "all":
		records, err = h.attendanceService.ListRequests(c.UserContext(), caller(c))
	default:
		return apperr.Validation("status must be pending or all")
	}
	if err != nil {
		return err
	}
	return ok(c, records)
}

func (h *Handler) approveRequest(c *fiber.Ctx) error {
	return h.decide(c, models.DecisionApprove)
}

func (h *Handler) rejectRequest(c *fiber.Ctx) error {
	return h.decide(c, models.DecisionReject)
}

func (h *Handler) decide(c *fiber.Ctx, decision models.Decision) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	record, err := h.attendanceService.Decide(c.UserContext(), caller(c), id, decision)
	if err != nil {
		return err
	}
	return ok(c, record)
}

func (h *Handler) professorAttendance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	page, err := h.attendanceService.ListHistory(c.UserContext(), caller(c), id, c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) adminProfile(c *fiber.Ctx) error {
	admin, err := h.adminService.Get(c.UserContext(), caller(c).ID)
	if err != nil {
		return err
	}
	return ok(c, admin)
}

func (h *Handler) updateAdminProfile(c *fiber.Ctx) error {
	var input service.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	admin, err := h.adminService.UpdateProfile(c.UserContext(), caller(c), input)
	if err != nil {
		return err
	}
	return ok(c, admin)
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid id %q", c.Params("id"))
	}
	return uint(id), nil
}
