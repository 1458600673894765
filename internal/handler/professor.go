package handler

import (
	"attendance-service/internal/apperr"
	"attendance-service/internal/service"
	"attendance-service/pkg/civildate"

	"github.com/gofiber/fiber/v2"
)

type retroactiveRequest struct {
	Date          string `json:"date"`
	Justification string `json:"justification"`
}

func (h *Handler) professorDashboard(c *fiber.Ctx) error {
	view, err := h.attendanceService.Today(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"date":       civildate.ISO(view.Date),
		"registered": view.Record != nil,
		"record":     view.Record,
		"recent":     view.Recent,
	})
}

func (h *Handler) registerToday(c *fiber.Ctx) error {
	record, err := h.attendanceService.RegisterToday(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *Handler) requestRetroactive(c *fiber.Ctx) error {
	var req retroactiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	date, err := civildate.Parse(req.Date)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	record, err := h.attendanceService.RequestRetroactive(c.UserContext(), caller(c), date, req.Justification)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *Handler) professorHistory(c *fiber.Ctx) error {
	id := caller(c)
	page, err := h.attendanceService.ListHistory(c.UserContext(), id, id.ID, c.QueryInt("page", 1), c.QueryInt("page_size", 0))
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) professorProfile(c *fiber.Ctx) error {
	professor, err := h.professorService.Get(c.UserContext(), caller(c).ID)
	if err != nil {
		return err
	}
	return ok(c, professor)
}

func (h *Handler) updateProfessorProfile(c *fiber.Ctx) error {
	var input service.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	professor, err := h.professorService.UpdateProfile(c.UserContext(), caller(c), input)
	if err != nil {
		return err
	}
	return ok(c, professor)
}
