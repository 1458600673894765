package handler

import (
	"bytes"
	"fmt"
	"time"

	"attendance-service/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// attendanceReport streams the monthly PDF of ?professor_id=&year=&month=.
func (h *Handler) attendanceReport(c *fiber.Ctx) error {
	professorID := c.QueryInt("professor_id", 0)
	if professorID <= 0 {
		return apperr.Validation("professor_id is required")
	}
	year := c.QueryInt("year", 0)
	month := c.QueryInt("month", 0)

	report, err := h.reportService.MonthlyReport(c.UserContext(), uint(professorID), year, time.Month(month))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.reportService.RenderPDF(report, &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, h.reportService.FileName(report)))
	return c.Send(buf.Bytes())
}
