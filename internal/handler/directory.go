package handler

import (
	"attendance-service/internal/apperr"
	"attendance-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) listProfessors(c *fiber.Ctx) error {
	if c.QueryBool("all") {
		professors, err := h.professorService.ListAll(c.UserContext())
		if err != nil {
			return err
		}
		return ok(c, professors)
	}

	page, err := h.professorService.List(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) createProfessor(c *fiber.Ctx) error {
	var input service.ProfessorInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	professor, err := h.professorService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return created(c, professor)
}

func (h *Handler) getProfessor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	professor, err := h.professorService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, professor)
}

func (h *Handler) updateProfessor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var input service.ProfessorInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	professor, err := h.professorService.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return ok(c, professor)
}

func (h *Handler) deleteProfessor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.professorService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "professor deleted")
}

func (h *Handler) listDepartments(c *fiber.Ctx) error {
	if c.QueryBool("all") {
		departments, err := h.departmentService.ListAll(c.UserContext())
		if err != nil {
			return err
		}
		return ok(c, departments)
	}

	page, err := h.departmentService.List(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *Handler) createDepartment(c *fiber.Ctx) error {
	var input service.DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	department, err := h.departmentService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return created(c, department)
}

func (h *Handler) getDepartment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	department, err := h.departmentService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, department)
}

func (h *Handler) updateDepartment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var input service.DepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.Validation("invalid request body")
	}

	department, err := h.departmentService.Update(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return ok(c, department)
}

func (h *Handler) deleteDepartment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.departmentService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "department deleted")
}
