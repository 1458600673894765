package service

import (
	"context"
	"strings"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"
	"attendance-service/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type DepartmentInput struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
}

type DepartmentPage struct {
	Departments []models.Department `json:"departments"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
}

type DepartmentService struct {
	repo     repository.DepartmentRepository
	pageSize int
	logger   *logrus.Logger
}

func NewDepartmentService(repo repository.DepartmentRepository, pageSize int) *DepartmentService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &DepartmentService{
		repo:     repo,
		pageSize: pageSize,
		logger:   newLogger(),
	}
}

func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*models.Department, error) {
	input = cleanDepartmentInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, 0, input.Name); err != nil {
		return nil, err
	}

	department := &models.Department{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":   department.ID,
		"name": department.Name,
	}).Info("Department created")

	return department, nil
}

func (s *DepartmentService) Update(ctx context.Context, id uint, input DepartmentInput) (*models.Department, error) {
	input = cleanDepartmentInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	department, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, id, input.Name); err != nil {
		return nil, err
	}

	department.Name = input.Name
	department.Description = input.Description
	if err := s.repo.Update(ctx, department); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentService) Get(ctx context.Context, id uint) (*models.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context, page int) (*DepartmentPage, error) {
	p := models.NewPagination(page, s.pageSize)
	departments, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return &DepartmentPage{
		Departments: departments,
		Total:       total,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages(total),
	}, nil
}

func (s *DepartmentService) ListAll(ctx context.Context) ([]models.Department, error) {
	return s.repo.ListAll(ctx)
}

// Delete fails with apperr.ErrHasDependents while professors belong to the department.
func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("id", id).Info("Department deleted")
	return nil
}

func (s *DepartmentService) checkName(ctx context.Context, selfID uint, name string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.Wrapf(apperr.ErrConstraintViolation, "department %q already exists", name)
	}
	return nil
}

func cleanDepartmentInput(input DepartmentInput) DepartmentInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	return input
}
