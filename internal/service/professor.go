package service

import (
	"context"
	"strings"

	"attendance-service/internal/apperr"
	"attendance-service/internal/auth"
	"attendance-service/internal/models"
	"attendance-service/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ProfessorInput carries the fields an administrator edits. Password may be
// blank on update to keep the current one.
type ProfessorInput struct {
	Name         string                 `json:"name" validate:"required,max=150"`
	Matricula    string                 `json:"matricula" validate:"max=50"`
	Email        string                 `json:"email" validate:"required,email,max=255"`
	Password     string                 `json:"password"`
	Status       models.ProfessorStatus `json:"status" validate:"required,oneof=active inactive"`
	DepartmentID *uint                  `json:"department_id"`
}

// ProfileInput is the self-service edit of an account.
type ProfileInput struct {
	Name            string `json:"name" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email,max=255"`
	DepartmentID    *uint  `json:"department_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ProfessorService struct {
	professorRepo  repository.ProfessorRepository
	departmentRepo repository.DepartmentRepository
	pageSize       int
	logger         *logrus.Logger
}

func NewProfessorService(
	professorRepo repository.ProfessorRepository,
	departmentRepo repository.DepartmentRepository,
	pageSize int,
) *ProfessorService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &ProfessorService{
		professorRepo:  professorRepo,
		departmentRepo: departmentRepo,
		pageSize:       pageSize,
		logger:         newLogger(),
	}
}

type ProfessorPage struct {
	Professors []models.Professor `json:"professors"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

func (s *ProfessorService) Create(ctx context.Context, input ProfessorInput) (*models.Professor, error) {
	input = cleanProfessorInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, apperr.Validation("password is required")
	}

	if err := s.checkUnique(ctx, 0, input.Email, input.Matricula); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	professor := &models.Professor{
		Name:         input.Name,
		Matricula:    optional(input.Matricula),
		Email:        input.Email,
		PasswordHash: hash,
		Status:       input.Status,
		DepartmentID: input.DepartmentID,
	}
	if err := s.professorRepo.Create(ctx, professor); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":    professor.ID,
		"email": professor.Email,
	}).Info("Professor registered")

	return s.professorRepo.GetByID(ctx, professor.ID)
}

func (s *ProfessorService) Update(ctx context.Context, id uint, input ProfessorInput) (*models.Professor, error) {
	input = cleanProfessorInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	professor, err := s.professorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, id, input.Email, input.Matricula); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	professor.Name = input.Name
	professor.Matricula = optional(input.Matricula)
	professor.Email = input.Email
	professor.Status = input.Status
	professor.DepartmentID = input.DepartmentID

	if strings.TrimSpace(input.Password) != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, errors.Wrap(err, "failed to hash password")
		}
		professor.PasswordHash = hash
	}

	if err := s.professorRepo.Update(ctx, professor); err != nil {
		return nil, err
	}

	s.logger.WithField("id", id).Info("Professor updated")

	return s.professorRepo.GetByID(ctx, id)
}

func (s *ProfessorService) Get(ctx context.Context, id uint) (*models.Professor, error) {
	return s.professorRepo.GetByID(ctx, id)
}

func (s *ProfessorService) List(ctx context.Context, page int) (*ProfessorPage, error) {
	p := models.NewPagination(page, s.pageSize)
	professors, total, err := s.professorRepo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return &ProfessorPage{
		Professors: professors,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(total),
	}, nil
}

func (s *ProfessorService) ListAll(ctx context.Context) ([]models.Professor, error) {
	return s.professorRepo.ListAll(ctx)
}

// Delete fails with apperr.ErrHasDependents while the professor owns records.
func (s *ProfessorService) Delete(ctx context.Context, id uint) error {
	if err := s.professorRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("id", id).Info("Professor deleted")
	return nil
}

// Authenticate checks a professor's credentials. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *ProfessorService) Authenticate(ctx context.Context, email, password string) (*models.Professor, error) {
	professor, err := s.professorRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if professor == nil || !auth.VerifyPassword(professor.PasswordHash, password) {
		s.logger.WithField("email", email).Warn("Professor login failed")
		return nil, apperr.ErrInvalidCredentials
	}
	if !professor.IsActive() {
		s.logger.WithField("id", professor.ID).Warn("Inactive professor tried to log in")
		return nil, apperr.ErrInactive
	}

	s.logger.WithField("id", professor.ID).Info("Professor logged in")
	return professor, nil
}

func (s *ProfessorService) UpdateProfile(ctx context.Context, who auth.Identity, input ProfileInput) (*models.Professor, error) {
	if err := who.Require(auth.RoleProfessor); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if input.DepartmentID != nil && *input.DepartmentID == 0 {
		input.DepartmentID = nil
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	professor, err := s.professorRepo.GetByID(ctx, who.ID)
	if err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, who.ID, input.Email, ""); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	hash, err := changedPassword(professor.PasswordHash, input.CurrentPassword, input.NewPassword)
	if err != nil {
		return nil, err
	}

	professor.Name = input.Name
	professor.Email = input.Email
	professor.DepartmentID = input.DepartmentID
	professor.PasswordHash = hash

	if err := s.professorRepo.Update(ctx, professor); err != nil {
		return nil, err
	}

	return s.professorRepo.GetByID(ctx, who.ID)
}

// checkUnique reports a ConstraintViolation when email or matricula belongs
// to a professor other than selfID.
func (s *ProfessorService) checkUnique(ctx context.Context, selfID uint, email, matricula string) error {
	existing, err := s.professorRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.Wrap(apperr.ErrConstraintViolation, "email is already in use")
	}

	if matricula == "" {
		return nil
	}
	existing, err = s.professorRepo.GetByMatricula(ctx, matricula)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.Wrap(apperr.ErrConstraintViolation, "matricula is already in use")
	}
	return nil
}

func (s *ProfessorService) checkDepartment(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.departmentRepo.GetByID(ctx, *id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return errors.Wrapf(apperr.ErrNotFound, "department %d", *id)
		}
		return err
	}
	return nil
}

// changedPassword returns the hash to store after a profile edit. The stored
// hash is kept unless both passwords are given and current verifies.
func changedPassword(storedHash, current, next string) (string, error) {
	if current == "" && next == "" {
		return storedHash, nil
	}
	if current == "" || next == "" {
		return "", apperr.Validation("current and new password are both required to change the password")
	}
	if !auth.VerifyPassword(storedHash, current) {
		return "", apperr.Validation("current password is incorrect")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

func cleanProfessorInput(input ProfessorInput) ProfessorInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Matricula = strings.TrimSpace(input.Matricula)
	input.Email = normalizeEmail(input.Email)
	if input.Status == "" {
		input.Status = models.ProfessorActive
	}
	if input.DepartmentID != nil && *input.DepartmentID == 0 {
		input.DepartmentID = nil
	}
	return input
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
