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

type AdminService struct {
	repo   repository.AdminRepository
	logger *logrus.Logger
}

func NewAdminService(repo repository.AdminRepository) *AdminService {
	return &AdminService{
		repo:   repo,
		logger: newLogger(),
	}
}

// InitializeAdmin seeds the first administrator. It does nothing once any
// administrator exists.
func (s *AdminService) InitializeAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug("Administrator already exists, skipping seed")
		return nil
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return apperr.Validation("initial administrator needs an email and a password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	admin := &models.Admin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.WithField("email", email).Info("Default administrator created")
	return nil
}

func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*models.Admin, error) {
	admin, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if admin == nil || !auth.VerifyPassword(admin.PasswordHash, password) {
		s.logger.WithField("email", email).Warn("Administrator login failed")
		return nil, apperr.ErrInvalidCredentials
	}

	s.logger.WithField("id", admin.ID).Info("Administrator logged in")
	return admin, nil
}

func (s *AdminService) Get(ctx context.Context, id uint) (*models.Admin, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile edits the caller's own account. DepartmentID is ignored.
func (s *AdminService) UpdateProfile(ctx context.Context, who auth.Identity, input ProfileInput) (*models.Admin, error) {
	if err := who.Require(auth.RoleAdmin); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.DepartmentID = nil
	if err := validateInput(input); err != nil {
		return nil, err
	}

	admin, err := s.repo.GetByID(ctx, who.ID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != admin.ID {
		return nil, errors.Wrap(apperr.ErrConstraintViolation, "email is already in use")
	}

	hash, err := changedPassword(admin.PasswordHash, input.CurrentPassword, input.NewPassword)
	if err != nil {
		return nil, err
	}

	admin.Name = input.Name
	admin.Email = input.Email
	admin.PasswordHash = hash

	if err := s.repo.Update(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.WithField("id", admin.ID).Info("Administrator profile updated")
	return admin, nil
}
