package handler

import (
	"attendance-service/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// statusFor maps an error kind onto its HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrInactive), errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyRegistered),
		errors.Is(err, apperr.ErrConstraintViolation),
		errors.Is(err, apperr.ErrHasDependents),
		errors.Is(err, apperr.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every error returned by a route as
// {"success": false, "error": "..."}.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := statusFor(err)
		msg := err.Error()

		switch status {
		case fiber.StatusInternalServerError:
			logger.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
			msg = "internal server error"
		case fiber.StatusServiceUnavailable:
			logger.WithError(err).WithField("path", c.Path()).Error("Storage unavailable")
			msg = apperr.ErrStorageUnavailable.Error()
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
	})
}
