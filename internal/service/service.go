package service

import (
	"strings"

	"attendance-service/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.GetLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// validateInput runs the struct tags of input and reports the first failing
// field as an apperr.ErrValidation.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperr.Validation(err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Validationf("%s is required", field)
	case "email":
		return apperr.Validationf("%s must be a valid email address", field)
	case "oneof":
		return apperr.Validationf("%s must be one of: %s", field, fe.Param())
	case "max":
		return apperr.Validationf("%s must be at most %s characters", field, fe.Param())
	}
	return apperr.Validationf("%s is invalid", field)
}

// normalizeEmail trims and lowercases an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
