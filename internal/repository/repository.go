package repository

import (
	"context"
	"strings"

	"attendance-service/internal/apperr"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.GetLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

// translate maps gorm and driver errors onto the apperr kinds.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(apperr.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(apperr.ErrConstraintViolation, op)
	case isForeignKeyViolation(err):
		return errors.Wrap(apperr.ErrHasDependents, op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Storage(op, err)
	}

	// Dialectors without error translation still report these in the message.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return errors.Wrap(apperr.ErrConstraintViolation, op)
	}

	return apperr.Storage(op, err)
}

// isForeignKeyViolation reports whether err is a failed foreign key check.
// On delete it means the row still has dependents; on insert it means the
// referenced row is gone.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") || strings.Contains(msg, "violates foreign key")
}
