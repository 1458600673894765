package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. Driver errors are translated
// into gorm's ErrDuplicatedKey and ErrForeignKeyViolated.
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	if driver == "sqlite" {
		// SQLite ignores foreign keys unless asked on every connection.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			log.WithError(err).Warn("Failed to enable foreign keys")
		}
	}

	return db, nil
}

// OpenInMemory returns a private in-memory SQLite database. The pool is
// limited to one connection so every query sees the same database.
func OpenInMemory(log *logrus.Logger) (*gorm.DB, error) {
	db, err := Open("sqlite", "file::memory:?_foreign_keys=on", log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database instance")
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	case level >= logrus.ErrorLevel:
		return logger.Error
	}
	return logger.Silent
}
