package database

import (
	"fmt"

	"github.com/Potowai/nomad-nantes/internal/messages"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenMessageDB opens the message database file at path and performs schema migrations.
func OpenMessageDB(path string, log *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := messages.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&migrationRecord{}); err != nil {
		closeDB(db)
		return nil, err
	}

	if err := applyMigrations(db, log); err != nil {
		closeDB(db)
		return nil, err
	}

	if log != nil {
		log.Debug("message database opened", zap.String("path", path))
	}

	return db, nil
}

// MessageOpener adapts OpenMessageDB to the opener the message store expects.
func MessageOpener(log *zap.Logger) messages.Opener {
	return func(path string) (*gorm.DB, error) {
		return OpenMessageDB(path, log)
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
