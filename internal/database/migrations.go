package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Blobs written by the browser client hold a camelCase "messages" table.
const (
	migrationImportLegacyMessages = "2025-06-01_import_legacy_messages"
	legacyMessagesTable           = "messages"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationImportLegacyMessages, apply: importLegacyMessages},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Transaction(migration.apply); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

func importLegacyMessages(tx *gorm.DB) error {
	if !tx.Migrator().HasTable(legacyMessagesTable) {
		return nil
	}
	copyRows := `INSERT OR IGNORE INTO chat_messages (chat_id, message_id, sender, body, display_time, is_me, status)
		SELECT "chatId", "id", COALESCE("sender", ''), COALESCE("text", ''), COALESCE("timestamp", ''),
			COALESCE("isMe", 0) <> 0, COALESCE(NULLIF("status", ''), 'sent')
		FROM "messages"
		WHERE "chatId" IS NOT NULL AND "id" IS NOT NULL
		ORDER BY rowid`
	if err := tx.Exec(copyRows).Error; err != nil {
		return err
	}
	return tx.Migrator().DropTable(legacyMessagesTable)
}
