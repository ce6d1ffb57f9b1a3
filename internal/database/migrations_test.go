package database

import (
	"path/filepath"
	"testing"

	"github.com/Potowai/nomad-nantes/internal/messages"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const legacySchema = `CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	chatId TEXT,
	sender TEXT,
	text TEXT,
	timestamp TEXT,
	isMe INTEGER,
	status TEXT
)`

func TestOpenMessageDBImportsLegacyTable(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "legacy.db")

	legacy, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := legacy.Exec(legacySchema).Error; err != nil {
		testContext.Fatalf("failed to create legacy schema: %v", err)
	}
	rows := [][]any{
		{"1", "chat_1", "Lucia", "Je suis partante !", "21:24", 0, "read"},
		{"2", "chat_1", "Moi", "J'arrive", "21:30", 1, nil},
		{"3", "chat_2", "Sarah", "Des places vers Bouffay ?", "09:00", 0, "sent"},
	}
	for _, row := range rows {
		if err := legacy.Exec("INSERT INTO messages VALUES (?, ?, ?, ?, ?, ?, ?)", row...).Error; err != nil {
			testContext.Fatalf("failed to insert legacy row: %v", err)
		}
	}
	legacySQL, _ := legacy.DB()
	_ = legacySQL.Close()

	database, err := OpenMessageDB(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open message db: %v", err)
	}
	sqlDB, _ := database.DB()
	defer sqlDB.Close()

	var imported []messages.Record
	if err := database.Order("seq ASC").Find(&imported).Error; err != nil {
		testContext.Fatalf("failed to load imported rows: %v", err)
	}
	if len(imported) != 3 {
		testContext.Fatalf("expected 3 imported rows, got %d", len(imported))
	}
	if imported[1].MessageID != "2" || !imported[1].IsMe || imported[1].Status != "sent" {
		testContext.Fatalf("unexpected second row: %+v", imported[1])
	}
	if imported[2].ChatID != "chat_2" || imported[2].Body != "Des places vers Bouffay ?" {
		testContext.Fatalf("unexpected third row: %+v", imported[2])
	}
	if database.Migrator().HasTable(legacyMessagesTable) {
		testContext.Fatalf("expected legacy table to be dropped")
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationImportLegacyMessages).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestOpenMessageDBOnFreshFile(testContext *testing.T) {
	databasePath := filepath.Join(testContext.TempDir(), "fresh.db")

	database, err := OpenMessageDB(databasePath, nil)
	if err != nil {
		testContext.Fatalf("failed to open message db: %v", err)
	}
	sqlDB, _ := database.DB()
	defer sqlDB.Close()

	if !database.Migrator().HasTable(&messages.Record{}) {
		testContext.Fatalf("expected chat_messages table")
	}
	var count int64
	if err := database.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		testContext.Fatalf("failed to count migrations: %v", err)
	}
	if count != 1 {
		testContext.Fatalf("expected the import migration to be recorded once, got %d", count)
	}
}

func TestOpenMessageDBRequiresPath(testContext *testing.T) {
	if _, err := OpenMessageDB("", nil); err == nil {
		testContext.Fatalf("expected error for empty path")
	}
}
