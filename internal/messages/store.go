package messages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Potowai/nomad-nantes/internal/kv"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	errMissingStorage = errors.New("blob storage is required")
	noOpLogger        = zap.NewNop()
)

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opStoreNew   = "messages.store.new"
	opInitialize = "messages.initialize"
	opList       = "messages.list"
	opAdd        = "messages.add"
	opPersist    = "messages.persist"
	opClose      = "messages.close"

	liveDatabaseFile = "messages.db"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// BlobStorage is the durable key/value storage holding the serialized database.
// Get must return kv.ErrNotFound when the key is absent.
type BlobStorage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Opener opens the SQLite database file at path and ensures the schema exists.
// The default, OpenSQLite, only creates chat_messages; stores that may restore
// blobs written by the browser client should use database.MessageOpener so the
// legacy table is imported.
type Opener func(path string) (*gorm.DB, error)

// Recorder receives store activity for metrics.
type Recorder interface {
	MessageAppended()
	StorePersisted(blobBytes int)
	StoreRecovered()
}

type StoreConfig struct {
	Storage BlobStorage
	// WorkDir holds the live database file and serialization snapshots.
	// A private temporary directory is created when empty.
	WorkDir  string
	Ordering Ordering
	Opener   Opener
	Seed     []SeedMessage
	Logger   *zap.Logger
	Recorder Recorder
}

// Store is the persistent chat message log. The whole SQLite database is
// serialized into durable storage after every mutation.
type Store struct {
	mu          sync.Mutex
	storage     BlobStorage
	workDir     string
	ownsWorkDir bool
	ordering    Ordering
	opener      Opener
	seed        []SeedMessage
	logger      *zap.Logger
	recorder    Recorder
	db          *gorm.DB
	snapshots   int
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Storage == nil {
		return nil, newServiceError(opStoreNew, "missing_storage", errMissingStorage)
	}

	ordering := cfg.Ordering
	if ordering == "" {
		ordering = OrderingInsertion
	}
	if _, err := ParseOrdering(string(ordering)); err != nil {
		return nil, newServiceError(opStoreNew, "invalid_ordering", err)
	}

	opener := cfg.Opener
	if opener == nil {
		opener = OpenSQLite
	}

	seed := cfg.Seed
	if seed == nil {
		seed = DefaultSeed()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Store{
		storage:  cfg.Storage,
		workDir:  cfg.WorkDir,
		ordering: ordering,
		opener:   opener,
		seed:     seed,
		logger:   logger,
		recorder: recorder,
	}, nil
}

// OpenSQLite opens path with the embedded SQLite driver on a single
// connection and migrates the chat_messages table. It does not import the
// legacy browser "messages" table; database.OpenMessageDB layers that on top.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("messages: database path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Record{}); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Ready reports whether Initialize has completed.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

// Initialize loads the database from durable storage, or creates and seeds a
// fresh one when none is stored or the stored blob is unreadable. The result
// is persisted immediately. Calls after a successful Initialize are no-ops.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if err := s.prepareWorkDir(); err != nil {
		s.logError(opInitialize, "work_dir_failed", err)
		return newServiceError(opInitialize, "work_dir_failed", err)
	}

	var db *gorm.DB
	blob, err := s.storage.Get(StorageKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logger.Info("no stored message database, seeding a fresh one")
		db, err = s.createSeeded(ctx)
	case err != nil:
		s.logError(opInitialize, "storage_read_failed", err)
		return newServiceError(opInitialize, "storage_read_failed", err)
	default:
		db, err = s.restore(ctx, blob)
		if err != nil {
			s.logger.Warn("discarding unreadable message database",
				zap.Int("blob_bytes", len(blob)),
				zap.Error(err))
			s.recorder.StoreRecovered()
			db, err = s.createSeeded(ctx)
		}
	}
	if err != nil {
		s.logError(opInitialize, "open_failed", err)
		return newServiceError(opInitialize, "open_failed", err)
	}

	s.db = db
	return s.persistLocked(ctx)
}

// Messages returns the messages of chatID in store order. It returns an empty
// slice when the store is not initialized.
func (s *Store) Messages(ctx context.Context, chatID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return []Message{}, nil
	}

	var records []Record
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order(s.ordering.orderClause()).
		Find(&records).Error; err != nil {
		s.logError(opList, "query_failed", err, zap.String("chat_id", chatID))
		return nil, newServiceError(opList, "query_failed", err)
	}

	result := make([]Message, 0, len(records))
	for _, record := range records {
		result = append(result, record.message())
	}
	return result, nil
}

// AddMessage appends message to chatID and persists the database. A missing
// status defaults to StatusSent. It is a no-op when the store is not initialized.
func (s *Store) AddMessage(ctx context.Context, chatID string, message Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if strings.TrimSpace(chatID) == "" {
		return newServiceError(opAdd, "invalid_chat_id", ErrInvalidChatID)
	}
	if strings.TrimSpace(message.ID) == "" {
		return newServiceError(opAdd, "invalid_message_id", ErrInvalidMessageID)
	}

	record := newRecord(chatID, message)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opAdd, "insert_failed", err,
			zap.String("chat_id", chatID),
			zap.String("message_id", message.ID))
		return newServiceError(opAdd, "insert_failed", err)
	}
	s.recorder.MessageAppended()

	return s.persistLocked(ctx)
}

// Persist serializes the whole database and writes it under StorageKey.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Close releases the database handle and removes the working files. A closed
// store can be initialized again from durable storage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closeErr error
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			closeErr = sqlDB.Close()
		} else {
			closeErr = err
		}
		s.db = nil
	}
	if s.ownsWorkDir && s.workDir != "" {
		if err := os.RemoveAll(s.workDir); err != nil && closeErr == nil {
			closeErr = err
		}
		s.workDir = ""
		s.ownsWorkDir = false
	}
	if closeErr != nil {
		return newServiceError(opClose, "close_failed", closeErr)
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	s.snapshots++
	snapshotPath := filepath.Join(s.workDir, fmt.Sprintf("snapshot-%d.db", s.snapshots))
	if err := removeIfExists(snapshotPath); err != nil {
		return newServiceError(opPersist, "snapshot_cleanup_failed", err)
	}
	defer os.Remove(snapshotPath) //nolint:errcheck

	vacuum := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(snapshotPath, "'", "''"))
	if err := s.db.WithContext(ctx).Exec(vacuum).Error; err != nil {
		s.logError(opPersist, "serialize_failed", err)
		return newServiceError(opPersist, "serialize_failed", err)
	}
	raw, err := os.ReadFile(snapshotPath)
	if err != nil {
		s.logError(opPersist, "snapshot_read_failed", err)
		return newServiceError(opPersist, "snapshot_read_failed", err)
	}
	blob, err := EncodeBlob(raw)
	if err != nil {
		return newServiceError(opPersist, "encode_failed", err)
	}
	if err := s.storage.Set(StorageKey, blob); err != nil {
		s.logError(opPersist, "storage_write_failed", err)
		return newServiceError(opPersist, "storage_write_failed", err)
	}

	s.recorder.StorePersisted(len(raw))
	s.logger.Debug("message database persisted", zap.Int("bytes", len(raw)))
	return nil
}

func (s *Store) restore(ctx context.Context, blob []byte) (*gorm.DB, error) {
	raw, err := DecodeBlob(blob)
	if err != nil {
		return nil, err
	}
	livePath := s.livePath()
	if err := removeDatabaseFiles(livePath); err != nil {
		return nil, err
	}
	if err := os.WriteFile(livePath, raw, 0o600); err != nil {
		return nil, err
	}

	db, err := s.opener(livePath)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := db.WithContext(ctx).Model(&Record{}).Count(&count).Error; err != nil {
		closeDatabase(db)
		return nil, err
	}
	s.logger.Info("message database restored", zap.Int64("messages", count))
	return db, nil
}

func (s *Store) createSeeded(ctx context.Context) (*gorm.DB, error) {
	livePath := s.livePath()
	if err := removeDatabaseFiles(livePath); err != nil {
		return nil, err
	}

	db, err := s.opener(livePath)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range s.seed {
			record := newRecord(seed.ChatID, seed.Message)
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		closeDatabase(db)
		return nil, err
	}
	return db, nil
}

func (s *Store) prepareWorkDir() error {
	if s.workDir != "" {
		return os.MkdirAll(s.workDir, 0o700)
	}
	dir, err := os.MkdirTemp("", "nomadtable-messages-")
	if err != nil {
		return err
	}
	s.workDir = dir
	s.ownsWorkDir = true
	return nil
}

func (s *Store) livePath() string {
	return filepath.Join(s.workDir, liveDatabaseFile)
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("message store error", attrs...)
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func removeDatabaseFiles(path string) error {
	for _, candidate := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := removeIfExists(candidate); err != nil {
			return err
		}
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type nopRecorder struct{}

func (nopRecorder) MessageAppended()   {}
func (nopRecorder) StorePersisted(int) {}
func (nopRecorder) StoreRecovered()    {}
