package dbstore

import (
	"errors"
	"fmt"

	"github.com/yiblet/spares/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SchemaVersion is written under the db_version key on first open.
const SchemaVersion = "1"

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It initializes the database schema and records the schema version.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := db.AutoMigrate(&StateItemModel{}); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := s.initSchemaVersion(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to init schema version: %w", err)
	}

	return s, nil
}

// State returns the client-state store
func (s *SQLiteStore) State() store.KVStore {
	return &sqliteKVStore{db: s.db}
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) initSchemaVersion() error {
	kv := s.State()
	if _, err := kv.Get("db_version"); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return kv.Set("db_version", SchemaVersion)
	}
	return nil
}

// sqliteKVStore implements store.KVStore using SQLite
type sqliteKVStore struct {
	db *gorm.DB
}

// Get retrieves a value by key
func (s *sqliteKVStore) Get(key string) (string, error) {
	var model StateItemModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get state: %w", err)
	}
	return model.Value, nil
}

// Set stores a value (upsert)
func (s *sqliteKVStore) Set(key, value string) error {
	model := &StateItemModel{
		Key:   key,
		Value: value,
	}

	// Upsert: update if exists, insert if not
	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": s.db.NowFunc()}).
		FirstOrCreate(model)

	if result.Error != nil {
		return fmt.Errorf("failed to set state: %w", result.Error)
	}

	return nil
}

// Entries returns all pairs ordered by key
func (s *sqliteKVStore) Entries() ([]*store.Entry, error) {
	var models []*StateItemModel
	if err := s.db.Order("key ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}

	entries := make([]*store.Entry, len(models))
	for i, model := range models {
		entries[i] = model.ToEntry()
	}

	return entries, nil
}

// Delete removes a key
func (s *sqliteKVStore) Delete(key string) error {
	result := s.db.Delete(&StateItemModel{}, "key = ?", key)
	if result.Error != nil {
		return fmt.Errorf("failed to delete state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return nil
}

// Close releases any resources
func (s *sqliteKVStore) Close() error {
	return nil // No-op, parent store handles DB closing
}
