package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"rates_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite archive of chat log entries. It implements domain.ChatLogSink.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the archive at path. An empty path uses the per-OS default.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.ChatLogEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "RatesGo", "data", "chatlog.db"), nil
}

// Append stores one entry. The entry is copied, so callers may reuse it.
func (s *Storage) Append(ctx context.Context, entry domain.ChatLogEntry) error {
	entry.ID = 0
	return s.db.WithContext(ctx).Create(&entry).Error
}

// Recent returns up to limit entries, newest first
func (s *Storage) Recent(ctx context.Context, limit int) ([]domain.ChatLogEntry, error) {
	var entries []domain.ChatLogEntry
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// BySender returns every entry sent under the given display name in arrival order
func (s *Storage) BySender(ctx context.Context, sender string) ([]domain.ChatLogEntry, error) {
	var entries []domain.ChatLogEntry
	err := s.db.WithContext(ctx).Where("sender = ?", sender).Order("id ASC").Find(&entries).Error
	return entries, err
}

// Count returns the number of archived entries
func (s *Storage) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.ChatLogEntry{}).Count(&n).Error
	return n, err
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
