package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/timmy/sitegen/internal/config"
	"github.com/timmy/sitegen/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewJobStore builds the job store selected by cfg.Driver.
// Parameters:
//   - cfg: store configuration (memory, sqlite or postgres).
//
// Returns:
//   - JobStore: ready to use store.
//   - error: non-nil if the database cannot be opened or migrated.
func NewJobStore(cfg *config.StoreConfig) (JobStore, error) {
	if cfg.Driver == "" || cfg.Driver == "memory" {
		return NewMemoryJobStore(), nil
	}

	db, err := InitDB(cfg)
	if err != nil {
		return nil, err
	}
	return NewGormJobStore(db), nil
}

// InitDB opens the database for the configured driver and migrates the job table.
func InitDB(cfg *config.StoreConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	logger.Info("Initializing job database: driver=%s", cfg.Driver)

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "postgres":
		db, err = initPostgres(cfg, gormConfig)
	case "sqlite":
		db, err = initSQLite(cfg, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&jobRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// initPostgres opens PostgreSQL with the simple protocol so transaction poolers work
func initPostgres(cfg *config.StoreConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.ConnString(),
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

func initSQLite(cfg *config.StoreConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	path := cfg.ConnString()
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent jobs
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Exec("PRAGMA journal_mode=WAL")

	return db, nil
}
