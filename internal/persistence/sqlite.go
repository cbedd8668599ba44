package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/techtimeoff/leave-service/internal/config"
)

// MemoryPath opens a private in-process database.
const MemoryPath = ":memory:"

// SQLite wraps the embedded gorm database used when STORAGE_DRIVER=sqlite.
type SQLite struct {
	DB *gorm.DB
}

// NewSQLite opens the database file at cfg.Path.
func NewSQLite(cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.New(gormLogWriter{logger.Sugar()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Writes serialize on a single connection; a memory database lives only as
	// long as its connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			logger.Warn("sqlite pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	logger.Info("opened sqlite database", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

// Ping verifies the database handle.
func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying handle.
func (s *SQLite) Close() {
	if sqlDB, err := s.sqlDB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *SQLite) sqlDB() (*sql.DB, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("sqlite not configured")
	}
	return s.DB.DB()
}

type gormLogWriter struct {
	logger *zap.SugaredLogger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Warnf(format, args...)
}
