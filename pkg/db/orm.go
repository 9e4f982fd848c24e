package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feastiq/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewGormConnection создает соединение с базой данных через GORM.
// Для sqlite DSN - путь к файлу (каталог создается при необходимости) или "memory".
// Для postgres используется database/sql драйвер lib/pq.
func NewGormConnection(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.New(
			zap.NewStdLog(logger.Named("gorm")),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		// Время создания записей хранится в UTC
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		return openSQLite(cfg.DSN, gormConfig)
	case DriverPostgres:
		db, err := gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.DSN,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

func openSQLite(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	switch {
	case dsn == "memory" || dsn == "":
		dsn = "file::memory:?cache=shared"
	case !strings.HasPrefix(dsn, "file:"):
		if dir := filepath.Dir(dsn); dir != "." && dir != "/" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory %q: %w", dir, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	// sqlite допускает одного писателя; одно соединение избавляет от SQLITE_BUSY
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Close закрывает пул соединений, стоящий за *gorm.DB.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
