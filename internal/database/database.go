package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/entities"
)

// Database owns the single storage connection for the process lifetime.
type Database struct {
	DB     *gorm.DB
	Driver string
}

func NewDatabase(cfg config.Database) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	// One connection by default: at most one statement is in flight at a time.
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)

	database := &Database{DB: db, Driver: cfg.Driver}

	if cfg.CreateSchema {
		if err := database.EnsureSchema(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	log.Printf("Database initialized successfully (driver=%s)", cfg.Driver)

	return database, nil
}

// EnsureSchema creates missing tables. Existing tables are left as they are
// apart from gorm adding missing columns and indexes.
func (d *Database) EnsureSchema() error {
	err := d.DB.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying connection for the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func dialector(cfg config.Database) gorm.Dialector {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN())
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN())
	default:
		return sqlite.Open(cfg.DSN())
	}
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
