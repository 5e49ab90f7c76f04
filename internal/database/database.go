package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development and tests
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db}, nil
}

// Migrate applies any pending migration groups in order, recording each
// applied version in schema_migrations. Versions already recorded are
// skipped, so the list runs exactly once per database.
func Migrate(db *gorm.DB) error {
	err := db.Exec(dialectSQL(db, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`)).Error
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.Raw(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current).Error; err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		group := migrations[i]
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range group {
				if err := tx.Exec(dialectSQL(tx, stmt)).Error; err != nil {
					return fmt.Errorf("migration %d failed: %w", version, err)
				}
			}
			return tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version).Error
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// dialectSQL rewrites the canonical PostgreSQL DDL for SQLite, whose driver
// only maps DATETIME-declared columns back to time.Time.
func dialectSQL(db *gorm.DB, stmt string) string {
	if db.Dialector.Name() == "sqlite" {
		return strings.ReplaceAll(stmt, "TIMESTAMPTZ", "DATETIME")
	}
	return stmt
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
