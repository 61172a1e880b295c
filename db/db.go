// SPDX-License-Identifier: GPL-3.0-only

package db

import (
	"fmt"

	"deletion-server/commons"
	"deletion-server/migrations"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the record store selected by cfg.Dialect.
func Open(cfg commons.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	var dbInfo string

	switch cfg.Dialect {
	case "postgres":
		commons.Logger.Debug("Connecting to PostgreSQL database")
		dialector = postgres.Open(cfg.PostgresDSN)
		dbInfo = "PostgreSQL database (DSN hidden)"
	case "mysql":
		commons.Logger.Debug("Connecting to MySQL database")
		dialector = mysql.Open(cfg.MySQLDSN)
		dbInfo = "MySQL database (DSN hidden)"
	case "sqlite", "":
		commons.Logger.Debug("Connecting to SQLite database at", cfg.Path)
		dialector = sqlite.Open(cfg.Path)
		dbInfo = cfg.Path
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", cfg.Dialect)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}
	commons.Logger.Infof("Database connection established. %s %s, %s %s",
		"dialect:", cfg.Dialect,
		"database:", dbInfo,
	)
	return conn, nil
}

// Migrate applies every pending schema migration.
func Migrate(conn *gorm.DB) error {
	commons.Logger.Info("Running database migrations")
	m := gormigrate.New(conn, gormigrate.DefaultOptions, migrations.List())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	commons.Logger.Info("Database migration completed")
	return nil
}
