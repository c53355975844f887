// Package database manages the GORM connection and schema migrations.
// The default deployment is a local SQLite file, matching the on-device
// nature of the ledger; a Postgres driver is available for hosted setups.
package database

import (
	"fmt"
	"time"

	"khata/internal/config"
	"khata/internal/logger"
	"khata/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of GORM models that make up the ledger schema.
var allModels = []interface{}{
	&models.Person{},
	&models.Transaction{},
	&models.Tag{},
	&models.TransactionTag{},
	&models.Settlement{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	driver string
	pgURL  string
}

// NewManager opens a database connection for the configured driver.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{driver: cfg.DBDriver}

	switch cfg.DBDriver {
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		m.db = db

	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)

		m.db = db
		m.pgURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return m, nil
}

// Migrate brings the schema up to date. SQLite auto-migrates from the
// model definitions; Postgres applies the SQL migrations in migrations/.
func (m *Manager) Migrate() error {
	if m.driver == "postgres" {
		return m.runSQLMigrations()
	}

	if err := m.db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

func (m *Manager) runSQLMigrations() error {
	logger.Get().Info("Running database migrations...")

	mig, err := migrate.New("file://migrations", m.pgURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}
