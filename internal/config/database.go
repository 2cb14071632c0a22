package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/repository"
	pgrepo "github.com/Kerhoff/ChurchCal/internal/repository/postgres"
	"github.com/Kerhoff/ChurchCal/internal/repository/sqlite"
)

const sqliteScheme = "sqlite://"

// Database holds database connection and configuration
type Database struct {
	*sql.DB
	driver string
	events repository.EventRepository
	logger *logrus.Logger
}

// NewDatabase creates a new database connection. URLs starting with
// sqlite:// open an embedded SQLite file; anything else is handed to the
// postgres driver.
func NewDatabase(databaseURL string, logger *logrus.Logger) (*Database, error) {
	if path, ok := strings.CutPrefix(databaseURL, sqliteScheme); ok {
		db, err := sqlite.Open(context.Background(), path)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", path).Info("SQLite database opened")
		return &Database{
			DB:     db.DB,
			driver: "sqlite",
			events: sqlite.NewEventRepository(db),
			logger: logger,
		}, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully")

	return &Database{
		DB:     db,
		driver: "postgres",
		events: pgrepo.NewEventRepository(db),
		logger: logger,
	}, nil
}

// Driver returns "postgres" or "sqlite".
func (d *Database) Driver() string {
	return d.driver
}

// Events returns the event repository backed by this connection.
func (d *Database) Events() repository.EventRepository {
	return d.events
}

// Migrate runs database migrations. SQLite databases carry an embedded
// schema and need none.
func (d *Database) Migrate(migrationsPath string) error {
	if d.driver == "sqlite" {
		return nil
	}

	driver, err := postgres.WithInstance(d.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
