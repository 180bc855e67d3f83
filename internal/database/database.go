// Package database opens the MySQL connection and applies schema migrations
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsTable keeps this service's migration state apart from other services sharing the database
const MigrationsTable = "content_schema_migrations"

// Connect connects to the database
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// MigrationsSource returns the file:// URL of the first existing directory among candidates.
// With no candidates it looks for ./migrations and ../migrations.
func MigrationsSource(candidates ...string) string {
	if len(candidates) == 0 {
		candidates = []string{"migrations", "../migrations"}
	}
	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			return "file://" + dir
		}
	}
	return "file://" + candidates[0]
}

// RunMigrations applies all pending migrations from sourceURL
func RunMigrations(db *sql.DB, sourceURL string) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
