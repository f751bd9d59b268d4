package db

import (
	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for
	// golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
