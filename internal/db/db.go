package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merchpos/merchpos/internal/models"
)

// ConnectAndMigrate opens the database named by dsn and brings the schema
// up to date. Postgres DSNs (URL or key=value form) go through the postgres
// driver with connection retries; everything else is treated as a sqlite
// path.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	if isPostgres(dsn) {
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			fmt.Println("Retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// MIGRATIONS=1 runs the SQL files in ./migrations via golang-migrate
	// (postgres deployments); otherwise AutoMigrate keeps dev and sqlite
	// setups current.
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if !isPostgres(dsn) {
			return nil, fmt.Errorf("SQL migrations require a postgres DSN")
		}
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range []any{&models.User{}, &models.InventoryItem{}, &models.SaleRecord{}} {
			if migErr := conn.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "inventory_items", "sale_records"} {
		if !conn.Migrator().HasTable(table) {
			return nil, fmt.Errorf("missing table after migration: %s", table)
		}
	}
	return conn, nil
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}
