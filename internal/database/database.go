package database

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens a PostgreSQL database when the DSN is a postgres URL and a
// SQLite database otherwise.
func Connect(dsn string) (*sqlx.DB, error) {
	driver, maxOpen := "sqlite", 1
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver, maxOpen = "pgx", 10
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	return db, nil
}
