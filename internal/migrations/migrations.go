package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS patients (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            patient_id INTEGER NOT NULL,
            doctor TEXT NOT NULL DEFAULT '',
            issued_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(patient_id) REFERENCES patients(id)
        );`,
	`CREATE TABLE IF NOT EXISTS prescription_medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            prescription_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            position INTEGER NOT NULL DEFAULT 0,
            FOREIGN KEY(prescription_id) REFERENCES prescriptions(id)
        );`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            brand TEXT NOT NULL DEFAULT '',
            generic_name TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS variations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            catalog_item_id INTEGER NOT NULL,
            sku TEXT NOT NULL UNIQUE,
            unit_price REAL NOT NULL,
            stock INTEGER NOT NULL DEFAULT 0,
            unit TEXT NOT NULL DEFAULT '',
            position INTEGER NOT NULL DEFAULT 0,
            FOREIGN KEY(catalog_item_id) REFERENCES catalog_items(id)
        );`,
	`CREATE TABLE IF NOT EXISTS discount_tiers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            variation_id INTEGER NOT NULL,
            minimum_quantity INTEGER NOT NULL,
            kind TEXT NOT NULL,
            value REAL NOT NULL,
            FOREIGN KEY(variation_id) REFERENCES variations(id)
        );`,
	`CREATE TABLE IF NOT EXISTS kv_store (
            name TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS patients (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
            id SERIAL PRIMARY KEY,
            patient_id INTEGER NOT NULL REFERENCES patients(id),
            doctor TEXT NOT NULL DEFAULT '',
            issued_at TIMESTAMPTZ DEFAULT NOW()
        );`,
	`CREATE TABLE IF NOT EXISTS prescription_medicines (
            id SERIAL PRIMARY KEY,
            prescription_id INTEGER NOT NULL REFERENCES prescriptions(id),
            name TEXT NOT NULL,
            position INTEGER NOT NULL DEFAULT 0
        );`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            brand TEXT NOT NULL DEFAULT '',
            generic_name TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS variations (
            id SERIAL PRIMARY KEY,
            catalog_item_id INTEGER NOT NULL REFERENCES catalog_items(id),
            sku TEXT NOT NULL UNIQUE,
            unit_price NUMERIC(12,2) NOT NULL,
            stock INTEGER NOT NULL DEFAULT 0,
            unit TEXT NOT NULL DEFAULT '',
            position INTEGER NOT NULL DEFAULT 0
        );`,
	`CREATE TABLE IF NOT EXISTS discount_tiers (
            id SERIAL PRIMARY KEY,
            variation_id INTEGER NOT NULL REFERENCES variations(id),
            minimum_quantity INTEGER NOT NULL,
            kind TEXT NOT NULL,
            value NUMERIC(12,2) NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS kv_store (
            name TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`,
}

// Run creates the schema required by the POS backend. The dialect follows the
// driver the connection was opened with.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
