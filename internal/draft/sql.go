package draft

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores the collection in the kv_store table.
type SQLBackend struct {
	db  *sqlx.DB
	key string
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db, key: Key}
}

func (b *SQLBackend) Read() ([]byte, error) {
	var value string
	err := b.db.Get(&value, b.db.Rebind(`SELECT value FROM kv_store WHERE name = ?`), b.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (b *SQLBackend) Write(data []byte) error {
	_, err := b.db.Exec(b.db.Rebind(`INSERT INTO kv_store (name, value) VALUES (?, ?)
                ON CONFLICT (name) DO UPDATE SET value = excluded.value`), b.key, string(data))
	return err
}
