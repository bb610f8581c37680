package journal

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the calculation log in process memory only.
const MemoryDSN = ":memory:"

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens dsn and creates the schema. Each connection to
// ":memory:" is a separate database, so the pool is pinned to one.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// NewMemory is NewSQLite(MemoryDSN).
func NewMemory() (*SQLite, error) {
	return NewSQLite(MemoryDSN)
}

func (j *SQLite) RecordCalculation(ctx context.Context, c CalculationRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO calculations
		(id, kind, pair, account_currency, ask, cached, parameters, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Kind, c.Pair, c.AccountCurrency, c.Ask,
		c.Cached, c.Parameters, c.Result, c.CreatedAt,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
