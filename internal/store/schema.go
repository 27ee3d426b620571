package store

import (
	"context"
	"database/sql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS payment_records (
		id                  TEXT PRIMARY KEY,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		provider            TEXT NOT NULL,
		purpose             TEXT NOT NULL,
		amount              NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
		currency            TEXT NOT NULL,
		provider_payment_id TEXT NOT NULL,
		email               TEXT,
		notes               TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS payment_records_provider_payment_id_key
		ON payment_records (provider, provider_payment_id)`,
}

// EnsureSchema creates the payment_records table and its uniqueness index
// when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return withTrx(db, ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
