package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

const QueryTimeoutDuration = 5 * time.Second

type Storage struct {
	Payments PaymentRecordStore
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		Payments: NewPaymentRecordModel(db),
	}
}

// NewMemoryStorage backs the storage with process memory. Records do not
// survive a restart.
func NewMemoryStorage() *Storage {
	return &Storage{
		Payments: NewMemoryPaymentRecordStore(),
	}
}

func withTrx(db *sql.DB, ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
