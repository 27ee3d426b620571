package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/db"
	"github.com/lib/pq"
)

type Provider string

var (
	CardProvider   Provider = "card"
	WalletProvider Provider = "wallet"
)

type Purpose string

var (
	DepositPurpose Purpose = "deposit"
	InvoicePurpose Purpose = "invoice"
)

// PaymentRecord is a confirmed provider transaction. Records are append-only.
type PaymentRecord struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	Provider          Provider  `json:"provider"`
	Purpose           Purpose   `json:"purpose"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	Email             string    `json:"email,omitempty"`
	Notes             string    `json:"notes"`
}

type PaymentRecordStore interface {
	// Upsert inserts record unless one already exists for its
	// (provider, provider_payment_id) pair, in which case the stored record is
	// returned untouched and wasNew is false.
	Upsert(ctx context.Context, record *PaymentRecord) (stored *PaymentRecord, wasNew bool, err error)
	GetByProviderPaymentID(ctx context.Context, provider Provider, providerPaymentID string) (*PaymentRecord, error)
}

type PaymentRecordModel struct {
	db *sql.DB
}

func NewPaymentRecordModel(db *sql.DB) PaymentRecordStore {
	return &PaymentRecordModel{db}
}

const uniqueViolation = "23505"

func (m *PaymentRecordModel) Upsert(ctx context.Context, record *PaymentRecord) (*PaymentRecord, bool, error) {
	if record.ID == "" {
		record.ID = db.GenerateULID()
	}

	query := `INSERT INTO payment_records(id, provider, purpose, amount, currency, provider_payment_id, email, notes)
			 VALUES($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (provider, provider_payment_id) DO NOTHING
			 RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	args := []any{
		record.ID,
		record.Provider,
		record.Purpose,
		record.Amount,
		record.Currency,
		record.ProviderPaymentID,
		sql.NullString{String: record.Email, Valid: record.Email != ""},
		record.Notes,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&record.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// the conflicting row belongs to whoever inserted first
		case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		default:
			return nil, false, err
		}

		existing, err := m.GetByProviderPaymentID(ctx, record.Provider, record.ProviderPaymentID)
		if err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	return record, true, nil
}

func (m *PaymentRecordModel) GetByProviderPaymentID(ctx context.Context, provider Provider, providerPaymentID string) (*PaymentRecord, error) {
	query := `SELECT
				id,
				created_at,
				provider,
				purpose,
				amount,
				currency,
				provider_payment_id,
				email,
				notes
				FROM payment_records
				WHERE provider = $1 AND provider_payment_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var (
		record PaymentRecord
		email  sql.NullString
	)

	err := m.db.QueryRowContext(ctx, query, provider, providerPaymentID).Scan(
		&record.ID,
		&record.CreatedAt,
		&record.Provider,
		&record.Purpose,
		&record.Amount,
		&record.Currency,
		&record.ProviderPaymentID,
		&email,
		&record.Notes,
	)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	record.Email = email.String

	return &record, nil
}
