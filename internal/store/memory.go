package store

import (
	"context"
	"sync"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/db"
)

type paymentKey struct {
	provider          Provider
	providerPaymentID string
}

type MemoryPaymentRecordStore struct {
	mu      sync.Mutex
	records map[paymentKey]PaymentRecord
}

func NewMemoryPaymentRecordStore() *MemoryPaymentRecordStore {
	return &MemoryPaymentRecordStore{
		records: make(map[paymentKey]PaymentRecord),
	}
}

func (s *MemoryPaymentRecordStore) Upsert(_ context.Context, record *PaymentRecord) (*PaymentRecord, bool, error) {
	key := paymentKey{record.Provider, record.ProviderPaymentID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		return &existing, false, nil
	}

	if record.ID == "" {
		record.ID = db.GenerateULID()
	}
	record.CreatedAt = time.Now().UTC()

	s.records[key] = *record

	stored := *record
	return &stored, true, nil
}

func (s *MemoryPaymentRecordStore) GetByProviderPaymentID(_ context.Context, provider Provider, providerPaymentID string) (*PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[paymentKey{provider, providerPaymentID}]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return &record, nil
}

// Len returns the number of stored records.
func (s *MemoryPaymentRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
