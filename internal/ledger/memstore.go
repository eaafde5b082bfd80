package ledger

import (
	"context"
	"errors"
	"sync"

	"wager_service/internal/domain"
)

// MemStore is an in-memory Store for tests and local development.
// FailSaves makes the next N Save calls fail, to exercise the
// persistence-failure rollback path.
type MemStore struct {
	mu        sync.Mutex
	balances  map[int64]domain.Amount
	FailSaves int
}

func NewMemStore() *MemStore {
	return &MemStore{balances: make(map[int64]domain.Amount)}
}

// Seed sets an initial balance outside the ledger path.
func (s *MemStore) Seed(playerID int64, balance domain.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[playerID] = balance
}

func (s *MemStore) Load(_ context.Context, playerID int64) (domain.Amount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[playerID]
	return b, ok, nil
}

func (s *MemStore) Save(_ context.Context, playerID int64, balance, _ domain.Amount, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves > 0 {
		s.FailSaves--
		return errors.New("simulated store failure")
	}
	s.balances[playerID] = balance
	return nil
}
