package ledger

import (
	"context"
	"fmt"
	"sync"

	"wager_service/internal/domain"
)

// Store durably persists balance mutations. Save must not return nil
// unless the write is durable; the ledger only commits its in-memory
// state after a successful Save.
type Store interface {
	// Load returns the current balance and whether the account exists.
	Load(ctx context.Context, playerID int64) (domain.Amount, bool, error)
	// Save writes the new balance together with the signed delta and a
	// reason tag for the transaction log.
	Save(ctx context.Context, playerID int64, balance, delta domain.Amount, reason string) error
}

type account struct {
	mu      sync.Mutex
	balance domain.Amount
	loaded  bool
}

// Ledger is the sole owner of player balances. Operations on the same
// player are serialized through the account mutex; different players
// proceed in parallel.
type Ledger struct {
	store Store

	mu       sync.RWMutex
	accounts map[int64]*account
}

func New(store Store) *Ledger {
	return &Ledger{
		store:    store,
		accounts: make(map[int64]*account),
	}
}

func (l *Ledger) account(playerID int64) *account {
	l.mu.RLock()
	a, ok := l.accounts[playerID]
	l.mu.RUnlock()
	if ok {
		return a
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok = l.accounts[playerID]; ok {
		return a
	}
	a = &account{}
	l.accounts[playerID] = a
	return a
}

func (l *Ledger) loadLocked(ctx context.Context, playerID int64, a *account) error {
	if a.loaded {
		return nil
	}
	balance, _, err := l.store.Load(ctx, playerID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	a.balance = balance
	a.loaded = true
	return nil
}

// Balance returns the player's current balance.
func (l *Ledger) Balance(ctx context.Context, playerID int64) (domain.Amount, error) {
	a := l.account(playerID)
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := l.loadLocked(ctx, playerID, a); err != nil {
		return 0, err
	}
	return a.balance, nil
}

// Debit removes amount from the balance. It fails closed: on
// insufficient funds or a persistence failure nothing changes.
func (l *Ledger) Debit(ctx context.Context, playerID int64, amount domain.Amount, reason string) (domain.Amount, error) {
	if amount <= 0 {
		return 0, domain.Validationf("amount must be positive")
	}

	a := l.account(playerID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := l.loadLocked(ctx, playerID, a); err != nil {
		return 0, err
	}
	if a.balance < amount {
		return a.balance, domain.ErrInsufficientFunds
	}

	next := a.balance - amount
	if err := l.store.Save(ctx, playerID, next, -amount, reason); err != nil {
		return a.balance, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	a.balance = next
	return next, nil
}

// Credit adds amount to the balance. The in-memory balance moves only
// after the write is durable.
func (l *Ledger) Credit(ctx context.Context, playerID int64, amount domain.Amount, reason string) (domain.Amount, error) {
	if amount <= 0 {
		return 0, domain.Validationf("amount must be positive")
	}

	a := l.account(playerID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := l.loadLocked(ctx, playerID, a); err != nil {
		return 0, err
	}

	next := a.balance + amount
	if err := l.store.Save(ctx, playerID, next, amount, reason); err != nil {
		return a.balance, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	a.balance = next
	return next, nil
}
