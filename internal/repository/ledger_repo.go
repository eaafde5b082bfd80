package repository

import (
	"context"
	"errors"

	"wager_service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository persists player balances in Postgres. Each Save
// writes the balance and appends a transaction row in one tx, so the
// ledger's durable-before-commit contract holds.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Load(ctx context.Context, playerID int64) (domain.Amount, bool, error) {
	var cents int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM players WHERE id = $1`, playerID).Scan(&cents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return domain.Amount(cents), true, nil
}

func (r *LedgerRepository) Save(ctx context.Context, playerID int64, balance, delta domain.Amount, reason string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO players (id, balance) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET balance = $2, updated_at = now()`,
		playerID, int64(balance),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (player_id, amount, reason) VALUES ($1, $2, $3)`,
		playerID, int64(delta), reason,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
