package repository

import (
	"context"

	"wager_service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository stores terminal-session outcomes in game_history.
type HistoryRepository struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) RecordOutcome(ctx context.Context, o *domain.Outcome) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_history (token, player_id, game_type, stake, payout, result, resolved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (token) DO NOTHING`,
		o.Token, o.PlayerID, o.GameType, int64(o.Stake), int64(o.Payout), o.Result, o.At,
	)
	return err
}

// GetByPlayer returns the player's most recent outcomes.
func (r *HistoryRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.Outcome, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT token, player_id, game_type, stake, payout, result, resolved_at
		 FROM game_history
		 WHERE player_id = $1
		 ORDER BY resolved_at DESC
		 LIMIT $2`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		var stake, payout int64
		if err := rows.Scan(&o.Token, &o.PlayerID, &o.GameType, &stake, &payout, &o.Result, &o.At); err != nil {
			return nil, err
		}
		o.Stake = domain.Amount(stake)
		o.Payout = domain.Amount(payout)
		out = append(out, &o)
	}
	return out, rows.Err()
}
