package repository

import (
	"context"
	"encoding/json"

	"wager_service/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository persists active sessions for crash recovery. Rows
// exist only while a session is Active; terminal sessions are deleted.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Save(ctx context.Context, rec *game.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO active_sessions (token, player_id, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (token) DO UPDATE SET data = $3, updated_at = now()`,
		rec.Token, rec.PlayerID, data,
	)
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM active_sessions WHERE token = $1`, token)
	return err
}

// LoadActive returns every persisted session record, used once at startup.
func (r *SessionRepository) LoadActive(ctx context.Context) ([]*game.Record, error) {
	rows, err := r.db.Query(ctx, `SELECT data FROM active_sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*game.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec game.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
