package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"wager_service/internal/domain"
	"wager_service/internal/game"
	"wager_service/internal/history"
	"wager_service/internal/ledger"
	"wager_service/internal/limiter"
	"wager_service/internal/logger"
	"wager_service/internal/session"

	"github.com/google/uuid"
)

// SessionStore persists active sessions for crash recovery. Errors are
// logged, never propagated: sessions are otherwise transient.
type SessionStore interface {
	Save(ctx context.Context, rec *game.Record) error
	Delete(ctx context.Context, token string) error
	LoadActive(ctx context.Context) ([]*game.Record, error)
}

// Config carries the game service tunables.
type Config struct {
	MinStake domain.Amount
	MaxStake domain.Amount
}

// GameService implements the wagering operations: start, act, cash out,
// reconnect lookup, and administrative cancel. It owns nothing itself;
// it orchestrates the ledger, registry, engines and outcome dispatch.
type GameService struct {
	cfg      Config
	ledger   *ledger.Ledger
	registry *session.Registry
	boards   game.BoardGenerator
	sched    *game.Schedule
	limiter  *limiter.Limiter
	history  *history.Dispatcher
	sessions SessionStore // optional
	now      func() time.Time
}

func NewGameService(
	cfg Config,
	l *ledger.Ledger,
	reg *session.Registry,
	boards game.BoardGenerator,
	sched *game.Schedule,
	lim *limiter.Limiter,
	hist *history.Dispatcher,
	sessions SessionStore,
) *GameService {
	return &GameService{
		cfg:      cfg,
		ledger:   l,
		registry: reg,
		boards:   boards,
		sched:    sched,
		limiter:  lim,
		history:  hist,
		sessions: sessions,
		now:      time.Now,
	}
}

// StartRequest opens a new session.
type StartRequest struct {
	PlayerID    int64
	GameType    domain.GameType
	Stake       domain.Amount
	HazardCount int // mines on the grid, or hazards per tower floor
}

// StartGame debits the stake and opens a session. The registry holds
// the player's lock across check, debit and insert, so a concurrent
// start for the same player gets ErrActiveSessionConflict and the
// stake is debited exactly once.
func (s *GameService) StartGame(ctx context.Context, req StartRequest) (*game.Snapshot, error) {
	if req.Stake < s.cfg.MinStake || req.Stake > s.cfg.MaxStake {
		return nil, domain.Validationf("stake must be between %s and %s", s.cfg.MinStake, s.cfg.MaxStake)
	}
	if !s.sched.HasConfig(req.GameType, req.HazardCount) {
		return nil, domain.Validationf("unsupported configuration: %s with %d hazards", req.GameType, req.HazardCount)
	}

	g, err := s.registry.Create(req.PlayerID, func() (game.Game, error) {
		// Generate the board before touching the ledger so a bad
		// configuration costs nothing.
		var build func(token string) (game.Game, error)
		switch req.GameType {
		case domain.GameTypeMines:
			board, err := s.boards.MinesBoard(req.HazardCount)
			if err != nil {
				return nil, err
			}
			build = func(token string) (game.Game, error) {
				return game.NewMines(game.MinesParams{
					Token:       token,
					PlayerID:    req.PlayerID,
					Stake:       req.Stake,
					HazardCount: req.HazardCount,
					Board:       board,
					Schedule:    s.sched,
					Now:         s.now,
				})
			}
		case domain.GameTypeTower:
			board, err := s.boards.TowerBoard(req.HazardCount)
			if err != nil {
				return nil, err
			}
			build = func(token string) (game.Game, error) {
				return game.NewTower(game.TowerParams{
					Token:           token,
					PlayerID:        req.PlayerID,
					Stake:           req.Stake,
					HazardsPerFloor: req.HazardCount,
					Board:           board,
					Schedule:        s.sched,
					Now:             s.now,
				})
			}
		default:
			return nil, domain.Validationf("unknown game type %q", req.GameType)
		}

		if _, err := s.ledger.Debit(ctx, req.PlayerID, req.Stake, "stake:"+string(req.GameType)); err != nil {
			return nil, err
		}

		g, err := build(uuid.NewString())
		if err != nil {
			// The debit already happened; hand the stake back.
			if _, cerr := s.ledger.Credit(ctx, req.PlayerID, req.Stake, "stake_revert:"+string(req.GameType)); cerr != nil {
				logger.Error("stake revert failed", "player_id", req.PlayerID, "error", cerr)
			}
			return nil, err
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}

	sessionsStarted.WithLabelValues(string(req.GameType)).Inc()
	s.persistActive(ctx, g)
	logger.Info("session started",
		"player_id", req.PlayerID, "game_type", req.GameType,
		"token", g.Token(), "stake", req.Stake.String())
	return g.Snapshot(), nil
}

// ApplyAction resolves one selector on the session. Duplicates inside
// the debounce window return the current state unchanged.
func (s *GameService) ApplyAction(ctx context.Context, playerID int64, token string, selector int, idemKey string) (*game.Snapshot, error) {
	g, err := s.lookup(playerID, token)
	if err != nil {
		return nil, err
	}

	key := "act:" + token + ":" + strconv.Itoa(selector)
	if idemKey != "" {
		key += ":" + idemKey
	}
	switch s.limiter.Admit(playerID, key) {
	case limiter.Dropped:
		return g.Snapshot(), nil
	case limiter.Throttled:
		return nil, domain.ErrRateLimited
	}

	snap, err := g.Apply(selector)
	if err != nil {
		return nil, err
	}

	if snap.Status == game.StatusLost {
		// Stake was forfeited at start; no ledger mutation here.
		s.finish(ctx, g, snap, domain.ResultLost)
	} else {
		s.persistActive(ctx, g)
	}
	return snap, nil
}

// CashOut credits the payout and resolves the session as Won. If the
// credit fails the session stays Active and the error is surfaced.
func (s *GameService) CashOut(ctx context.Context, playerID int64, token, idemKey string) (*game.Snapshot, error) {
	g, err := s.lookup(playerID, token)
	if err != nil {
		return nil, err
	}

	key := "cashout:" + token
	if idemKey != "" {
		key += ":" + idemKey
	}
	switch s.limiter.Admit(playerID, key) {
	case limiter.Dropped:
		return g.Snapshot(), nil
	case limiter.Throttled:
		return nil, domain.ErrRateLimited
	}

	snap, err := g.CashOut(func(payout domain.Amount) error {
		_, cerr := s.ledger.Credit(ctx, playerID, payout, "payout:"+string(g.Type()))
		return cerr
	})
	if err != nil {
		return nil, err
	}

	s.finish(ctx, g, snap, domain.ResultWon)
	logger.Info("session cashed out",
		"player_id", playerID, "token", token, "payout", snap.Payout.String())
	return snap, nil
}

// GetActiveSession returns the player's active session for reconnects.
func (s *GameService) GetActiveSession(playerID int64) (*game.Snapshot, bool) {
	g, ok := s.registry.ByPlayer(playerID)
	if !ok {
		return nil, false
	}
	return g.Snapshot(), true
}

// Balance exposes the player's ledger balance.
func (s *GameService) Balance(ctx context.Context, playerID int64) (domain.Amount, error) {
	return s.ledger.Balance(ctx, playerID)
}

// CancelByAdmin force-cancels a player's session and refunds the stake.
// Returns false when there was nothing to refund.
func (s *GameService) CancelByAdmin(ctx context.Context, playerID int64) (bool, error) {
	g, ok := s.registry.ByPlayer(playerID)
	if !ok {
		return false, nil
	}
	if err := s.cancelSession(ctx, g, "refund:admin"); err != nil {
		if errors.Is(err, domain.ErrGameAlreadyResolved) {
			return false, nil
		}
		return false, err
	}
	logger.Info("session cancelled by admin", "player_id", playerID, "token", g.Token())
	return true, nil
}

// Restore re-registers persisted sessions after a restart.
func (s *GameService) Restore(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	recs, err := s.sessions.LoadActive(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, rec := range recs {
		g, err := game.Restore(rec, s.sched, s.now)
		if err != nil {
			logger.Error("skipping unrecoverable session", "token", rec.Token, "error", err)
			continue
		}
		if _, err := s.registry.Create(rec.PlayerID, func() (game.Game, error) { return g, nil }); err != nil {
			logger.Warn("duplicate persisted session", "player_id", rec.PlayerID, "token", rec.Token)
			continue
		}
		restored++
	}
	if restored > 0 {
		logger.Info("restored active sessions", "count", restored)
	}
	return nil
}

func (s *GameService) lookup(playerID int64, token string) (game.Game, error) {
	g, ok := s.registry.ByToken(token)
	if !ok || g.PlayerID() != playerID {
		// A foreign token reads the same as a missing one.
		return nil, domain.ErrSessionNotFound
	}
	return g, nil
}

// cancelSession refunds the stake and resolves the session as
// Cancelled. ErrGameAlreadyResolved means a user action won the race.
func (s *GameService) cancelSession(ctx context.Context, g game.Game, reason string) error {
	snap, err := g.Cancel(func(refund domain.Amount) error {
		_, cerr := s.ledger.Credit(ctx, g.PlayerID(), refund, reason)
		return cerr
	})
	if err != nil {
		return err
	}
	s.finish(ctx, g, snap, domain.ResultCancelled)
	return nil
}

// finish removes a terminal session and emits its outcome. Removal is
// token-scoped so a replaced session for the same player is untouched.
func (s *GameService) finish(ctx context.Context, g game.Game, snap *game.Snapshot, result domain.Result) {
	s.registry.Remove(g.PlayerID(), g.Token())
	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, g.Token()); err != nil {
			logger.Error("session record delete failed", "token", g.Token(), "error", err)
		}
	}

	sessionsResolved.WithLabelValues(string(g.Type()), string(result)).Inc()
	s.history.Publish(&domain.Outcome{
		Token:    g.Token(),
		PlayerID: g.PlayerID(),
		GameType: g.Type(),
		Stake:    g.Stake(),
		Payout:   snap.Payout,
		Result:   result,
		At:       s.now(),
	})
}

func (s *GameService) persistActive(ctx context.Context, g game.Game) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(ctx, g.Record()); err != nil {
		logger.Error("session record save failed", "token", g.Token(), "error", err)
	}
}
