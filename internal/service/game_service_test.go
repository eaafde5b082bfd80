package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"wager_service/internal/domain"
	"wager_service/internal/game"
	"wager_service/internal/history"
	"wager_service/internal/ledger"
	"wager_service/internal/limiter"
	"wager_service/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedBoards returns the same layout every time, so tests know where
// the hazards are.
type fixedBoards struct {
	mines []int
	tower [][]int
}

func (f fixedBoards) MinesBoard(int) ([]int, error)   { return append([]int(nil), f.mines...), nil }
func (f fixedBoards) TowerBoard(int) ([][]int, error) { return f.tower, nil }

type memSink struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

func (s *memSink) RecordOutcome(_ context.Context, o *domain.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, *o)
	return nil
}

func (s *memSink) recorded() []domain.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Outcome(nil), s.outcomes...)
}

type memSessions struct {
	mu      sync.Mutex
	records map[string]*game.Record
}

func newMemSessions() *memSessions {
	return &memSessions{records: make(map[string]*game.Record)}
}

func (m *memSessions) Save(_ context.Context, rec *game.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Token] = rec
	return nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, token)
	return nil
}

func (m *memSessions) LoadActive(_ context.Context) ([]*game.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*game.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

type fixture struct {
	svc      *GameService
	store    *ledger.MemStore
	ledger   *ledger.Ledger
	registry *session.Registry
	sink     *memSink
	disp     *history.Dispatcher
	sessions *memSessions
}

// newFixture wires a service against in-memory collaborators. The
// limiter admits everything unless a window is passed in.
func newFixture(t *testing.T, lim *limiter.Limiter) *fixture {
	t.Helper()
	if lim == nil {
		lim = limiter.New(0, 0)
	}

	store := ledger.NewMemStore()
	store.Seed(1, domain.Amount(10000))
	l := ledger.New(store)
	reg := session.NewRegistry()
	sink := &memSink{}
	disp := history.NewDispatcher(sink, 64)
	sessions := newMemSessions()

	boards := fixedBoards{
		mines: []int{0, 1, 2},
		tower: [][]int{{0}, {0}, {0}, {0}, {0}, {0}},
	}

	svc := NewGameService(
		Config{MinStake: domain.Amount(10), MaxStake: domain.Amount(100000)},
		l, reg, boards, game.DefaultSchedule(), lim, disp, sessions,
	)
	return &fixture{svc: svc, store: store, ledger: l, registry: reg, sink: sink, disp: disp, sessions: sessions}
}

func (f *fixture) balance(t *testing.T) domain.Amount {
	t.Helper()
	b, err := f.ledger.Balance(context.Background(), 1)
	require.NoError(t, err)
	return b
}

func startMines(t *testing.T, f *fixture) *game.Snapshot {
	t.Helper()
	snap, err := f.svc.StartGame(context.Background(), StartRequest{
		PlayerID:    1,
		GameType:    domain.GameTypeMines,
		Stake:       domain.Amount(2500),
		HazardCount: 3,
	})
	require.NoError(t, err)
	return snap
}

func TestStartGameDebitsStake(t *testing.T) {
	f := newFixture(t, nil)

	snap := startMines(t, f)
	assert.Equal(t, game.StatusActive, snap.Status)
	assert.Equal(t, domain.Amount(7500), f.balance(t))
	assert.Equal(t, 1, f.registry.Len())

	// The active session is persisted for crash recovery
	assert.Len(t, f.sessions.records, 1)
}

func TestStartGameRejectsSecondSession(t *testing.T) {
	f := newFixture(t, nil)
	startMines(t, f)

	_, err := f.svc.StartGame(context.Background(), StartRequest{
		PlayerID:    1,
		GameType:    domain.GameTypeTower,
		Stake:       domain.Amount(1000),
		HazardCount: 1,
	})
	assert.ErrorIs(t, err, domain.ErrActiveSessionConflict)

	// Only the first stake left the balance
	assert.Equal(t, domain.Amount(7500), f.balance(t))
}

func TestStartGameStakeBounds(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.StartGame(context.Background(), StartRequest{
		PlayerID: 1, GameType: domain.GameTypeMines, Stake: domain.Amount(5), HazardCount: 3,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.StartGame(context.Background(), StartRequest{
		PlayerID: 1, GameType: domain.GameTypeMines, Stake: domain.Amount(200000), HazardCount: 3,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, domain.Amount(10000), f.balance(t))
}

func TestStartGameInsufficientFunds(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.StartGame(context.Background(), StartRequest{
		PlayerID: 1, GameType: domain.GameTypeMines, Stake: domain.Amount(20000), HazardCount: 3,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 0, f.registry.Len())
	assert.Equal(t, domain.Amount(10000), f.balance(t))
}

func TestApplyActionSafeAndHazard(t *testing.T) {
	f := newFixture(t, nil)
	snap := startMines(t, f)

	snap2, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 1, snap2.Progress)

	// Hazard at cell 0: session resolves Lost and is removed
	snap3, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 0, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusLost, snap3.Status)
	assert.Equal(t, 0, f.registry.Len())
	assert.Empty(t, f.sessions.records)

	// Stake stays forfeited
	assert.Equal(t, domain.Amount(7500), f.balance(t))

	_, err = f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestApplyActionForeignTokenNotFound(t *testing.T) {
	f := newFixture(t, nil)
	snap := startMines(t, f)

	_, err := f.svc.ApplyAction(context.Background(), 2, snap.Token, 5, "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestApplyActionDuplicateDropped(t *testing.T) {
	f := newFixture(t, limiter.New(time.Hour, 0))
	snap := startMines(t, f)

	snap2, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)
	require.Equal(t, 1, snap2.Progress)

	// Same selector inside the window: current state, no new reveal
	snap3, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 1, snap3.Progress)
	assert.Equal(t, game.StatusActive, snap3.Status)
}

func TestApplyActionThrottled(t *testing.T) {
	f := newFixture(t, limiter.New(time.Hour, time.Hour))
	snap := startMines(t, f)

	_, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)

	_, err = f.svc.ApplyAction(context.Background(), 1, snap.Token, 6, "")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCashOutCreditsPayout(t *testing.T) {
	f := newFixture(t, nil)
	f.disp.Start()
	snap := startMines(t, f)

	snap2, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)

	final, err := f.svc.CashOut(context.Background(), 1, snap.Token, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, final.Status)
	assert.Equal(t, domain.Amount(2500).MulRounded(snap2.Multiplier), final.Payout)
	assert.Equal(t, domain.Amount(7500)+final.Payout, f.balance(t))
	assert.Equal(t, 0, f.registry.Len())

	f.disp.Stop()
	got := f.sink.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, domain.ResultWon, got[0].Result)
	assert.Equal(t, final.Payout, got[0].Payout)
}

func TestCashOutPersistenceFailureKeepsSessionAlive(t *testing.T) {
	f := newFixture(t, nil)
	snap := startMines(t, f)

	_, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)

	f.store.FailSaves = 1
	_, err = f.svc.CashOut(context.Background(), 1, snap.Token, "")
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	// Session still Active, balance untouched, retry succeeds
	assert.Equal(t, 1, f.registry.Len())
	assert.Equal(t, domain.Amount(7500), f.balance(t))

	final, err := f.svc.CashOut(context.Background(), 1, snap.Token, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, final.Status)
}

func TestCashOutWithoutProgressRejected(t *testing.T) {
	f := newFixture(t, nil)
	snap := startMines(t, f)

	_, err := f.svc.CashOut(context.Background(), 1, snap.Token, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.registry.Len())
}

func TestGetActiveSession(t *testing.T) {
	f := newFixture(t, nil)

	_, ok := f.svc.GetActiveSession(1)
	assert.False(t, ok)

	snap := startMines(t, f)
	got, ok := f.svc.GetActiveSession(1)
	require.True(t, ok)
	assert.Equal(t, snap.Token, got.Token)
}

func TestCancelByAdminRefundsStake(t *testing.T) {
	f := newFixture(t, nil)
	f.disp.Start()
	startMines(t, f)

	ok, err := f.svc.CancelByAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Amount(10000), f.balance(t))
	assert.Equal(t, 0, f.registry.Len())

	// Nothing left to cancel
	ok, err = f.svc.CancelByAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)

	f.disp.Stop()
	got := f.sink.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, domain.ResultCancelled, got[0].Result)
	assert.Equal(t, domain.Amount(2500), got[0].Payout)
}

func TestRestoreReRegistersSessions(t *testing.T) {
	f := newFixture(t, nil)
	snap := startMines(t, f)

	_, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 5, "")
	require.NoError(t, err)

	// A fresh service sharing the session store picks the session up
	f2 := newFixture(t, nil)
	f2.sessions.records = f.sessions.records
	require.NoError(t, f2.svc.Restore(context.Background()))

	got, ok := f2.svc.GetActiveSession(1)
	require.True(t, ok)
	assert.Equal(t, snap.Token, got.Token)
	assert.Equal(t, 1, got.Progress)
}

func TestTowerFlowThroughService(t *testing.T) {
	f := newFixture(t, nil)

	snap, err := f.svc.StartGame(context.Background(), StartRequest{
		PlayerID:    1,
		GameType:    domain.GameTypeTower,
		Stake:       domain.Amount(1000),
		HazardCount: 1,
	})
	require.NoError(t, err)

	// Hazard sits on cell 0 of every floor; climb on cell 4
	snap2, err := f.svc.ApplyAction(context.Background(), 1, snap.Token, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 1, snap2.Progress)

	final, err := f.svc.CashOut(context.Background(), 1, snap.Token, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusWon, final.Status)
	assert.Greater(t, int64(final.Payout), int64(1000))
}
