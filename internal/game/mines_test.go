package game

import (
	"errors"
	"testing"
	"time"

	"wager_service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMines(t *testing.T, hazards []int) *Mines {
	t.Helper()
	m, err := NewMines(MinesParams{
		Token:       "tok-mines",
		PlayerID:    7,
		Stake:       domain.Amount(2500),
		HazardCount: len(hazards),
		Board:       hazards,
		Schedule:    DefaultSchedule(),
	})
	require.NoError(t, err)
	return m
}

func TestMinesRevealSafeAndHazard(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	snap, err := m.Apply(5)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Progress)
	assert.Equal(t, StatusActive, snap.Status)
	assert.Greater(t, snap.Multiplier, 1.0)
	assert.Empty(t, snap.MinesHazards, "hazards must stay hidden while active")

	snap, err = m.Apply(1)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, snap.Status)
	assert.ElementsMatch(t, []int{0, 1, 2}, snap.MinesHazards)
}

func TestMinesRevealIsIdempotent(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	snap1, err := m.Apply(10)
	require.NoError(t, err)
	require.Equal(t, 1, snap1.Progress)

	// Re-clicking an open cell is a no-op returning the unchanged state
	snap2, err := m.Apply(10)
	require.NoError(t, err)
	assert.Equal(t, 1, snap2.Progress)
	assert.Equal(t, snap1.Multiplier, snap2.Multiplier)
	assert.Equal(t, StatusActive, snap2.Status)
}

func TestMinesRejectsOutOfRangeCell(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	_, err := m.Apply(-1)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = m.Apply(MinesGridSize)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMinesCashOutRequiresProgress(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	_, err := m.CashOut(func(domain.Amount) error { return nil })
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMinesCashOutCommitsOnce(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	_, err := m.Apply(5)
	require.NoError(t, err)

	var committed domain.Amount
	snap, err := m.CashOut(func(p domain.Amount) error {
		committed = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusWon, snap.Status)
	assert.Equal(t, committed, snap.Payout)
	assert.Equal(t, m.Stake().MulRounded(snap.Multiplier), snap.Payout)

	// Terminal is one-way
	_, err = m.CashOut(func(domain.Amount) error { return nil })
	assert.ErrorIs(t, err, domain.ErrGameAlreadyResolved)
	_, err = m.Apply(6)
	assert.ErrorIs(t, err, domain.ErrGameAlreadyResolved)
}

func TestMinesCashOutStaysActiveOnCommitFailure(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	_, err := m.Apply(5)
	require.NoError(t, err)

	wantErr := errors.New("credit failed")
	_, err = m.CashOut(func(domain.Amount) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, StatusActive, m.Status())

	// A retry can still succeed
	_, err = m.CashOut(func(domain.Amount) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StatusWon, m.Status())
}

func TestMinesCancelRefundsStake(t *testing.T) {
	m := newTestMines(t, []int{0, 1, 2})

	var refund domain.Amount
	snap, err := m.Cancel(func(r domain.Amount) error {
		refund = r
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, snap.Status)
	assert.Equal(t, m.Stake(), refund)

	_, err = m.Cancel(func(domain.Amount) error { return nil })
	assert.ErrorIs(t, err, domain.ErrGameAlreadyResolved)
}

func TestMinesRecordRoundTrip(t *testing.T) {
	m := newTestMines(t, []int{3, 4, 5})
	_, err := m.Apply(10)
	require.NoError(t, err)
	_, err = m.Apply(11)
	require.NoError(t, err)

	rec := m.Record()
	restored, err := Restore(rec, DefaultSchedule(), time.Now)
	require.NoError(t, err)

	assert.Equal(t, m.Token(), restored.Token())
	assert.Equal(t, 2, restored.Progress())
	assert.Equal(t, StatusActive, restored.Status())

	// The restored board behaves identically
	snap, err := restored.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, StatusLost, snap.Status)
}
