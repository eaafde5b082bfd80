package game

import (
	"sync"
	"time"

	"wager_service/internal/domain"
)

// Mines is a single-player minesweeper wager: reveal safe cells on a 5x5
// grid, cash out before hitting a mine.
type Mines struct {
	mu sync.Mutex

	token        string
	playerID     int64
	stake        domain.Amount
	hazardCount  int
	hazards      map[int]bool // immutable after construction
	revealed     []int
	status       Status
	sched        *Schedule
	createdAt    time.Time
	lastActionAt time.Time
	now          func() time.Time
}

// MinesParams carries everything needed to open a Mines session.
type MinesParams struct {
	Token       string
	PlayerID    int64
	Stake       domain.Amount
	HazardCount int
	Board       []int // hazard positions from a BoardGenerator
	Schedule    *Schedule
	Now         func() time.Time
}

// NewMines creates an Active session with progress 0.
func NewMines(p MinesParams) (*Mines, error) {
	if p.HazardCount < MinesMinHazards || p.HazardCount > MinesMaxHazards {
		return nil, domain.Validationf("hazard count must be between %d and %d", MinesMinHazards, MinesMaxHazards)
	}
	if len(p.Board) != p.HazardCount {
		return nil, domain.Validationf("board has %d hazards, expected %d", len(p.Board), p.HazardCount)
	}
	if p.Stake <= 0 {
		return nil, domain.Validationf("stake must be positive")
	}

	hazards := make(map[int]bool, len(p.Board))
	for _, pos := range p.Board {
		if pos < 0 || pos >= MinesGridSize || hazards[pos] {
			return nil, domain.Validationf("invalid hazard layout")
		}
		hazards[pos] = true
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}
	t := now()

	return &Mines{
		token:        p.Token,
		playerID:     p.PlayerID,
		stake:        p.Stake,
		hazardCount:  p.HazardCount,
		hazards:      hazards,
		status:       StatusActive,
		sched:        p.Schedule,
		createdAt:    t,
		lastActionAt: t,
		now:          now,
	}, nil
}

func restoreMines(rec *Record, sched *Schedule, now func() time.Time) (*Mines, error) {
	m, err := NewMines(MinesParams{
		Token:       rec.Token,
		PlayerID:    rec.PlayerID,
		Stake:       rec.Stake,
		HazardCount: rec.HazardCount,
		Board:       rec.MinesHazards,
		Schedule:    sched,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}
	for _, cell := range rec.Revealed {
		if m.hazards[cell] {
			return nil, domain.Validationf("revealed cell %d is a hazard", cell)
		}
	}
	m.revealed = append(m.revealed, rec.Revealed...)
	m.createdAt = rec.CreatedAt
	m.lastActionAt = rec.LastActionAt
	return m, nil
}

func (m *Mines) Token() string         { return m.token }
func (m *Mines) PlayerID() int64       { return m.playerID }
func (m *Mines) Type() domain.GameType { return domain.GameTypeMines }
func (m *Mines) Stake() domain.Amount  { return m.stake }
func (m *Mines) CreatedAt() time.Time  { return m.createdAt }

func (m *Mines) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mines) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revealed)
}

func (m *Mines) LastActionAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActionAt
}

// Apply reveals a cell. Revealing an already-open cell is a documented
// no-op that returns the current state unchanged.
func (m *Mines) Apply(cell int) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}
	if cell < 0 || cell >= MinesGridSize {
		return nil, domain.Validationf("cell must be between 0 and %d", MinesGridSize-1)
	}

	for _, c := range m.revealed {
		if c == cell {
			return m.snapshotLocked(), nil
		}
	}

	m.lastActionAt = m.now()

	if m.hazards[cell] {
		m.status = StatusLost
		return m.snapshotLocked(), nil
	}

	m.revealed = append(m.revealed, cell)
	return m.snapshotLocked(), nil
}

// CashOut pays out the current progress. The commit callback performs
// the ledger credit; Won is only recorded after it succeeds.
func (m *Mines) CashOut(commit func(payout domain.Amount) error) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}
	if len(m.revealed) == 0 {
		return nil, domain.Validationf("reveal at least one cell before cashing out")
	}

	payout := m.stake.MulRounded(m.multiplierLocked())
	if err := commit(payout); err != nil {
		return nil, err
	}

	m.status = StatusWon
	m.lastActionAt = m.now()
	snap := m.snapshotLocked()
	snap.Payout = payout
	return snap, nil
}

// Cancel refunds the stake, used by the sweep and the admin override.
func (m *Mines) Cancel(commit func(refund domain.Amount) error) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}

	if err := commit(m.stake); err != nil {
		return nil, err
	}

	m.status = StatusCancelled
	m.lastActionAt = m.now()
	snap := m.snapshotLocked()
	snap.Payout = m.stake
	return snap, nil
}

func (m *Mines) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Mines) multiplierLocked() float64 {
	return m.sched.MultiplierFor(domain.GameTypeMines, m.hazardCount, len(m.revealed))
}

func (m *Mines) snapshotLocked() *Snapshot {
	mult := m.multiplierLocked()
	snap := &Snapshot{
		Token:        m.token,
		PlayerID:     m.playerID,
		GameType:     domain.GameTypeMines,
		Stake:        m.stake,
		HazardCount:  m.hazardCount,
		Progress:     len(m.revealed),
		Multiplier:   mult,
		NextMult:     m.sched.MultiplierFor(domain.GameTypeMines, m.hazardCount, len(m.revealed)+1),
		Status:       m.status,
		Revealed:     append([]int(nil), m.revealed...),
		PotentialWin: m.stake.MulRounded(mult),
		CreatedAt:    m.createdAt,
		LastActionAt: m.lastActionAt,
	}
	if m.status.Terminal() {
		snap.MinesHazards = hazardList(m.hazards)
	}
	return snap
}

func hazardList(hazards map[int]bool) []int {
	out := make([]int, 0, len(hazards))
	for pos := range hazards {
		out = append(out, pos)
	}
	return out
}

func (m *Mines) Record() *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Record{
		Token:        m.token,
		PlayerID:     m.playerID,
		GameType:     domain.GameTypeMines,
		Stake:        m.stake,
		HazardCount:  m.hazardCount,
		MinesHazards: hazardList(m.hazards),
		Revealed:     append([]int(nil), m.revealed...),
		CreatedAt:    m.createdAt,
		LastActionAt: m.lastActionAt,
	}
}
