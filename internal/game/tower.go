package game

import (
	"sync"
	"time"

	"wager_service/internal/domain"
)

// Tower is a floor-climbing wager: pick a safe cell on each of six
// floors in strict order, cash out before stepping on a trap.
type Tower struct {
	mu sync.Mutex

	token        string
	playerID     int64
	stake        domain.Amount
	hazardCount  int      // hazards per floor
	hazards      [][]bool // [floor][cell], immutable after construction
	floor        int      // highest floor climbed safely, 0..TowerFloors
	picks        []int    // chosen cell per climbed floor
	status       Status
	sched        *Schedule
	createdAt    time.Time
	lastActionAt time.Time
	now          func() time.Time
}

// TowerParams carries everything needed to open a Tower session.
type TowerParams struct {
	Token           string
	PlayerID        int64
	Stake           domain.Amount
	HazardsPerFloor int
	Board           [][]int // hazard cells per floor from a BoardGenerator
	Schedule        *Schedule
	Now             func() time.Time
}

// NewTower creates an Active session at the bottom of the tower.
func NewTower(p TowerParams) (*Tower, error) {
	if p.HazardsPerFloor < TowerMinHazards || p.HazardsPerFloor > TowerMaxHazards {
		return nil, domain.Validationf("hazards per floor must be between %d and %d", TowerMinHazards, TowerMaxHazards)
	}
	if len(p.Board) != TowerFloors {
		return nil, domain.Validationf("board has %d floors, expected %d", len(p.Board), TowerFloors)
	}
	if p.Stake <= 0 {
		return nil, domain.Validationf("stake must be positive")
	}

	hazards := make([][]bool, TowerFloors)
	for i, cells := range p.Board {
		if len(cells) != p.HazardsPerFloor {
			return nil, domain.Validationf("floor %d has %d hazards, expected %d", i+1, len(cells), p.HazardsPerFloor)
		}
		row := make([]bool, TowerFloorWidth)
		for _, c := range cells {
			if c < 0 || c >= TowerFloorWidth || row[c] {
				return nil, domain.Validationf("invalid hazard layout on floor %d", i+1)
			}
			row[c] = true
		}
		hazards[i] = row
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}
	t := now()

	return &Tower{
		token:        p.Token,
		playerID:     p.PlayerID,
		stake:        p.Stake,
		hazardCount:  p.HazardsPerFloor,
		hazards:      hazards,
		status:       StatusActive,
		sched:        p.Schedule,
		createdAt:    t,
		lastActionAt: t,
		now:          now,
	}, nil
}

func restoreTower(rec *Record, sched *Schedule, now func() time.Time) (*Tower, error) {
	t, err := NewTower(TowerParams{
		Token:           rec.Token,
		PlayerID:        rec.PlayerID,
		Stake:           rec.Stake,
		HazardsPerFloor: rec.HazardCount,
		Board:           rec.TowerHazards,
		Schedule:        sched,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}
	if rec.Floor < 0 || rec.Floor > TowerFloors {
		return nil, domain.Validationf("invalid floor %d", rec.Floor)
	}
	t.floor = rec.Floor
	t.picks = append(t.picks, rec.Revealed...)
	t.createdAt = rec.CreatedAt
	t.lastActionAt = rec.LastActionAt
	return t, nil
}

func (t *Tower) Token() string         { return t.token }
func (t *Tower) PlayerID() int64       { return t.playerID }
func (t *Tower) Type() domain.GameType { return domain.GameTypeTower }
func (t *Tower) Stake() domain.Amount  { return t.stake }
func (t *Tower) CreatedAt() time.Time  { return t.createdAt }

func (t *Tower) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tower) Progress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.floor
}

func (t *Tower) LastActionAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActionAt
}

// Apply steps onto a cell on the next floor. Floors are climbed strictly
// in order; there is no skipping.
func (t *Tower) Apply(cell int) (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}
	if t.floor >= TowerFloors {
		return nil, domain.Validationf("top floor reached, cash out to finish")
	}
	if cell < 0 || cell >= TowerFloorWidth {
		return nil, domain.Validationf("cell must be between 0 and %d", TowerFloorWidth-1)
	}

	t.lastActionAt = t.now()

	if t.hazards[t.floor][cell] {
		t.status = StatusLost
		return t.snapshotLocked(), nil
	}

	t.floor++
	t.picks = append(t.picks, cell)
	return t.snapshotLocked(), nil
}

// CashOut pays out the floors climbed so far. Won is only recorded after
// the commit callback credits the payout.
func (t *Tower) CashOut(commit func(payout domain.Amount) error) (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}
	if t.floor == 0 {
		return nil, domain.Validationf("climb at least one floor before cashing out")
	}

	payout := t.stake.MulRounded(t.multiplierLocked())
	if err := commit(payout); err != nil {
		return nil, err
	}

	t.status = StatusWon
	t.lastActionAt = t.now()
	snap := t.snapshotLocked()
	snap.Payout = payout
	return snap, nil
}

// Cancel refunds the stake, used by the sweep and the admin override.
func (t *Tower) Cancel(commit func(refund domain.Amount) error) (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return nil, domain.ErrGameAlreadyResolved
	}

	if err := commit(t.stake); err != nil {
		return nil, err
	}

	t.status = StatusCancelled
	t.lastActionAt = t.now()
	snap := t.snapshotLocked()
	snap.Payout = t.stake
	return snap, nil
}

func (t *Tower) Snapshot() *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tower) multiplierLocked() float64 {
	return t.sched.MultiplierFor(domain.GameTypeTower, t.hazardCount, t.floor)
}

func (t *Tower) snapshotLocked() *Snapshot {
	mult := t.multiplierLocked()
	snap := &Snapshot{
		Token:        t.token,
		PlayerID:     t.playerID,
		GameType:     domain.GameTypeTower,
		Stake:        t.stake,
		HazardCount:  t.hazardCount,
		Progress:     t.floor,
		Multiplier:   mult,
		NextMult:     t.sched.MultiplierFor(domain.GameTypeTower, t.hazardCount, t.floor+1),
		Status:       t.status,
		Revealed:     append([]int(nil), t.picks...),
		PotentialWin: t.stake.MulRounded(mult),
		CreatedAt:    t.createdAt,
		LastActionAt: t.lastActionAt,
	}
	if t.status.Terminal() {
		snap.TowerHazards = t.hazardCells()
	}
	return snap
}

func (t *Tower) hazardCells() [][]int {
	out := make([][]int, TowerFloors)
	for i, row := range t.hazards {
		for c, hit := range row {
			if hit {
				out[i] = append(out[i], c)
			}
		}
	}
	return out
}

func (t *Tower) Record() *Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &Record{
		Token:        t.token,
		PlayerID:     t.playerID,
		GameType:     domain.GameTypeTower,
		Stake:        t.stake,
		HazardCount:  t.hazardCount,
		TowerHazards: t.hazardCells(),
		Revealed:     append([]int(nil), t.picks...),
		Floor:        t.floor,
		CreatedAt:    t.createdAt,
		LastActionAt: t.lastActionAt,
	}
}
