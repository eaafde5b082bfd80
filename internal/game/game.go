package game

import (
	"time"

	"wager_service/internal/domain"
)

// Status is the session state. Transitions out of Active are one-way.
type Status string

const (
	StatusActive    Status = "active"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Snapshot is the client-visible view of a session. Hazard positions are
// only populated once the session is terminal.
type Snapshot struct {
	Token        string          `json:"token"`
	PlayerID     int64           `json:"player_id"`
	GameType     domain.GameType `json:"game_type"`
	Stake        domain.Amount   `json:"stake"`
	HazardCount  int             `json:"hazard_count"`
	Progress     int             `json:"progress"`
	Multiplier   float64         `json:"multiplier"`
	NextMult     float64         `json:"next_multiplier"`
	Status       Status          `json:"status"`
	Revealed     []int           `json:"revealed,omitempty"`
	PotentialWin domain.Amount   `json:"potential_win"`
	Payout       domain.Amount   `json:"payout,omitempty"`
	MinesHazards []int           `json:"mines_hazards,omitempty"`
	TowerHazards [][]int         `json:"tower_hazards,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActionAt time.Time       `json:"last_action_at"`
}

// Game is one active wager session. Implementations guard their own
// state; all methods are safe for concurrent use and mutually exclusive
// on the same session.
type Game interface {
	Token() string
	PlayerID() int64
	Type() domain.GameType
	Stake() domain.Amount
	Status() Status
	Progress() int
	CreatedAt() time.Time
	LastActionAt() time.Time
	Snapshot() *Snapshot
	Record() *Record

	// Apply resolves one selector (a cell for Mines, a cell on the next
	// floor for Tower). A hazard hit transitions the session to Lost.
	Apply(selector int) (*Snapshot, error)

	// CashOut computes the payout and runs commit with it; the session
	// transitions to Won only if commit returns nil, and stays Active
	// otherwise so the caller can retry.
	CashOut(commit func(payout domain.Amount) error) (*Snapshot, error)

	// Cancel refunds the stake via commit and transitions to Cancelled.
	// Returns ErrGameAlreadyResolved if the session is already terminal.
	Cancel(commit func(refund domain.Amount) error) (*Snapshot, error)
}

// Record is the persistable form of a session, complete enough to
// restore it after a restart. It includes hazard positions and must
// never be sent to clients.
type Record struct {
	Token        string          `json:"token"`
	PlayerID     int64           `json:"player_id"`
	GameType     domain.GameType `json:"game_type"`
	Stake        domain.Amount   `json:"stake"`
	HazardCount  int             `json:"hazard_count"`
	MinesHazards []int           `json:"mines_hazards,omitempty"`
	TowerHazards [][]int         `json:"tower_hazards,omitempty"`
	Revealed     []int           `json:"revealed,omitempty"`
	Floor        int             `json:"floor,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActionAt time.Time       `json:"last_action_at"`
}

// Restore rebuilds a session from its persisted record.
func Restore(rec *Record, sched *Schedule, now func() time.Time) (Game, error) {
	switch rec.GameType {
	case domain.GameTypeMines:
		return restoreMines(rec, sched, now)
	case domain.GameTypeTower:
		return restoreTower(rec, sched, now)
	default:
		return nil, domain.Validationf("unknown game type %q", rec.GameType)
	}
}
