package domain

import "time"

// GameType identifies a wagering mini-game.
type GameType string

const (
	GameTypeMines GameType = "mines"
	GameTypeTower GameType = "tower"
)

// Result is the terminal result of a session.
type Result string

const (
	ResultWon       Result = "won"
	ResultLost      Result = "lost"
	ResultCancelled Result = "cancelled"
)

// Outcome is emitted once per terminal session. It feeds the history
// sink and any subscribed side-effect services (bonus, stats).
type Outcome struct {
	Token    string   `json:"token"`
	PlayerID int64    `json:"player_id"`
	GameType GameType `json:"game_type"`
	Stake    Amount   `json:"stake"`
	// Payout is the amount credited back: winnings for Won, the refunded
	// stake for Cancelled, zero for Lost.
	Payout Amount    `json:"payout"`
	Result Result    `json:"result"`
	At     time.Time `json:"at"`
}
