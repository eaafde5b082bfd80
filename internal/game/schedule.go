package game

import (
	"math"

	"wager_service/internal/domain"
)

// Schedule holds the progress-indexed payout multiplier tables per game
// configuration. Tables are data: the engines only do a clamped lookup
// and assume nothing beyond "non-decreasing, at least 1.0".
type Schedule struct {
	mines map[int][]float64 // hazard count -> table, entry i is progress i+1
	tower map[int][]float64 // hazards per floor -> table, entry i is floor i+1
}

// NewSchedule validates and wraps multiplier tables.
func NewSchedule(mines, tower map[int][]float64) (*Schedule, error) {
	for hazards, table := range mines {
		if err := validateTable(table); err != nil {
			return nil, domain.Validationf("mines table for %d hazards: %v", hazards, err)
		}
	}
	for hazards, table := range tower {
		if err := validateTable(table); err != nil {
			return nil, domain.Validationf("tower table for %d hazards: %v", hazards, err)
		}
	}
	return &Schedule{mines: mines, tower: tower}, nil
}

func validateTable(table []float64) error {
	prev := 1.0
	for _, m := range table {
		if m < prev {
			return domain.Validationf("multipliers must be >= 1.0 and non-decreasing")
		}
		prev = m
	}
	return nil
}

// MultiplierFor looks up the payout multiplier for the given progress.
// Progress 0 pays 1.0; progress beyond the table clamps to the last entry.
func (s *Schedule) MultiplierFor(gameType domain.GameType, hazards, progress int) float64 {
	if progress <= 0 {
		return 1.0
	}

	var table []float64
	switch gameType {
	case domain.GameTypeMines:
		table = s.mines[hazards]
	case domain.GameTypeTower:
		table = s.tower[hazards]
	}
	if len(table) == 0 {
		return 1.0
	}

	if progress > len(table) {
		progress = len(table)
	}
	return table[progress-1]
}

// HasConfig reports whether a table exists for the configuration.
func (s *Schedule) HasConfig(gameType domain.GameType, hazards int) bool {
	switch gameType {
	case domain.GameTypeMines:
		return len(s.mines[hazards]) > 0
	case domain.GameTypeTower:
		return len(s.tower[hazards]) > 0
	}
	return false
}

// Table returns a copy of the multiplier table for info endpoints.
func (s *Schedule) Table(gameType domain.GameType, hazards int) []float64 {
	var table []float64
	switch gameType {
	case domain.GameTypeMines:
		table = s.mines[hazards]
	case domain.GameTypeTower:
		table = s.tower[hazards]
	}
	out := make([]float64, len(table))
	copy(out, table)
	return out
}

// DefaultSchedule builds the stock tables from fair odds, floored to two
// decimals. Deployments can substitute their own tables via NewSchedule.
func DefaultSchedule() *Schedule {
	mines := make(map[int][]float64, MinesMaxHazards-MinesMinHazards+1)
	for hazards := MinesMinHazards; hazards <= MinesMaxHazards; hazards++ {
		mines[hazards] = minesTable(hazards)
	}

	tower := make(map[int][]float64, TowerMaxHazards-TowerMinHazards+1)
	for hazards := TowerMinHazards; hazards <= TowerMaxHazards; hazards++ {
		tower[hazards] = towerTable(hazards)
	}

	s, _ := NewSchedule(mines, tower)
	return s
}

// minesTable computes the multiplier for each reveal count as the product
// of (remaining cells / remaining safe cells) at each step.
func minesTable(hazards int) []float64 {
	safe := MinesGridSize - hazards
	table := make([]float64, safe)

	mult := 1.0
	for i := 0; i < safe; i++ {
		mult *= float64(MinesGridSize-i) / float64(safe-i)
		table[i] = math.Floor(mult*100) / 100
	}
	return table
}

// towerTable compounds the per-floor survival odds across the climb.
func towerTable(hazards int) []float64 {
	table := make([]float64, TowerFloors)

	mult := 1.0
	for i := 0; i < TowerFloors; i++ {
		mult *= float64(TowerFloorWidth) / float64(TowerFloorWidth-hazards)
		table[i] = math.Floor(mult*100) / 100
	}
	return table
}
