package game

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"wager_service/internal/domain"
)

const (
	MinesGridSize   = 25 // 5x5
	MinesMinHazards = 2
	MinesMaxHazards = 24

	TowerFloors     = 6
	TowerFloorWidth = 5
	TowerMinHazards = 1
	TowerMaxHazards = 4
)

// BoardGenerator produces hazard layouts. Implementations must sample
// distinct positions uniformly; tests inject deterministic layouts.
type BoardGenerator interface {
	MinesBoard(hazardCount int) ([]int, error)
	TowerBoard(hazardsPerFloor int) ([][]int, error)
}

// CryptoRandSource draws hazard positions from crypto/rand.
type CryptoRandSource struct{}

func (CryptoRandSource) MinesBoard(hazardCount int) ([]int, error) {
	if hazardCount < MinesMinHazards || hazardCount > MinesMaxHazards {
		return nil, domain.Validationf("hazard count must be between %d and %d", MinesMinHazards, MinesMaxHazards)
	}
	return sampleDistinct(hazardCount, MinesGridSize)
}

func (CryptoRandSource) TowerBoard(hazardsPerFloor int) ([][]int, error) {
	if hazardsPerFloor < TowerMinHazards || hazardsPerFloor > TowerMaxHazards {
		return nil, domain.Validationf("hazards per floor must be between %d and %d", TowerMinHazards, TowerMaxHazards)
	}
	floors := make([][]int, TowerFloors)
	for i := range floors {
		cells, err := sampleDistinct(hazardsPerFloor, TowerFloorWidth)
		if err != nil {
			return nil, err
		}
		floors[i] = cells
	}
	return floors, nil
}

// sampleDistinct picks n distinct positions in [0, bound) without replacement.
func sampleDistinct(n, bound int) ([]int, error) {
	out := make([]int, 0, n)
	used := make(map[int]bool, n)

	for len(out) < n {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
		if err != nil {
			return nil, fmt.Errorf("random source: %w", err)
		}
		pos := int(v.Int64())
		if !used[pos] {
			used[pos] = true
			out = append(out, pos)
		}
	}

	return out, nil
}
