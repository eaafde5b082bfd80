package game

import (
	"testing"

	"wager_service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScheduleMonotonic(t *testing.T) {
	s := DefaultSchedule()

	for hazards := MinesMinHazards; hazards <= MinesMaxHazards; hazards++ {
		table := s.Table(domain.GameTypeMines, hazards)
		require.NotEmpty(t, table, "mines hazards=%d", hazards)

		prev := 1.0
		for i, m := range table {
			assert.GreaterOrEqual(t, m, prev, "mines hazards=%d progress=%d", hazards, i+1)
			prev = m
		}
	}

	for hazards := TowerMinHazards; hazards <= TowerMaxHazards; hazards++ {
		table := s.Table(domain.GameTypeTower, hazards)
		require.Len(t, table, TowerFloors)

		prev := 1.0
		for i, m := range table {
			assert.GreaterOrEqual(t, m, prev, "tower hazards=%d floor=%d", hazards, i+1)
			prev = m
		}
	}
}

func TestMultiplierForZeroProgress(t *testing.T) {
	s := DefaultSchedule()
	assert.Equal(t, 1.0, s.MultiplierFor(domain.GameTypeMines, 3, 0))
	assert.Equal(t, 1.0, s.MultiplierFor(domain.GameTypeTower, 2, 0))
}

func TestMultiplierForClampsToLastEntry(t *testing.T) {
	s := DefaultSchedule()

	table := s.Table(domain.GameTypeMines, 3)
	last := table[len(table)-1]
	assert.Equal(t, last, s.MultiplierFor(domain.GameTypeMines, 3, len(table)))
	assert.Equal(t, last, s.MultiplierFor(domain.GameTypeMines, 3, len(table)+100))
}

func TestNewScheduleRejectsDecreasingTable(t *testing.T) {
	_, err := NewSchedule(map[int][]float64{3: {1.2, 1.1}}, nil)
	assert.Error(t, err)

	_, err = NewSchedule(map[int][]float64{3: {0.9}}, nil)
	assert.Error(t, err)

	_, err = NewSchedule(map[int][]float64{3: {1.1, 1.1, 1.5}}, map[int][]float64{1: {1.25, 1.56}})
	assert.NoError(t, err)
}
