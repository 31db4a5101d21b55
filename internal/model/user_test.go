package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{1000, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, CalculateLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for xp := 1; xp <= 20000; xp += 7 {
		level := CalculateLevel(xp)
		assert.GreaterOrEqual(t, level, prev, "level regressed at xp=%d", xp)
		prev = level
	}
}

func TestNextLevelXP(t *testing.T) {
	assert.Equal(t, 100, NextLevelXP(0))
	assert.Equal(t, 300, NextLevelXP(100))
	assert.Equal(t, 300, NextLevelXP(299))
	assert.Equal(t, 600, NextLevelXP(300))

	// The next threshold is always strictly above the current XP.
	for xp := 0; xp <= 5000; xp += 13 {
		assert.Greater(t, NextLevelXP(xp), xp)
	}
}
