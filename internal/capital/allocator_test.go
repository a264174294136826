package capital

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsableCapital(t *testing.T) {
	a := NewAllocator(80000, 45000, 0.2)
	assert.InDelta(t, 100000, a.UsableCapital(), 1e-9)

	// Negative base clamps to zero.
	a = NewAllocator(-5000, 1000, 0.2)
	assert.InDelta(t, 0, a.UsableCapital(), 1e-9)
}

func TestPositionSize(t *testing.T) {
	a := NewAllocator(125000, 0, 0.2)
	assert.InDelta(t, 100000, a.UsableCapital(), 1e-9)

	// 100000 * 0.25 / 15 slots = 1666.67 per slot; 1666.67 / 66.67 -> 25 shares.
	assert.Equal(t, 25, a.PositionSize(0.25, 15, 66.67))

	// 100000 * 0.05 / 3 = 1666.67; at 500/share -> 3 shares.
	assert.Equal(t, 3, a.PositionSize(0.05, 3, 500))

	// Price too high for one share.
	assert.Equal(t, 0, a.PositionSize(0.02, 1, 2500))
}

func TestPositionSize_DegenerateInputs(t *testing.T) {
	a := NewAllocator(125000, 0, 0.2)
	assert.Equal(t, 0, a.PositionSize(0.1, 0, 50))
	assert.Equal(t, 0, a.PositionSize(0.1, 5, 0))
	assert.Equal(t, 0, a.PositionSize(0.1, 5, -3))
}

func TestPositionSizeMinOne(t *testing.T) {
	a := NewAllocator(125000, 0, 0.2)

	// Normal sizing passes through unchanged.
	assert.Equal(t, 25, a.PositionSizeMinOne(0.25, 15, 66.67))

	// Rounding to zero lifts to one share.
	assert.Equal(t, 1, a.PositionSizeMinOne(0.02, 10, 4000))

	// Degenerate inputs still yield zero, not one.
	assert.Equal(t, 0, a.PositionSizeMinOne(0.25, 15, 0))
	assert.Equal(t, 0, a.PositionSizeMinOne(0.25, 0, 50))
}
