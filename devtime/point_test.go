package devtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

func TestTimePoint_Add_AccumulatesAcrossWildlyDifferentScales(t *testing.T) {
	tp := NewTimePoint()
	tp.Add(quantity.Seconds(1))
	tp.Add(quantity.Yoctoseconds(1))
	assert.Equal(t, quantity.Yocto, tp.Precision())
}

func TestTimePoint_Diff_IsExactInverseOfAdd(t *testing.T) {
	a := NewTimePointAt(quantity.Seconds(10))
	b := NewTimePointAt(quantity.Seconds(3))
	diff := a.Diff(b)
	assert.True(t, diff.Equal(quantity.Seconds(7)))
}

func TestTimePoint_Equal_ComparesAcrossDifferentStoredPrecisions(t *testing.T) {
	a := NewTimePointAt(quantity.Seconds(1))
	b := NewTimePointAt(quantity.Milliseconds(1000))
	assert.True(t, a.Equal(b))
}

func TestTimePoint_Less_OrdersByMostSignificantDiscrepantDigit(t *testing.T) {
	a := NewTimePointAt(quantity.Seconds(1))
	b := NewTimePointAt(quantity.Seconds(2))
	assert.True(t, a.Less(b))
	assert.True(t, b.Greater(a))
}

func TestTimePoint_Advance_DropsFinerHistoryThanTheAdvanceStep(t *testing.T) {
	tp := NewTimePointAt(quantity.Milliseconds(500))
	tp.Advance(quantity.Seconds(2))
	assert.True(t, tp.GreaterEqual(NewTimePointAt(quantity.Seconds(2))))
}

func TestTimePoint_Gap_AlwaysReturnsAFiniteApproximation(t *testing.T) {
	a := NewTimePointAt(quantity.Yoctoseconds(1))
	b := NewTimePointAt(quantity.Yottaseconds(1))
	gap := b.Gap(a)
	assert.True(t, gap.Finite())
}

func TestTimePoint_String_RendersCoarsestDigitFirst(t *testing.T) {
	tp := NewTimePointAt(quantity.Seconds(5)).Plus(quantity.Milliseconds(3))
	assert.Equal(t, "time_point() + 5_s + 3_ms", tp.String())
}
