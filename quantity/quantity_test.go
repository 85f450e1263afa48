package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantity_Add_AutoscalesAcrossDifferentPrecisions(t *testing.T) {
	sum := Seconds(2).Add(Milliseconds(500))
	assert.True(t, sum.Equal(Milliseconds(2500)))
}

func TestQuantity_Add_OppositeSignInfinitiesAreInvalid(t *testing.T) {
	sum := InfDuration().Add(InfDuration().Neg())
	assert.False(t, sum.Valid())
}

func TestQuantity_Add_SameSignInfinityStaysInfinite(t *testing.T) {
	sum := InfDuration().Add(Seconds(1))
	assert.True(t, sum.Valid())
	assert.False(t, sum.Finite())
	assert.True(t, sum.IsPositive())
}

func TestQuantity_Add_MismatchedDimensionsIsInvalid(t *testing.T) {
	sum := Seconds(1).Add(Meters(1))
	assert.False(t, sum.Valid())
}

func TestQuantity_FixedAt_RoundsHalfAwayFromZero(t *testing.T) {
	q := Milliseconds(1500).FixedAt(Unit)
	assert.Equal(t, int64(2), q.Multiplier())
	assert.True(t, q.Fixed())
}

func TestQuantity_FixedAt_CannotBeRescaledByArithmetic(t *testing.T) {
	fixed := Seconds(1).FixedAt(Milli)
	sum := fixed.Add(Milliseconds(250))
	assert.Equal(t, Milli, sum.Precision())
	assert.True(t, sum.Fixed())
}

func TestQuantity_Add_MismatchedFixedPrecisionsIsInvalid(t *testing.T) {
	a := Seconds(1).FixedAt(Milli)
	b := Seconds(1).FixedAt(Micro)
	assert.False(t, a.Add(b).Valid())
}

func TestQuantity_Refined_FindsFinestLosslessPrecision(t *testing.T) {
	q := NewQuantity(5, Kilo, DimsTime).Refined()
	assert.Equal(t, Nano, q.Precision())
	assert.Equal(t, int64(5_000_000_000_000), q.Multiplier())
}

func TestQuantity_Coarsened_FindsCoarsestExactPrecision(t *testing.T) {
	q := Milliseconds(5000).Coarsened()
	assert.True(t, q.Equal(Seconds(5)))
	assert.Equal(t, Unit, q.Precision())
}

func TestQuantity_Equal_ComparesAcrossDifferentPrecisionsExactly(t *testing.T) {
	assert.True(t, Seconds(1).Equal(Milliseconds(1000)))
	assert.True(t, Seconds(1).Less(Milliseconds(1001)))
	assert.True(t, Seconds(1).Greater(Milliseconds(999)))
}

func TestQuantity_IsZero_TrueOnlyForValidFiniteZero(t *testing.T) {
	assert.True(t, NewUnitQuantity(0, DimsTime).IsZero())
	assert.False(t, InfDuration().IsZero())
	assert.False(t, Invalid(DimsTime).IsZero())
}

func TestQuantity_Float64_PanicsOnDimensionedQuantity(t *testing.T) {
	assert.Panics(t, func() { Seconds(1).Float64() })
}

func TestQuantity_Float64_RoundTripsDimensionlessValues(t *testing.T) {
	d := Seconds(10).DivQuantity(Seconds(4))
	assert.InDelta(t, 2.5, d.Float64(), 1e-9)
}

func TestQuantity_String_UsesSIPrefixForKnownDimension(t *testing.T) {
	assert.Equal(t, "5_ms", Milliseconds(5).String())
	assert.Equal(t, "1_s", Seconds(1).String())
}

func TestQuantity_String_RendersInfinityAndInvalid(t *testing.T) {
	assert.Equal(t, "quantity::inf()", InfDuration().String())
	assert.Equal(t, "-quantity::inf()", InfDuration().Neg().String())
	assert.Equal(t, "quantity()", Invalid(DimsTime).String())
}

func TestQuantity_MulQuantity_CombinesDimensions(t *testing.T) {
	area := Meters(3).MulQuantity(Meters(4))
	assert.Equal(t, DimsLength.Add(DimsLength), area.Dims())
	assert.True(t, area.Equal(NewUnitQuantity(12, DimsLength.Add(DimsLength))))
}

func TestQuantity_DivQuantity_ByInvalidIsInvalid(t *testing.T) {
	assert.False(t, Seconds(1).DivQuantity(Invalid(DimsTime)).Valid())
}
