package quantity

import "math"

// QuantityLimit is the maximum representable multiplier magnitude, plus one.
// A Quantity whose multiplier would reach this bound is instead represented
// as an infinite Quantity of the corresponding sign.
const QuantityLimit int64 = 1000 * 1000 * 1000 * 1000 * 1000

const quantityLimitF = float64(QuantityLimit)

// Quantity is a dimensioned value: multiplier x 1000^precision, in the units
// described by dims. It is usually constructed and consumed through a
// dimension-specific alias (Duration, Distance, Mass, ...) but a single
// concrete type backs all of them.
//
// A Quantity whose multiplier is fixed cannot be rescaled by arithmetic: the
// result of any operation involving it is rounded (banker's-adjacent,
// round-half-away-from-zero) to the fixed precision rather than autoscaled.
type Quantity struct {
	mul       float64
	precision Scale
	fixed     bool
	dims      Dims
}

// Duration, Distance, Mass, and the other five SI base quantities are plain
// aliases for Quantity: the dimension tuple carried at runtime is what
// distinguishes them, not the Go type.
type (
	Duration                 = Quantity
	Distance                 = Quantity
	Mass                     = Quantity
	ElectricCurrent          = Quantity
	ThermodynamicTemperature = Quantity
	AmountOfSubstance        = Quantity
	LuminousIntensity        = Quantity
)

// NewQuantity constructs a Quantity representing mul * 1000^precision in the
// given dimension, with an unfixed precision.
func NewQuantity(mul int64, precision Scale, dims Dims) Quantity {
	return Quantity{
		mul:       convertMultiplier(mul),
		precision: convertLevel(mul, precision),
		fixed:     false,
		dims:      dims,
	}
}

// NewUnitQuantity constructs a Quantity of mul at Unit precision.
func NewUnitQuantity(mul int64, dims Dims) Quantity {
	return NewQuantity(mul, Unit, dims)
}

// Invalid returns the unique non-value Quantity for the given dimension; it
// is the result produced wherever a contract is violated without a defined
// value (e.g. dividing by an invalid quantity).
func Invalid(dims Dims) Quantity {
	return Quantity{mul: math.NaN(), precision: Unit, fixed: false, dims: dims}
}

// Inf returns positive infinity for the given dimension.
func Inf(dims Dims) Quantity {
	return Quantity{mul: math.Inf(1), precision: Unit, fixed: false, dims: dims}
}

// Max returns the largest finite Quantity representable at the given precision.
func Max(precision Scale, dims Dims) Quantity {
	return NewQuantity(QuantityLimit-1, precision, dims)
}

func newRaw(precision Scale, mul float64, fixed bool, dims Dims) Quantity {
	return Quantity{mul: mul, precision: precision, fixed: fixed, dims: dims}
}

func convertMultiplier(mul int64) float64 {
	switch {
	case mul >= QuantityLimit:
		return math.Inf(1)
	case mul <= -QuantityLimit:
		return math.Inf(-1)
	default:
		return float64(mul)
	}
}

func convertLevel(mul int64, precision Scale) Scale {
	abs := mul
	if abs < 0 {
		abs = -abs
	}
	if abs >= QuantityLimit {
		return Unit
	}
	return precision
}

func offsetMultiplier(m float64) float64 {
	if m >= 0 {
		return m + 0.5
	}
	return m - 0.5
}

func truncateMultiplier(m float64) int64 {
	switch {
	case m >= quantityLimitF:
		return math.MaxInt64
	case m <= -quantityLimitF:
		return math.MinInt64
	default:
		return int64(m)
	}
}

func roundMultiplier(m float64) int64 {
	return truncateMultiplier(offsetMultiplier(m))
}

func scaleMultiplier(multiplier, factor float64) int64 {
	if factor >= 1 {
		return truncateMultiplier(offsetMultiplier(factor * multiplier))
	}
	return truncateMultiplier(factor * offsetMultiplier(multiplier))
}

// Valid reports whether q holds a real value (as opposed to the result of a
// contract violation).
func (q Quantity) Valid() bool {
	return q.mul == q.mul // false for NaN
}

// Finite reports whether q is valid and not +/-Inf.
func (q Quantity) Finite() bool {
	return q.mul < math.Inf(1) && q.mul > math.Inf(-1)
}

// Multiplier returns the integer multiplier of q's precision. Infinite
// quantities report +/-QuantityLimit; invalid quantities report 0.
func (q Quantity) Multiplier() int64 {
	switch {
	case !q.Valid():
		return 0
	case q.mul == math.Inf(1):
		return QuantityLimit
	case q.mul == math.Inf(-1):
		return -QuantityLimit
	default:
		return int64(q.mul)
	}
}

// Precision returns the scale that the multiplier multiplies.
func (q Quantity) Precision() Scale { return q.precision }

// Fixed reports whether q's precision is frozen against arithmetic rescaling.
func (q Quantity) Fixed() bool { return q.fixed }

// Dims returns q's dimension tuple.
func (q Quantity) Dims() Dims { return q.dims }

// FixedAt returns q rescaled to precision and fixed there.
func (q Quantity) FixedAt(precision Scale) Quantity {
	if !q.Valid() {
		return q
	}
	raw := scaleMultiplier(q.mul, ratio(q.precision, precision))
	return NewQuantity(raw, precision, q.dims).fixedCopy(true)
}

// Rescaled returns q rescaled to precision; its fixed state is unchanged.
func (q Quantity) Rescaled(precision Scale) Quantity {
	if !q.Valid() {
		return q
	}
	raw := scaleMultiplier(q.mul, ratio(q.precision, precision))
	return NewQuantity(raw, precision, q.dims).fixedCopy(q.fixed)
}

func (q Quantity) fixedCopy(fixed bool) Quantity {
	q.fixed = fixed
	return q
}

// Refined returns q at the finest precision that loses no information.
func (q Quantity) Refined() Quantity {
	switch {
	case !q.Valid():
		return q
	case !q.Finite():
		return q
	case q.mul == 0:
		return NewUnitQuantity(0, q.dims)
	case math.Abs(float64(roundMultiplier(1000*q.mul))) >= quantityLimitF:
		return q
	default:
		next := newRaw(q.precision-1, 1000*q.mul, false, q.dims).autorounded()
		return next.Refined()
	}
}

// Coarsened returns q at the coarsest precision at which the multiplier
// remains an exact multiple of 1000.
func (q Quantity) Coarsened() Quantity {
	switch {
	case !q.Valid():
		return q
	case !q.Finite():
		return q
	case q.mul == 0:
		return NewUnitQuantity(0, q.dims)
	case q.mul != 1000*float64(roundMultiplier(0.001*q.mul)):
		return q
	default:
		next := newRaw(q.precision+1, float64(roundMultiplier(0.001*q.mul)), false, q.dims)
		return next.Coarsened()
	}
}

// Unfixed returns q with its precision no longer frozen.
func (q Quantity) Unfixed() Quantity {
	return newRaw(q.precision, q.mul, false, q.dims)
}

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	return newRaw(q.precision, -q.mul, q.fixed, q.dims)
}

func (q Quantity) autoscaled() Quantity {
	switch {
	case !q.Valid():
		return q
	case q.mul == math.Inf(1):
		return Inf(q.dims)
	case q.mul == math.Inf(-1):
		return Inf(q.dims).Neg()
	case math.Abs(q.mul)+0.5 >= quantityLimitF:
		return newRaw(q.precision+1, 0.001*q.mul, false, q.dims).autoscaled()
	case 1000*math.Abs(q.mul)+0.5 >= quantityLimitF:
		return q.autorounded()
	case q.mul == math.Trunc(q.mul):
		return q.autorounded()
	default:
		return newRaw(q.precision-1, 1000*q.mul, false, q.dims).autoscaled()
	}
}

func (q Quantity) autorounded() Quantity {
	switch {
	case !q.Valid():
		return q
	case q.mul+0.5 >= quantityLimitF:
		return Inf(q.dims)
	case q.mul-0.5 <= -quantityLimitF:
		return Inf(q.dims).Neg()
	default:
		return NewQuantity(int64(offsetMultiplier(q.mul)), q.precision, q.dims).fixedCopy(q.fixed)
	}
}

// Add returns q + r. Both operands must share a dimension; mismatched
// dimensions produce an invalid result.
func (q Quantity) Add(r Quantity) Quantity {
	if q.dims != r.dims {
		return Invalid(q.dims)
	}
	switch {
	case q.fixed && r.fixed:
		if q.precision != r.precision {
			return Invalid(q.dims)
		}
		return newRaw(q.precision, q.mul+r.mul, true, q.dims).autorounded()
	case q.fixed:
		return newRaw(q.precision, q.mul+ratio(r.precision, q.precision)*r.mul, true, q.dims).autorounded()
	case r.fixed:
		return newRaw(r.precision, ratio(q.precision, r.precision)*q.mul+r.mul, true, q.dims).autorounded()
	case q.precision <= r.precision:
		return newRaw(q.precision, q.mul+ratio(r.precision, q.precision)*r.mul, false, q.dims).autoscaled()
	default:
		return newRaw(r.precision, ratio(q.precision, r.precision)*q.mul+r.mul, false, q.dims).autoscaled()
	}
}

// Sub returns q - r.
func (q Quantity) Sub(r Quantity) Quantity {
	if q.dims != r.dims {
		return Invalid(q.dims)
	}
	switch {
	case q.fixed && r.fixed:
		if q.precision != r.precision {
			return Invalid(q.dims)
		}
		return newRaw(q.precision, q.mul-r.mul, true, q.dims).autorounded()
	case q.fixed:
		return newRaw(q.precision, q.mul-ratio(r.precision, q.precision)*r.mul, true, q.dims).autorounded()
	case r.fixed:
		return newRaw(r.precision, ratio(q.precision, r.precision)*q.mul-r.mul, true, q.dims).autorounded()
	case q.precision <= r.precision:
		return newRaw(q.precision, q.mul-ratio(r.precision, q.precision)*r.mul, false, q.dims).autoscaled()
	default:
		return newRaw(r.precision, ratio(q.precision, r.precision)*q.mul-r.mul, false, q.dims).autoscaled()
	}
}

// MulScalar returns q * s.
func (q Quantity) MulScalar(s float64) Quantity {
	if q.fixed {
		return newRaw(q.precision, q.mul*s, true, q.dims).autorounded()
	}
	return newRaw(q.precision, q.mul*s, false, q.dims).autoscaled()
}

// DivScalar returns q / s.
func (q Quantity) DivScalar(s float64) Quantity {
	if q.fixed {
		return newRaw(q.precision, q.mul/s, true, q.dims).autorounded()
	}
	return newRaw(q.precision, q.mul/s, false, q.dims).autoscaled()
}

// MulQuantity returns the (unfixed, autoscaled) product of q and r, whose
// dimension is the sum of the two operands' dimensions.
func (q Quantity) MulQuantity(r Quantity) Quantity {
	return newRaw(q.precision+r.precision, q.mul*r.mul, false, q.dims.Add(r.dims)).autoscaled()
}

// DivQuantity returns the (unfixed, autoscaled) quotient of q and r, whose
// dimension is the difference of the two operands' dimensions. Dividing by
// an invalid quantity yields an invalid result.
func (q Quantity) DivQuantity(r Quantity) Quantity {
	if !r.Valid() {
		return Invalid(q.dims.Sub(r.dims))
	}
	return newRaw(q.precision-r.precision, q.mul/r.mul, false, q.dims.Sub(r.dims)).autoscaled()
}

// Equal, Less, Greater and their complements compare q and r at a shared
// (refined) precision, without materializing a rescaled copy.
func (q Quantity) Equal(r Quantity) bool {
	if q.precision <= r.precision {
		return q.mul == ratio(r.precision, q.precision)*r.mul
	}
	return ratio(q.precision, r.precision)*q.mul == r.mul
}

func (q Quantity) NotEqual(r Quantity) bool { return !q.Equal(r) }

func (q Quantity) Less(r Quantity) bool {
	if q.precision <= r.precision {
		return q.mul < ratio(r.precision, q.precision)*r.mul
	}
	return ratio(q.precision, r.precision)*q.mul < r.mul
}

func (q Quantity) Greater(r Quantity) bool {
	if q.precision <= r.precision {
		return q.mul > ratio(r.precision, q.precision)*r.mul
	}
	return ratio(q.precision, r.precision)*q.mul > r.mul
}

func (q Quantity) LessEqual(r Quantity) bool    { return !q.Greater(r) }
func (q Quantity) GreaterEqual(r Quantity) bool { return !q.Less(r) }

// IsZero reports whether q is the valid, finite value zero.
func (q Quantity) IsZero() bool { return q.Valid() && q.mul == 0 }

// IsPositive and IsNegative classify valid, nonzero quantities by sign
// (including infinities).
func (q Quantity) IsPositive() bool { return q.Valid() && q.mul > 0 }
func (q Quantity) IsNegative() bool { return q.Valid() && q.mul < 0 }

// Float64 converts a dimensionless Quantity to a float64. Panics if dims is
// not DimsNone; dimensioned quantities cannot be coerced without a unit.
func (q Quantity) Float64() float64 {
	if q.dims != DimsNone {
		panic("quantity: Float64 called on a dimensioned quantity")
	}
	switch {
	case q.precision == Unit:
		return q.mul
	case q.precision < Unit:
		return 0.001 * newRaw(q.precision+1, q.mul, false, q.dims).Float64()
	default:
		return 1000 * newRaw(q.precision-1, q.mul, false, q.dims).Float64()
	}
}

// String renders q using the dimension-appropriate prefix symbol when the
// precision is an SI level, and a generic "(mul, precision)" form otherwise.
func (q Quantity) String() string {
	if !q.Valid() {
		return "quantity()"
	}
	if !q.Finite() {
		sign := ""
		if q.mul < 0 {
			sign = "-"
		}
		return sign + "quantity::inf()"
	}
	unit := baseSymbol(q.dims)
	if unit != "" {
		if q.precision == Unit {
			return itoa(q.Multiplier()) + "_" + unit
		}
		if q.precision >= Yocto && q.precision <= Yotta {
			return itoa(q.Multiplier()) + "_" + q.precision.Symbol() + unit
		}
	}
	return "quantity(" + itoa(q.Multiplier()) + ", " + q.precision.Symbol() + ")"
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [24]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func baseSymbol(d Dims) string {
	switch d {
	case DimsMass:
		return "g"
	case DimsLength:
		return "m"
	case DimsTime:
		return "s"
	case DimsCurrent:
		return "A"
	case DimsTemperature:
		return "K"
	case DimsAmount:
		return "mol"
	case DimsLuminosity:
		return "cd"
	default:
		return ""
	}
}
