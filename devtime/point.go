// Package devtime implements SyDEVS's arbitrary-precision time representation:
// TimePoint (an exact running clock), TimeQueue (a time-ordered event
// scheduler), and TimeCache (a bounded elapsed-duration tracker).
package devtime

import (
	"strings"

	"github.com/sydevs-sim/sydevs-sim/quantity"
)

// TimePoint represents an instant in simulated time as an arbitrary-precision
// multiple of its finest nonzero scale. Durations of wildly different
// magnitude can be accumulated into it without losing any of them: the
// point grows a new base-1000 "digit" whenever a duration lands outside its
// current range, rather than rounding one operand away.
type TimePoint struct {
	sign      int8
	precision quantity.Scale
	digits    []int64 // digits[i] is the digit at scale precision+Scale(i), each in [0, 1000)
}

// NewTimePoint returns the zero time point.
func NewTimePoint() TimePoint {
	return TimePoint{sign: 1}
}

// NewTimePointAt returns a time point offset from zero by dt.
func NewTimePointAt(dt quantity.Duration) TimePoint {
	tp := NewTimePoint()
	tp.Add(dt)
	return tp
}

// Sign returns +1 or -1.
func (tp TimePoint) Sign() int64 { return int64(tp.sign) }

// Precision returns the scale of the finest nonzero digit.
func (tp TimePoint) Precision() quantity.Scale { return tp.precision }

// NScales returns the number of digits stored.
func (tp TimePoint) NScales() int64 { return int64(len(tp.digits)) }

// ScaleDigit returns the digit associated with the given scale (0 outside the stored range).
func (tp TimePoint) ScaleDigit(precision quantity.Scale) int64 {
	if precision < tp.precision || precision >= tp.precision+quantity.Scale(len(tp.digits)) {
		return 0
	}
	return tp.digits[precision-tp.precision]
}

// ScalePhase returns the single-scale offset from negative infinity.
func (tp TimePoint) ScalePhase(precision quantity.Scale) int64 {
	phase := tp.ScaleDigit(precision)
	if tp.sign == -1 {
		phase = 1000 - phase
		if tp.precision < precision {
			phase--
		} else if phase == 1000 {
			phase = 0
		}
	}
	return phase
}

// EpochPhase returns the 5-scale offset from negative infinity.
func (tp TimePoint) EpochPhase(precision quantity.Scale) int64 {
	var phase int64
	for s := precision + 4; s >= precision; s-- {
		phase = 1000*phase + tp.ScaleDigit(s)
	}
	if tp.sign == -1 {
		phase = quantity.QuantityLimit - phase
		if tp.precision < precision {
			phase--
		} else if phase == quantity.QuantityLimit {
			phase = 0
		}
	}
	return phase
}

// Advance moves the time point forward by rhs, then discards any digits
// finer than rhs's precision. Used by TimeQueue to implement multiscale
// time advancement: once an event at a coarse precision fires, finer
// history is no longer distinguishable and is dropped rather than kept.
func (tp *TimePoint) Advance(rhs quantity.Duration) {
	mustBeAdvanceable(rhs)
	if rhs.IsPositive() {
		if tp.precision < rhs.Precision() {
			if tp.sign == -1 {
				tp.Add(quantity.NewQuantity(-1, rhs.Precision(), quantity.DimsTime))
			}
			precision := rhs.Precision()
			if quantity.Scale(len(tp.digits)) > precision-tp.precision {
				for tp.ScaleDigit(precision) == 0 {
					precision++
				}
			}
			cut := precision - tp.precision
			if cut > quantity.Scale(len(tp.digits)) {
				cut = quantity.Scale(len(tp.digits))
			}
			tp.digits = append([]int64{}, tp.digits[cut:]...)
			tp.precision = precision
		}
		tp.Add(rhs)
	}
}

func mustBeAdvanceable(rhs quantity.Duration) {
	if !rhs.Valid() {
		panic("devtime: advancement duration must be valid")
	}
	if rhs.IsNegative() {
		panic("devtime: advancement duration must be non-negative")
	}
	if !rhs.Finite() {
		panic("devtime: advancement duration must be finite")
	}
}

// Add adjusts the time point by rhs in place (the C++ operator+=).
func (tp *TimePoint) Add(rhs quantity.Duration) {
	if !rhs.Valid() {
		panic("devtime: adjustment duration must be valid")
	}
	if !rhs.Finite() {
		panic("devtime: adjustment duration must be finite")
	}
	if rhs.IsZero() {
		return
	}
	dt := rhs.Coarsened()
	if tp.sign == -1 {
		dt = dt.Neg()
	}

	switch {
	case len(tp.digits) == 0:
		tp.precision = dt.Precision()
		tp.digits = []int64{0}
	default:
		if tp.precision > dt.Precision() {
			pad := make([]int64, tp.precision-dt.Precision())
			tp.digits = append(pad, tp.digits...)
			tp.precision = dt.Precision()
		}
		if tp.precision+quantity.Scale(len(tp.digits)) <= dt.Precision() {
			extra := dt.Precision() - tp.precision - quantity.Scale(len(tp.digits)) + 1
			tp.digits = append(tp.digits, make([]int64, extra)...)
		}
	}

	tickCount := dt.Multiplier()
	for i := int(dt.Precision() - tp.precision); tickCount != 0; i++ {
		rest := tickCount / 1000
		offset := tickCount - 1000*rest
		sum := tp.digits[i] + offset
		switch {
		case sum >= 1000:
			tp.digits[i] = sum - 1000
			tickCount = rest + 1
		case sum >= 0:
			tp.digits[i] = sum
			tickCount = rest
		default:
			tp.digits[i] = sum + 1000
			tickCount = rest - 1
		}
		if tickCount != 0 && i+1 == len(tp.digits) {
			tp.digits = append(tp.digits, 0)
			if tickCount < 0 && tickCount > -1000 {
				tp.digits[i+1] = tickCount
				tickCount = 0
			}
		}
	}

	// Remove zero-valued digits from the fine end.
	lead := 0
	for lead < len(tp.digits) && tp.digits[lead] == 0 {
		lead++
	}
	if lead > 0 {
		tp.precision += quantity.Scale(lead)
		tp.digits = append([]int64{}, tp.digits[lead:]...)
	}

	if len(tp.digits) == 0 {
		tp.precision = quantity.Unit
		tp.sign = 1
		return
	}

	last := len(tp.digits) - 1
	if tp.digits[last] < 0 {
		tp.digits[last] = -tp.digits[last]
		tp.sign = -tp.sign
		for i := len(tp.digits) - 1; i >= 1; i-- {
			tp.digits[i] -= 1
			tp.digits[i-1] = 1000 - tp.digits[i-1]
		}
	}
	for len(tp.digits) > 0 && tp.digits[len(tp.digits)-1] == 0 {
		tp.digits = tp.digits[:len(tp.digits)-1]
	}
}

// Sub subtracts rhs from the time point in place.
func (tp *TimePoint) Sub(rhs quantity.Duration) { tp.Add(rhs.Neg()) }

// Plus returns a new time point with rhs added, leaving tp unmodified.
func (tp TimePoint) Plus(rhs quantity.Duration) TimePoint {
	next := tp.clone()
	next.Add(rhs)
	return next
}

// Minus returns a new time point with rhs subtracted, leaving tp unmodified.
func (tp TimePoint) Minus(rhs quantity.Duration) TimePoint {
	next := tp.clone()
	next.Sub(rhs)
	return next
}

func (tp TimePoint) clone() TimePoint {
	digits := append([]int64{}, tp.digits...)
	return TimePoint{sign: tp.sign, precision: tp.precision, digits: digits}
}

// Diff returns the exact difference tp - rhs, or an infinite duration if no
// finite duration can represent it exactly.
func (tp TimePoint) Diff(rhs TimePoint) quantity.Duration {
	minPrecision := min(tp.precision, rhs.precision)
	maxPrecision := max(tp.precision+quantity.Scale(len(tp.digits)), rhs.precision+quantity.Scale(len(rhs.digits))) - 1
	dt := quantity.NewQuantity((tp.Sign()-rhs.Sign())/2, maxPrecision+1, quantity.DimsTime)
	for s := maxPrecision; dt.Finite() && s >= minPrecision; s-- {
		scaleDt := quantity.NewQuantity(tp.ScalePhase(s)-rhs.ScalePhase(s), s, quantity.DimsTime)
		nextDt := dt.Add(scaleDt)
		if nextDt.Sub(dt).NotEqual(scaleDt) {
			if dt.IsPositive() {
				dt = quantity.InfDuration()
			} else {
				dt = quantity.InfDuration().Neg()
			}
		} else {
			dt = nextDt
		}
	}
	return dt
}

// Gap approximates the difference tp - rhs, rounding to within one unit of
// the result's own precision when the exact difference cannot be
// represented. Use this instead of Diff whenever an approximate elapsed
// time is acceptable, since it always returns a finite value.
func (tp TimePoint) Gap(rhs TimePoint) quantity.Duration {
	minPrecision := min(tp.precision, rhs.precision)
	maxPrecision := max(tp.precision+quantity.Scale(len(tp.digits)), rhs.precision+quantity.Scale(len(rhs.digits))) - 1

	bigDt := quantity.NewQuantity((tp.Sign()-rhs.Sign())/2, maxPrecision+1, quantity.DimsTime)
	precision := minPrecision
	for s := maxPrecision; precision == minPrecision && s >= minPrecision; s-- {
		scaleDt := quantity.NewQuantity(tp.ScalePhase(s)-rhs.ScalePhase(s), s, quantity.DimsTime)
		nextDt := bigDt.Add(scaleDt)
		if nextDt.Sub(bigDt).NotEqual(scaleDt) {
			precision = s + 1
		} else {
			bigDt = nextDt
		}
	}

	smallDt := quantity.NewUnitQuantity(0, quantity.DimsTime)
	for s := minPrecision; s < precision; s++ {
		smallDt = smallDt.Add(quantity.NewQuantity(tp.ScalePhase(s)-rhs.ScalePhase(s), s, quantity.DimsTime))
		rounded := smallDt.Add(quantity.NewUnitQuantity(0, quantity.DimsTime).FixedAt(s - 4)).Unfixed()
		if rounded.Finite() {
			smallDt = rounded
		}
	}

	dt := bigDt
	switch {
	case smallDt.Equal(quantity.NewQuantity(500, precision-1, quantity.DimsTime)):
		if bigDt.IsPositive() {
			dt = bigDt.Add(quantity.NewQuantity(1, precision, quantity.DimsTime))
		}
	case smallDt.Equal(quantity.NewQuantity(-500, precision-1, quantity.DimsTime)):
		if bigDt.IsNegative() {
			dt = bigDt.Sub(quantity.NewQuantity(1, precision, quantity.DimsTime))
		}
	default:
		dt = bigDt.Add(smallDt.Add(quantity.NewUnitQuantity(0, quantity.DimsTime).FixedAt(precision)).Unfixed())
	}
	return dt
}

func (tp TimePoint) upperDiscrepantPrecision(rhs TimePoint) quantity.Scale {
	equalSoFar := true
	minPrecision := min(tp.precision, rhs.precision)
	upd := max(tp.precision+quantity.Scale(len(tp.digits)), rhs.precision+quantity.Scale(len(rhs.digits))) - 1
	for equalSoFar && upd >= minPrecision {
		if tp.Sign()*tp.ScaleDigit(upd) != rhs.Sign()*rhs.ScaleDigit(upd) {
			equalSoFar = false
		} else {
			upd--
		}
	}
	return upd
}

// Equal, Less, Greater and their complements compare tp against rhs.
func (tp TimePoint) Equal(rhs TimePoint) bool {
	upd := tp.upperDiscrepantPrecision(rhs)
	return upd < min(tp.precision, rhs.precision)
}

func (tp TimePoint) NotEqual(rhs TimePoint) bool { return !tp.Equal(rhs) }

func (tp TimePoint) Less(rhs TimePoint) bool {
	upd := tp.upperDiscrepantPrecision(rhs)
	return tp.Sign()*tp.ScaleDigit(upd) < rhs.Sign()*rhs.ScaleDigit(upd)
}

func (tp TimePoint) Greater(rhs TimePoint) bool {
	upd := tp.upperDiscrepantPrecision(rhs)
	return tp.Sign()*tp.ScaleDigit(upd) > rhs.Sign()*rhs.ScaleDigit(upd)
}

func (tp TimePoint) LessEqual(rhs TimePoint) bool    { return !tp.Greater(rhs) }
func (tp TimePoint) GreaterEqual(rhs TimePoint) bool { return !tp.Less(rhs) }

// EqualDuration and friends compare a time point against a duration offset
// from zero, mirroring the mixed-operand comparisons of the C++ type.
func (tp TimePoint) EqualDuration(rhs quantity.Duration) bool   { return tp.Equal(NewTimePointAt(rhs)) }
func (tp TimePoint) LessDuration(rhs quantity.Duration) bool    { return tp.Less(NewTimePointAt(rhs)) }
func (tp TimePoint) GreaterDuration(rhs quantity.Duration) bool { return tp.Greater(NewTimePointAt(rhs)) }

// String renders the time point as a sum of scaled digits, coarsest first.
func (tp TimePoint) String() string {
	var b strings.Builder
	b.WriteString("time_point()")
	for s := tp.precision + quantity.Scale(len(tp.digits)) - 1; s >= tp.precision; s-- {
		if tp.sign == 1 {
			b.WriteString(" + ")
		} else {
			b.WriteString(" - ")
		}
		b.WriteString(quantity.NewQuantity(tp.ScaleDigit(s), s, quantity.DimsTime).String())
	}
	return b.String()
}
