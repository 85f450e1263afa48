// Package quantity implements SyDEVS-style dimensioned quantities: exact,
// checked arithmetic over a base-1000 logarithmic scale.
package quantity

import "math"

// Scale is a signed base-1000 logarithmic precision level. A Quantity whose
// precision is Scale(n) is understood as a multiple of 1000^n in its unit's
// base dimension.
type Scale int32

// The sixteen SI-prefix scale levels, plus Unit (no prefix).
const (
	Yocto Scale = -8
	Zepto Scale = -7
	Atto  Scale = -6
	Femto Scale = -5
	Pico  Scale = -4
	Nano  Scale = -3
	Micro Scale = -2
	Milli Scale = -1
	Unit  Scale = 0
	Kilo  Scale = 1
	Mega  Scale = 2
	Giga  Scale = 3
	Tera  Scale = 4
	Peta  Scale = 5
	Exa   Scale = 6
	Zetta Scale = 7
	Yotta Scale = 8
)

// NoScale is the sentinel precision meaning "precision is irrelevant" — used
// by composite nodes, and by any collection node constructed with it, which
// then report no elapsed-time precision of their own.
const NoScale Scale = math.MaxInt32

// Symbol returns the SI prefix symbol associated with the scale, or "" for Unit.
func (s Scale) Symbol() string {
	switch s {
	case Yocto:
		return "y"
	case Zepto:
		return "z"
	case Atto:
		return "a"
	case Femto:
		return "f"
	case Pico:
		return "p"
	case Nano:
		return "n"
	case Micro:
		return "u"
	case Milli:
		return "m"
	case Unit:
		return ""
	case Kilo:
		return "k"
	case Mega:
		return "M"
	case Giga:
		return "G"
	case Tera:
		return "T"
	case Peta:
		return "P"
	case Exa:
		return "E"
	case Zetta:
		return "Z"
	case Yotta:
		return "Y"
	default:
		return "?"
	}
}

// ratio computes 1000^(a-b), the factor by which a multiplier at precision a
// must be scaled to be expressed at precision b (the analog of the C++
// source's `precision_ / precision` scale division).
func ratio(a, b Scale) float64 {
	diff := float64(int64(a) - int64(b))
	return math.Pow(1000, diff)
}
